package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/boutique-api/internal/domain"
)

// CouponRepo provides typed DynamoDB operations for the coupons table.
type CouponRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCouponRepo(client *dynamodb.Client, tableName string) *CouponRepo {
	return &CouponRepo{client: client, tableName: tableName}
}

func (r *CouponRepo) Put(ctx context.Context, c *domain.Coupon) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal coupon: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CouponRepo) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("coupon not found: %w", domain.ErrNotFound)
	}
	var c domain.Coupon
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepo) Scan(ctx context.Context) ([]domain.Coupon, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var coupons []domain.Coupon
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *CouponRepo) Delete(ctx context.Context, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	return err
}

// GiftCardRepo provides typed DynamoDB operations for the gift cards table.
type GiftCardRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGiftCardRepo(client *dynamodb.Client, tableName string) *GiftCardRepo {
	return &GiftCardRepo{client: client, tableName: tableName}
}

func (r *GiftCardRepo) Put(ctx context.Context, g *domain.GiftCard) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("marshal gift card: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *GiftCardRepo) Get(ctx context.Context, code string) (*domain.GiftCard, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("gift card not found: %w", domain.ErrNotFound)
	}
	var g domain.GiftCard
	if err := attributevalue.UnmarshalMap(out.Item, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GiftCardRepo) Update(ctx context.Context, code string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("code", code),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
