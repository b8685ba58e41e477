package domain

import "time"

type Product struct {
	ProductID   string `json:"id" dynamodbav:"product_id"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
	// Price is the list price as a decimal string, e.g. "999.00".
	Price           string    `json:"price" dynamodbav:"price"`
	DiscountPercent int       `json:"discount_percent" dynamodbav:"discount_percent"`
	Category        string    `json:"category" dynamodbav:"category"`
	Color           string    `json:"color,omitempty" dynamodbav:"color"`
	SKU             string    `json:"sku,omitempty" dynamodbav:"sku"`
	SizeOptions     string    `json:"size_options,omitempty" dynamodbav:"size_options"`
	ImageKey        string    `json:"image_key,omitempty" dynamodbav:"image_key"`
	StockQuantity   int       `json:"stock_quantity" dynamodbav:"stock_quantity"`
	Available       bool      `json:"available" dynamodbav:"available"`
	Enable          int       `json:"enable" dynamodbav:"enable"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateProductRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Price           string `json:"price" validate:"required"`
	DiscountPercent int    `json:"discount_percent" validate:"gte=0,lte=100"`
	Category        string `json:"category" validate:"required"`
	Color           string `json:"color"`
	SKU             string `json:"sku"`
	SizeOptions     string `json:"size_options"`
	StockQuantity   int    `json:"stock_quantity" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Price           *string `json:"price"`
	DiscountPercent *int    `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	Category        *string `json:"category"`
	Color           *string `json:"color"`
	SKU             *string `json:"sku"`
	SizeOptions     *string `json:"size_options"`
	StockQuantity   *int    `json:"stock_quantity" validate:"omitempty,gte=0"`
	Available       *bool   `json:"available"`
}
