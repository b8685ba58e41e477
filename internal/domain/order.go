package domain

import "time"

// Order statuses.
const (
	OrderPending         = "PENDING" // reserved for offline/manual orders
	OrderProcessing      = "PROCESSING"
	OrderShipped         = "SHIPPED"
	OrderDelivered       = "DELIVERED"
	OrderCancelled       = "CANCELLED"
	OrderReturnRequested = "RETURN_REQUESTED"
	OrderReturned        = "RETURNED"
)

// Order is a point-in-time record of a purchase. ItemsSnapshot and
// ShippingSnapshot are captured at creation and never recomputed, even if the
// underlying products or address are later edited or deleted.
type Order struct {
	OrderID  string    `json:"id" dynamodbav:"order_id"`
	UserID   string    `json:"user_id" dynamodbav:"user_id"`
	PlacedAt time.Time `json:"placed_at" dynamodbav:"placed_at"`
	// TotalAmount is a 2-decimal-place currency string, e.g. "430.00".
	TotalAmount      string    `json:"total_amount" dynamodbav:"total_amount"`
	Status           string    `json:"status" dynamodbav:"status"`
	ItemsSnapshot    string    `json:"items_snapshot" dynamodbav:"items_snapshot"`
	ShippingSnapshot string    `json:"shipping_snapshot" dynamodbav:"shipping_snapshot"`
	PaymentMode      string    `json:"payment_mode,omitempty" dynamodbav:"payment_mode"`
	PaymentIntentID  string    `json:"-" dynamodbav:"payment_intent_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered,
		OrderCancelled, OrderReturnRequested, OrderReturned:
		return true
	}
	return false
}
