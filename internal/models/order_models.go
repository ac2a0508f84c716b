package models

import "time"

// Order represents a customer's purchase request against one restaurant.
type Order struct {
	ID              string      `json:"id" db:"id"`
	CustomerID      string      `json:"customer_id" db:"customer_id"`
	RestaurantID    string      `json:"restaurant_id" db:"restaurant_id"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	DeliveryAddress string      `json:"delivery_address" db:"delivery_address"`
	Status          OrderStatus `json:"status" db:"status"`
	CancelReason    *string     `json:"cancel_reason,omitempty" db:"cancel_reason"`
	ConfirmedAt     *time.Time  `json:"confirmed_at,omitempty" db:"confirmed_at"`
	PreparedAt      *time.Time  `json:"prepared_at,omitempty" db:"prepared_at"`
	PickedUpAt      *time.Time  `json:"picked_up_at,omitempty" db:"picked_up_at"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is a line item on an order. Name and unit price are snapshots
// taken from the menu item at order time, so later menu edits do not rewrite
// order history.
type OrderItem struct {
	ID         string  `json:"id" db:"id"`
	OrderID    string  `json:"order_id" db:"order_id"`
	MenuItemID string  `json:"menu_item_id" db:"menu_item_id"`
	Name       string  `json:"name" db:"name"`
	UnitPrice  float64 `json:"unit_price" db:"unit_price"`
	Quantity   int     `json:"quantity" db:"quantity"`
}

// OrderItemRequest is one requested line item when placing an order.
type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid4"`
	Quantity   int    `json:"quantity" validate:"required,min=1,max=50"`
}

// CreateOrderRequest is the body for placing a new order. TotalAmount is the
// total the client showed the customer; the server recomputes the line-item
// sum and rejects the order if the two disagree.
type CreateOrderRequest struct {
	RestaurantID     string             `json:"restaurant_id" validate:"required,uuid4"`
	DeliveryAddress  string             `json:"delivery_address" validate:"required,min=10"`
	TotalAmount      float64            `json:"total_amount" validate:"required,gt=0"`
	DeliveryFee      float64            `json:"delivery_fee" validate:"gte=0"`
	DistanceKm       float64            `json:"distance_km" validate:"gte=0"`
	EstimatedMinutes int                `json:"estimated_minutes" validate:"gte=0"`
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the body for the merchant status transition
// endpoint. Only the kitchen stages are accepted here; courier progress
// arrives through the delivery module and cancellation has its own endpoint.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=confirmed preparing ready"`
}

// CancelOrderRequest is the body for a customer-initiated cancellation.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}
