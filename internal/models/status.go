package models

// OrderStatus enumerates the lifecycle states of a customer order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the value is one of the defined order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusPickedUp, OrderStatusOnTheWay,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the order lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string { return string(s) }

// DeliveryStatus enumerates the lifecycle states of a delivery task.
type DeliveryStatus string

const (
	// DeliveryStatusPending means the delivery is waiting for a driver to claim it.
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// Valid reports whether the value is one of the defined delivery statuses.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAssigned, DeliveryStatusPickedUp,
		DeliveryStatusOnTheWay, DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

func (s DeliveryStatus) String() string { return string(s) }

// OrderEquivalent returns the order status a delivery status propagates onto
// the parent order, and whether propagation applies at all. Driver progress
// (picked_up, on_the_way, delivered) is mirrored onto the order; claiming a
// delivery (assigned) and the remaining states leave the order untouched.
// The switch is exhaustive so a new delivery status cannot be added without
// deciding its order-side meaning.
func (s DeliveryStatus) OrderEquivalent() (OrderStatus, bool) {
	switch s {
	case DeliveryStatusPickedUp:
		return OrderStatusPickedUp, true
	case DeliveryStatusOnTheWay:
		return OrderStatusOnTheWay, true
	case DeliveryStatusDelivered:
		return OrderStatusDelivered, true
	case DeliveryStatusPending, DeliveryStatusAssigned, DeliveryStatusCancelled:
		return "", false
	}
	return "", false
}
