package models

import "time"

// Delivery is the fulfillment task derived from an order. It is created in
// the pending state together with its order and stays unowned until a driver
// claims it.
type Delivery struct {
	ID               string         `json:"id" db:"id"`
	OrderID          string         `json:"order_id" db:"order_id"`
	DriverID         *string        `json:"driver_id,omitempty" db:"driver_id"`
	PickupAddress    string         `json:"pickup_address" db:"pickup_address"`
	DeliveryAddress  string         `json:"delivery_address" db:"delivery_address"`
	DistanceKm       float64        `json:"distance_km" db:"distance_km"`
	EstimatedMinutes int            `json:"estimated_minutes" db:"estimated_minutes"`
	Fee              float64        `json:"fee" db:"fee"`
	Status           DeliveryStatus `json:"status" db:"status"`
	AssignedAt       *time.Time     `json:"assigned_at,omitempty" db:"assigned_at"`
	PickedUpAt       *time.Time     `json:"picked_up_at,omitempty" db:"picked_up_at"`
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelledAt      *time.Time     `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// DriverProfile holds a driver's vehicle details and availability.
// CurrentLocation is an opaque string supplied by the driver app; the server
// stores it without interpreting it.
type DriverProfile struct {
	UserID          string    `json:"user_id" db:"user_id"`
	VehicleType     string    `json:"vehicle_type" db:"vehicle_type"`
	LicensePlate    string    `json:"license_plate" db:"license_plate"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CurrentLocation string    `json:"current_location,omitempty" db:"current_location"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateDeliveryStatusRequest is the body for driver progress updates.
// Assigned is excluded on purpose: a delivery only becomes assigned through
// the claim endpoint's guarded update.
type UpdateDeliveryStatusRequest struct {
	Status DeliveryStatus `json:"status" validate:"required,oneof=picked_up on_the_way delivered cancelled"`
}

// UpsertDriverProfileRequest is the body for creating or updating the
// calling driver's profile.
type UpsertDriverProfileRequest struct {
	VehicleType     string `json:"vehicle_type" validate:"required,oneof=bicycle motorbike car"`
	LicensePlate    string `json:"license_plate" validate:"omitempty,max=16"`
	IsAvailable     bool   `json:"is_available"`
	CurrentLocation string `json:"current_location" validate:"omitempty,max=255"`
}
