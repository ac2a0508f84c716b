package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a write collides with existing state,
	// e.g. a duplicate email or a duplicate review.
	ErrConflict = errors.New("resource conflict, item already exists")

	// ErrForbidden is returned when the caller does not own the resource
	// they are trying to touch.
	ErrForbidden = errors.New("user does not have permission to access this resource")

	// ErrInvalidCredentials is returned when the email or password provided
	// does not match a database record.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when an activation or reset token is
	// unknown or expired.
	ErrInvalidToken = errors.New("token not found or expired")

	// ErrInvalidStatus is returned when a status transition names a value
	// outside the defined enumeration.
	ErrInvalidStatus = errors.New("unknown status value")

	// ErrOrderCannotBeCancelled is returned when a customer tries to cancel
	// an order the restaurant has already started preparing.
	ErrOrderCannotBeCancelled = errors.New("order cannot be cancelled")

	// ErrOrderClosed is returned when a merchant tries to move an order
	// that is already delivered or cancelled.
	ErrOrderClosed = errors.New("order is already closed")

	// ErrOrderTotalMismatch is returned when the total supplied by the
	// client does not equal the sum of the line items at creation time.
	ErrOrderTotalMismatch = errors.New("order total does not match line items")

	// ErrDeliveryTaken is returned when a driver tries to claim a delivery
	// another driver already claimed.
	ErrDeliveryTaken = errors.New("delivery already claimed by another driver")

	// ErrDefaultAddressInUse is returned when a user tries to delete their
	// default address while other addresses still exist.
	ErrDefaultAddressInUse = errors.New("cannot delete the default address while other addresses exist")
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
