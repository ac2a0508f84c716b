package utils

import (
	"errors"
	"net/http"

	"quickbite-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithError writes a JSON error body with the given status code.
func RespondWithError(c echo.Context, code int, message string) error {
	return c.JSON(code, models.ErrorResponse{Message: message})
}

// RespondWithJSON writes the payload with the given status code.
func RespondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

// HandleServiceError translates domain errors from the service layer into
// HTTP responses. Anything unrecognized is logged and reported as a 500.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrForbidden):
		return RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, "Resource already exists")
	case errors.Is(err, models.ErrDeliveryTaken):
		return RespondWithError(c, http.StatusConflict, "Delivery was already claimed by another driver")
	case errors.Is(err, models.ErrInvalidCredentials):
		return RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, models.ErrInvalidToken):
		return RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, models.ErrInvalidStatus):
		return RespondWithError(c, http.StatusBadRequest, "Unknown status value")
	case errors.Is(err, models.ErrOrderClosed):
		return RespondWithError(c, http.StatusConflict, "Order is already delivered or cancelled")
	case errors.Is(err, models.ErrOrderCannotBeCancelled):
		return RespondWithError(c, http.StatusConflict, "Order can no longer be cancelled")
	case errors.Is(err, models.ErrOrderTotalMismatch):
		return RespondWithError(c, http.StatusBadRequest, "Order total does not match the line items")
	case errors.Is(err, models.ErrDefaultAddressInUse):
		return RespondWithError(c, http.StatusConflict, "Pick another default address before deleting this one")
	default:
		c.Logger().Error("unhandled service error: ", err)
		return RespondWithError(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
