package deliveries

import (
	"net/http"

	"quickbite-backend/internal/models"
	"quickbite-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for deliveries and driver profiles.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new delivery handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ListAvailable shows unclaimed deliveries a driver can pick up.
func (h *Handler) ListAvailable(c echo.Context) error {
	if _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	deliveries, total, err := h.svc.ListAvailable(c.Request().Context(), page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"deliveries": deliveries, "total": total})
}

func (h *Handler) ListMyDeliveries(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	page, limit := utils.GetPageLimit(c)
	deliveries, total, err := h.svc.ListMyDeliveries(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"deliveries": deliveries, "total": total})
}

func (h *Handler) GetDelivery(c echo.Context) error {
	if _, _, err := utils.ExtractUserInfo(c); err != nil {
		return err
	}

	delivery, err := h.svc.GetDelivery(c.Request().Context(), c.Param("deliveryId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, delivery)
}

// Claim lets the calling driver take an unclaimed delivery. A 409 means
// another driver got there first.
func (h *Handler) Claim(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	delivery, err := h.svc.Claim(c.Request().Context(), c.Param("deliveryId"), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, delivery)
}

// UpdateStatus records driver progress on a claimed delivery.
func (h *Handler) UpdateStatus(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateDeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	delivery, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("deliveryId"), userID, req.Status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, delivery)
}

func (h *Handler) GetDriverProfile(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	profile, err := h.svc.GetDriverProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, profile)
}

func (h *Handler) UpsertDriverProfile(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpsertDriverProfileRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	profile, err := h.svc.UpsertDriverProfile(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, profile)
}
