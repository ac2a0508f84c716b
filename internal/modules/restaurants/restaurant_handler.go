package restaurants

import (
	"net/http"

	"quickbite-backend/internal/models"
	"quickbite-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for restaurants, menus and reviews.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new restaurant handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ListRestaurants is the public browse/search endpoint.
func (h *Handler) ListRestaurants(c echo.Context) error {
	filter := models.RestaurantFilter{
		Query:      c.QueryParam("q"),
		CategoryID: c.QueryParam("category"),
		OpenOnly:   c.QueryParam("open") == "true",
	}

	page, limit := utils.GetPageLimit(c)
	restaurants, total, err := h.svc.ListRestaurants(c.Request().Context(), filter, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"restaurants": restaurants, "total": total})
}

// GetRestaurant returns a storefront with its full menu.
func (h *Handler) GetRestaurant(c echo.Context) error {
	restaurant, menu, err := h.svc.GetRestaurant(c.Request().Context(), c.Param("restaurantId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"restaurant": restaurant, "menu": menu})
}

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, categories)
}

// GetMyRestaurant returns the calling merchant's own storefront.
func (h *Handler) GetMyRestaurant(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	restaurant, err := h.svc.GetMyRestaurant(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, restaurant)
}

func (h *Handler) UpdateMyRestaurant(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateRestaurantRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	restaurant, err := h.svc.UpdateRestaurant(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, restaurant)
}

func (h *Handler) CreateMenuItem(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	item, err := h.svc.CreateMenuItem(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	item, err := h.svc.UpdateMenuItem(c.Request().Context(), userID, c.Param("itemId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteMenuItem(c.Request().Context(), userID, c.Param("itemId")); err != nil {
		return utils.HandleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateReview(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	review, err := h.svc.CreateReview(c.Request().Context(), userID, c.Param("restaurantId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusCreated, review)
}

func (h *Handler) ListReviews(c echo.Context) error {
	page, limit := utils.GetPageLimit(c)
	reviews, total, err := h.svc.ListReviews(c.Request().Context(), c.Param("restaurantId"), page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}

	return utils.RespondWithJSON(c, http.StatusOK, map[string]interface{}{"reviews": reviews, "total": total})
}
