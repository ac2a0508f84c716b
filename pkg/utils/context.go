package utils

import (
	"net/http"
	"strconv"

	"quickbite-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// ExtractUserInfo reads the user ID and role the JWT middleware stored on the
// request context. A missing value means the route was wired without the auth
// middleware, which is a server bug, but it is reported as 401 to the client.
func ExtractUserInfo(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("userID").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing authentication"})
	}
	return userID, role, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// GetPageLimit parses the page/limit query parameters with sane bounds.
func GetPageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
