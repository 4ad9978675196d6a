package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"waconsole/internal/database"
	"waconsole/internal/models"

	"github.com/labstack/echo/v4"
)

// respondError translates service errors into the uniform failure
// envelope. Not-found conditions become 404s instead of 500s.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	if errors.Is(err, database.ErrNotFound) {
		status = http.StatusNotFound
	}
	return c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// badRequest rejects a request before any network or database call.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   msg,
	})
}

// pagination reads limit/offset query params with sane bounds.
func pagination(c echo.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	offset = 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
