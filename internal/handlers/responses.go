package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/auth"
	"example.com/trip-dashboard/backend/internal/trip"
)

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid session"})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// stateError отвечает на ошибку чтения или изменения сессии.
func stateError(c echo.Context, err error) error {
	if errors.Is(err, trip.ErrSessionNotFound) {
		return notFound(c, "session not found")
	}
	return serverError(c)
}

func sessionFromContext(c echo.Context) (uuid.UUID, bool) {
	return auth.SessionIDFromContext(c)
}
