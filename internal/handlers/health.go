package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/trip"
)

type HealthHandler struct {
	Store   *trip.Store
	Storage string
}

// NewHealthHandler создает обработчик проверки состояния.
func NewHealthHandler(store *trip.Store, storage string) *HealthHandler {
	return &HealthHandler{Store: store, Storage: storage}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage,omitempty"`
	Sessions int    `json:"sessions"`
}

// Health возвращает статус сервиса и число активных сессий.
func (h *HealthHandler) Health(c echo.Context) error {
	response := HealthResponse{Status: "ok", Storage: h.Storage}
	if h.Store != nil {
		response.Sessions = h.Store.Len()
	}
	return c.JSON(http.StatusOK, response)
}
