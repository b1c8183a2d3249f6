package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/auth"
	"example.com/trip-dashboard/backend/internal/metrics"
	"example.com/trip-dashboard/backend/internal/trip"
)

type SessionHandler struct {
	Store   *trip.Store
	Tokens  *auth.TokenManager
	Metrics *metrics.Metrics
}

// NewSessionHandler создает обработчик сессий поездки.
func NewSessionHandler(store *trip.Store, tokens *auth.TokenManager, m *metrics.Metrics) *SessionHandler {
	return &SessionHandler{Store: store, Tokens: tokens, Metrics: m}
}

type SessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	SessionID uuid.UUID  `json:"session_id"`
	State     trip.State `json:"trip"`
}

// Create открывает новую сессию со снимком по умолчанию и выдает токен.
func (h *SessionHandler) Create(c echo.Context) error {
	sessionID, state := h.Store.Create()

	token, err := h.Tokens.NewSessionToken(sessionID)
	if err != nil {
		slog.Error("failed to sign session token", slog.String("error", err.Error()))
		return serverError(c)
	}

	h.Metrics.SessionCreated()
	return c.JSON(http.StatusCreated, SessionResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		SessionID: sessionID,
		State:     state,
	})
}
