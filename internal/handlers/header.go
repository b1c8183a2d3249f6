package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/repository"
)

type HeaderHandler struct {
	Headers repository.HeaderStore
	now     func() time.Time
}

// NewHeaderHandler создает обработчик сохраняемого заголовка поездки.
func NewHeaderHandler(headers repository.HeaderStore) *HeaderHandler {
	return &HeaderHandler{Headers: headers, now: time.Now}
}

type HeaderRequest struct {
	Destination string `json:"destination" validate:"max=200"`
	StartDate   string `json:"startDate" validate:"date"`
	EndDate     string `json:"endDate" validate:"date"`
	SpentINR    int64  `json:"spentINR" validate:"gte=0"`
	Places      int    `json:"places" validate:"gte=0"`
}

// Get возвращает заголовок сессии или значения по умолчанию, если он не сохранен.
func (h *HeaderHandler) Get(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	header, err := h.Headers.Get(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, repository.DefaultHeader(h.now()))
		}
		slog.Error("failed to load trip header", slog.String("error", err.Error()))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, header)
}

// Put создает или перезаписывает заголовок сессии.
func (h *HeaderHandler) Put(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req HeaderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	start, end, err := repository.ParseHeaderDates(req.StartDate, req.EndDate)
	if err != nil {
		return badRequest(c, "invalid date format, use YYYY-MM-DD")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	header, err := h.Headers.Upsert(c.Request().Context(), sessionID, repository.HeaderInput{
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		SpentINR:    req.SpentINR,
		Places:      req.Places,
	})
	if err != nil {
		slog.Error("failed to save trip header", slog.String("error", err.Error()))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, header)
}
