package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/itinerary"
	"example.com/trip-dashboard/backend/internal/trip"
)

var billFormFields = []string{"file", "image"}

type ItineraryHandler struct {
	Service *itinerary.Service
}

// NewItineraryHandler создает обработчик дневного маршрута.
func NewItineraryHandler(service *itinerary.Service) *ItineraryHandler {
	return &ItineraryHandler{Service: service}
}

// Day возвращает маршрут дня; номер дня приводится к допустимому диапазону.
func (h *ItineraryHandler) Day(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := h.Service.View(c.Request().Context(), sessionID, trip.CoerceDays(c.Param("day")))
	if err != nil {
		return stateError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// CaptureBill принимает фото чека (поле file или image) и сохраняет позиции
// как расходы. Без файла или без распознанных позиций возвращает форму ручного ввода.
func (h *ItineraryHandler) CaptureBill(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	day := trip.CoerceDays(c.Param("day"))

	for _, field := range billFormFields {
		header, err := c.FormFile(field)
		if err != nil {
			continue
		}

		file, err := header.Open()
		if err != nil {
			return badRequest(c, "invalid bill image")
		}
		defer file.Close()

		capture, err := h.Service.CaptureBill(c.Request().Context(), sessionID, day, filepath.Base(header.Filename), file)
		if err != nil {
			return stateError(c, err)
		}
		return c.JSON(http.StatusOK, capture)
	}

	capture, err := h.Service.ManualEntry(sessionID, day, "")
	if err != nil {
		return stateError(c, err)
	}
	return c.JSON(http.StatusOK, capture)
}
