package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/budget"
	"example.com/trip-dashboard/backend/internal/trip"
)

type BudgetHandler struct {
	Store *trip.Store
}

// NewBudgetHandler создает обработчик сводки бюджета.
func NewBudgetHandler(store *trip.Store) *BudgetHandler {
	return &BudgetHandler{Store: store}
}

// Summary возвращает бюджет, траты по категориям и последние расходы.
func (h *BudgetHandler) Summary(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	state, err := h.Store.Get(sessionID)
	if err != nil {
		return stateError(c, err)
	}
	return c.JSON(http.StatusOK, budget.Summarize(state))
}
