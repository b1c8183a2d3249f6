package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/prediction"
	"example.com/trip-dashboard/backend/internal/trip"
)

type Predictor interface {
	Predict(ctx context.Context, req prediction.Request) prediction.Result
}

type PlanHandler struct {
	Store     *trip.Store
	Predictor Predictor
}

// NewPlanHandler создает обработчик формы планирования поездки.
func NewPlanHandler(store *trip.Store, predictor Predictor) *PlanHandler {
	return &PlanHandler{Store: store, Predictor: predictor}
}

type PlanRequest struct {
	Destination string      `json:"destination" validate:"max=200"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	Budget      trip.Number `json:"budget"`
	People      trip.Number `json:"people"`
}

type PlanResponse struct {
	State      trip.State        `json:"trip"`
	Prediction prediction.Result `json:"prediction"`
}

// Plan сохраняет параметры поездки, отмечает ее запланированной и
// возвращает прогноз стоимости. Отказ сервиса прогнозов не является ошибкой.
func (h *PlanHandler) Plan(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	days := trip.DaysBetween(req.StartDate, req.EndDate)
	budget := trip.CoerceBudget(req.Budget.Raw)

	actions := []trip.Action{
		trip.SetDays{Days: days},
		trip.SetBudget{Budget: budget},
		trip.SetPlanned{Planned: true},
	}
	if destination := strings.TrimSpace(req.Destination); destination != "" {
		actions = append([]trip.Action{trip.SetLocation{Location: destination}}, actions...)
	}

	state, _, err := h.Store.Dispatch(sessionID, actions...)
	if err != nil {
		return stateError(c, err)
	}

	people := groupSize(state, req.People)
	result := h.Predictor.Predict(c.Request().Context(), prediction.Request{
		Destination:      state.Trip.Location,
		TripType:         prediction.TripTypeFor(people),
		ParticipantCount: people,
		Days:             days,
		Budget:           budget,
	})

	return c.JSON(http.StatusOK, PlanResponse{State: state, Prediction: result})
}

// groupSize берет число участников из формы, а если его нет или оно
// некорректно, то размер группы, но не меньше 1.
func groupSize(state trip.State, people trip.Number) int {
	if value, ok := trip.ParseNumber(people.Raw); people.Set && ok && value >= 1 {
		return trip.CoerceDays(people.Raw)
	}
	if len(state.Members) > 1 {
		return len(state.Members)
	}
	return 1
}
