package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/trip"
)

type TripHandler struct {
	Store *trip.Store
}

// NewTripHandler создает обработчик снимка поездки.
func NewTripHandler(store *trip.Store) *TripHandler {
	return &TripHandler{Store: store}
}

type TripPatchRequest struct {
	Location           *string     `json:"location"`
	Days               trip.Number `json:"days"`
	Budget             trip.Number `json:"budget"`
	Planned            *bool       `json:"planned"`
	PreferredTransport *string     `json:"preferredTransport"`
}

type MemberRequest struct {
	Name string `json:"name" validate:"max=100"`
}

type ActivityRequest struct {
	Title       string      `json:"title" validate:"max=200"`
	Time        string      `json:"time" validate:"max=20"`
	Location    string      `json:"location" validate:"max=300"`
	Status      string      `json:"status"`
	Day         trip.Number `json:"day"`
	Description string      `json:"description" validate:"max=1000"`
}

type ExpenseRequest struct {
	Title    string      `json:"title" validate:"max=200"`
	Amount   trip.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

// MutationResponse сообщает, изменил ли запрос снимок. Некорректный ввод
// не является ошибкой и возвращается с applied=false.
type MutationResponse struct {
	Applied bool       `json:"applied"`
	State   trip.State `json:"trip"`
}

// Get возвращает текущий снимок поездки.
func (h *TripHandler) Get(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	state, err := h.Store.Get(sessionID)
	if err != nil {
		return stateError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// Patch меняет скалярные поля поездки с приведением значений.
func (h *TripHandler) Patch(c echo.Context) error {
	_, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req TripPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	actions := make([]trip.Action, 0, 5)
	if req.Location != nil {
		actions = append(actions, trip.SetLocation{Location: *req.Location})
	}
	if req.Days.Set {
		actions = append(actions, trip.SetDays{Days: trip.CoerceDays(req.Days.Raw)})
	}
	if req.Budget.Set {
		actions = append(actions, trip.SetBudget{Budget: trip.CoerceBudget(req.Budget.Raw)})
	}
	if req.Planned != nil {
		actions = append(actions, trip.SetPlanned{Planned: *req.Planned})
	}
	if req.PreferredTransport != nil {
		actions = append(actions, trip.SetPreferredTransport{Transport: models.Transport(*req.PreferredTransport)})
	}

	return h.dispatch(c, actions...)
}

// AddMember добавляет участника группы; пустое имя игнорируется.
func (h *TripHandler) AddMember(c echo.Context) error {
	var req MemberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return h.dispatch(c)
	}
	return h.dispatch(c, trip.AddMember{Member: h.Store.NewMember(name)})
}

// RemoveMember удаляет участника по идентификатору.
func (h *TripHandler) RemoveMember(c echo.Context) error {
	return h.dispatch(c, trip.RemoveMember{ID: c.Param("id")})
}

// AddActivity добавляет активность; день приводится к допустимому диапазону.
func (h *TripHandler) AddActivity(c echo.Context) error {
	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return h.dispatch(c)
	}

	return h.dispatch(c, trip.AddActivity{Activity: models.Activity{
		ID:          h.Store.NewID(),
		Title:       title,
		Time:        strings.TrimSpace(req.Time),
		Location:    strings.TrimSpace(req.Location),
		Status:      trip.CoerceStatus(req.Status),
		Day:         trip.CoerceDays(req.Day.Raw),
		Description: strings.TrimSpace(req.Description),
	}})
}

// RemoveActivity удаляет активность, в том числе добавленную автоматически.
func (h *TripHandler) RemoveActivity(c echo.Context) error {
	return h.dispatch(c, trip.RemoveActivity{ID: c.Param("id")})
}

// AddExpense добавляет расход; некорректная сумма оставляет снимок без изменений.
func (h *TripHandler) AddExpense(c echo.Context) error {
	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return h.dispatch(c)
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = h.Store.Today()
	}

	return h.dispatch(c, trip.AddExpense{
		ID:       h.Store.NewID(),
		Title:    title,
		Amount:   req.Amount.Raw,
		Category: models.Category(req.Category),
		Date:     date,
	})
}

// RemoveExpense удаляет расход по идентификатору.
func (h *TripHandler) RemoveExpense(c echo.Context) error {
	return h.dispatch(c, trip.RemoveExpense{ID: c.Param("id")})
}

func (h *TripHandler) dispatch(c echo.Context, actions ...trip.Action) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	state, applied, err := h.Store.Dispatch(sessionID, actions...)
	if err != nil {
		return stateError(c, err)
	}
	return c.JSON(http.StatusOK, MutationResponse{Applied: applied, State: state})
}
