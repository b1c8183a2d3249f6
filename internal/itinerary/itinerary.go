package itinerary

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"example.com/trip-dashboard/backend/internal/bill"
	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/places"
	"example.com/trip-dashboard/backend/internal/trip"
)

const (
	AutoAddLimit        = 3
	defaultSectionLimit = 5
)

var autoAddSlots = []string{"09:00 AM", "01:00 PM", "05:00 PM"}

type Suggester interface {
	Suggest(ctx context.Context, destination string, day int) places.Suggestions
}

type BillProcessor interface {
	Process(ctx context.Context, filename string, image io.Reader) []bill.Item
}

type Navigation struct {
	Day     int   `json:"day"`
	Days    []int `json:"days"`
	Prev    int   `json:"prev"`
	Next    int   `json:"next"`
	HasPrev bool  `json:"hasPrev"`
	HasNext bool  `json:"hasNext"`
}

type Suggestion struct {
	models.Place
	Section         string          `json:"section"`
	Icon            models.IconKind `json:"icon"`
	Justification   string          `json:"justification"`
	Score           float64         `json:"score"`
	RatingEstimated bool            `json:"ratingEstimated"`
}

type Marker struct {
	Name    string          `json:"name"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Icon    models.IconKind `json:"icon"`
	Planned bool            `json:"planned"`
}

type View struct {
	Navigation
	Destination    string                  `json:"destination"`
	Activities     []models.Activity       `json:"activities"`
	Sections       map[string][]Suggestion `json:"sections"`
	Order          []string                `json:"order"`
	Center         *models.Coordinates     `json:"center"`
	Markers        []Marker                `json:"markers"`
	TransportBadge *models.IconKind        `json:"transportBadge,omitempty"`
	AutoAdded      int                     `json:"autoAdded"`
	Version        int64                   `json:"version"`
}

type Capture struct {
	Day        int              `json:"day"`
	Expenses   []models.Expense `json:"expenses"`
	ManualForm *bill.ManualForm `json:"manualForm,omitempty"`
}

// Service собирает представление дня маршрута поверх снимка сессии.
type Service struct {
	Store        *trip.Store
	Places       Suggester
	Bills        BillProcessor
	SectionLimit int
}

// NewService создает сервис маршрута.
func NewService(store *trip.Store, suggester Suggester, bills BillProcessor) *Service {
	return &Service{
		Store:        store,
		Places:       suggester,
		Bills:        bills,
		SectionLimit: defaultSectionLimit,
	}
}

// ClampDay приводит запрошенный день к [1, min(3, max(1, days))].
func ClampDay(requested, days int) int {
	last := days
	if last < 1 {
		last = 1
	}
	if last > trip.MaxItineraryDays {
		last = trip.MaxItineraryDays
	}
	if requested < 1 {
		return 1
	}
	if requested > last {
		return last
	}
	return requested
}

// Navigate строит переключатель дней; на границах Prev и Next указывают на текущий день.
func Navigate(requested, days int) Navigation {
	day := ClampDay(requested, days)
	last := ClampDay(trip.MaxItineraryDays, days)

	nav := Navigation{Day: day, Prev: day, Next: day, Days: make([]int, 0, last)}
	for d := 1; d <= last; d++ {
		nav.Days = append(nav.Days, d)
	}
	if day > 1 {
		nav.Prev = day - 1
		nav.HasPrev = true
	}
	if day < last {
		nav.Next = day + 1
		nav.HasNext = true
	}
	return nav
}

// View возвращает день маршрута. При первом посещении дня без активностей
// пользователя добавляет до трех предложений со статусом Pending.
func (s *Service) View(ctx context.Context, sessionID uuid.UUID, requested int) (View, error) {
	state, err := s.Store.Get(sessionID)
	if err != nil {
		return View{}, err
	}

	nav := Navigate(requested, state.Trip.Days)
	destination := state.Trip.Location

	suggestions := places.Suggestions{Sections: map[string][]models.Place{}, Order: []string{}}
	if s.Places != nil {
		suggestions = s.Places.Suggest(ctx, destination, nav.Day)
	}

	autoAdded := 0
	picks := []models.Activity{}
	if !state.IsAutoFilled(destination, nav.Day) && !state.HasUserActivities(nav.Day) {
		picks = s.pickAutoAdd(suggestions, destination, nav.Day)
	}
	if len(picks) > 0 {
		next, changed, err := s.Store.Dispatch(sessionID, trip.AutoFill{Destination: destination, Day: nav.Day, Activities: picks})
		if err != nil {
			return View{}, err
		}
		if changed {
			autoAdded = len(next.ActivitiesForDay(nav.Day)) - len(state.ActivitiesForDay(nav.Day))
			slog.Info("itinerary auto-filled", slog.String("session_id", sessionID.String()), slog.Int("day", nav.Day), slog.Int("added", autoAdded))
		}
		state = next
	}

	return s.buildView(state, nav, suggestions, autoAdded), nil
}

func (s *Service) buildView(state trip.State, nav Navigation, suggestions places.Suggestions, autoAdded int) View {
	destination := state.Trip.Location
	activities := trip.SortByTime(state.ActivitiesForDay(nav.Day))

	planned := make(map[string]struct{}, len(activities))
	for _, activity := range activities {
		planned[trip.ActivityKey(activity.Title, activity.Location)] = struct{}{}
	}

	view := View{
		Navigation:  nav,
		Destination: destination,
		Activities:  activities,
		Sections:    make(map[string][]Suggestion, len(suggestions.Order)),
		Order:       suggestions.Order,
		Center:      suggestions.Center,
		Markers:     make([]Marker, 0),
		AutoAdded:   autoAdded,
		Version:     state.Version,
	}
	if icon, ok := state.Trip.PreferredTransport.Icon(); ok {
		view.TransportBadge = &icon
	}

	icons := sectionIcons(nav.Day, destination)
	for _, label := range suggestions.Order {
		icon := iconFor(icons, label)
		list := make([]Suggestion, 0)
		for _, place := range suggestions.Sections[label] {
			_, isPlanned := planned[trip.ActivityKey(place.Name, placeLocation(place, destination))]
			view.Markers = append(view.Markers, Marker{Name: place.Name, Lat: place.Lat, Lon: place.Lon, Icon: icon, Planned: isPlanned})
			if isPlanned || len(list) >= s.sectionLimit() {
				continue
			}
			list = append(list, newSuggestion(place, label, icon))
		}
		view.Sections[label] = list
	}
	return view
}

func (s *Service) pickAutoAdd(suggestions places.Suggestions, destination string, day int) []models.Activity {
	picks := make([]models.Activity, 0, AutoAddLimit)
	icons := sectionIcons(day, destination)

	for round := 0; len(picks) < AutoAddLimit; round++ {
		progressed := false
		for _, label := range suggestions.Order {
			list := suggestions.Sections[label]
			if round >= len(list) || len(picks) == AutoAddLimit {
				continue
			}
			progressed = true

			suggestion := newSuggestion(list[round], label, iconFor(icons, label))
			rating := suggestion.Score
			picks = append(picks, models.Activity{
				ID:              s.Store.NewID(),
				Title:           suggestion.Name,
				Time:            autoAddSlots[len(picks)],
				Location:        placeLocation(suggestion.Place, destination),
				Status:          models.ActivityStatusPending,
				Day:             day,
				Description:     suggestion.Justification,
				Rating:          &rating,
				RatingEstimated: suggestion.RatingEstimated,
				Suggested:       true,
			})
		}
		if !progressed {
			break
		}
	}
	return picks
}

// CaptureBill распознает чек и сохраняет все позиции как расходы без подтверждения.
// Нераспознанная дата позиции заменяется сегодняшней. Пустой результат возвращает форму ручного ввода.
func (s *Service) CaptureBill(ctx context.Context, sessionID uuid.UUID, requested int, filename string, image io.Reader) (Capture, error) {
	state, err := s.Store.Get(sessionID)
	if err != nil {
		return Capture{}, err
	}
	day := ClampDay(requested, state.Trip.Days)
	capture := Capture{Day: day, Expenses: []models.Expense{}}

	var items []bill.Item
	if s.Bills != nil {
		items = s.Bills.Process(ctx, filename, image)
	}

	actions := make([]trip.Action, 0, len(items))
	ids := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := s.Store.NewID()
		ids[id] = struct{}{}
		date, ok := trip.ParseDate(item.Date)
		if !ok {
			date = s.Store.Today()
		}
		actions = append(actions, trip.AddExpense{
			ID:       id,
			Title:    item.Title,
			Amount:   strconv.FormatFloat(item.Amount, 'f', -1, 64),
			Category: item.Category,
			Date:     date,
		})
	}

	if len(actions) > 0 {
		next, _, err := s.Store.Dispatch(sessionID, actions...)
		if err != nil {
			return Capture{}, err
		}
		for _, expense := range next.Expenses {
			if _, ok := ids[expense.ID]; ok {
				capture.Expenses = append(capture.Expenses, expense)
			}
		}
	}

	if len(capture.Expenses) == 0 {
		form := bill.NewManualForm(day, filename, s.Store.Today())
		capture.ManualForm = &form
	}
	return capture, nil
}

// ManualEntry возвращает форму ручного ввода, когда изображения нет.
func (s *Service) ManualEntry(sessionID uuid.UUID, requested int, filename string) (Capture, error) {
	state, err := s.Store.Get(sessionID)
	if err != nil {
		return Capture{}, err
	}
	day := ClampDay(requested, state.Trip.Days)
	form := bill.NewManualForm(day, filename, s.Store.Today())
	return Capture{Day: day, Expenses: []models.Expense{}, ManualForm: &form}, nil
}

func (s *Service) sectionLimit() int {
	if s.SectionLimit <= 0 {
		return defaultSectionLimit
	}
	return s.SectionLimit
}

func newSuggestion(place models.Place, section string, icon models.IconKind) Suggestion {
	suggestion := Suggestion{
		Place:         place,
		Section:       section,
		Icon:          icon,
		Justification: Justify(place.Name),
	}
	if place.Rating != nil {
		suggestion.Score = *place.Rating
	} else {
		suggestion.Score = EstimateRating(place.Name, place.Address)
		suggestion.RatingEstimated = true
	}
	return suggestion
}

func placeLocation(place models.Place, destination string) string {
	if address := strings.TrimSpace(place.Address); address != "" {
		return address
	}
	return destination
}

func sectionIcons(day int, destination string) map[string]models.IconKind {
	icons := make(map[string]models.IconKind)
	for _, section := range places.SectionsForDay(day, destination) {
		icons[section.Label] = section.Icon
	}
	return icons
}

func iconFor(icons map[string]models.IconKind, label string) models.IconKind {
	if icon, ok := icons[label]; ok {
		return icon
	}
	return models.IconActivity
}
