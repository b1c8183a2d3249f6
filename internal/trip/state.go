package trip

import (
	"strconv"
	"strings"

	"example.com/trip-dashboard/backend/internal/models"
)

const (
	MaxItineraryDays = 3

	defaultLocation = "Kochi, Kerala"
	defaultDays     = 3
	defaultBudget   = 50000
	defaultMember   = "You"
)

// State хранит неизменяемый снимок поездки. Редьюсеры возвращают новый снимок
// и никогда не меняют срезы исходного.
type State struct {
	Trip       models.Trip       `json:"trip"`
	Members    []models.Member   `json:"members"`
	Activities []models.Activity `json:"activities"`
	Expenses   []models.Expense  `json:"expenses"`
	AutoFilled []string          `json:"autoFilled"`
	Version    int64             `json:"version"`
}

// NewState возвращает снимок новой сессии со значениями по умолчанию.
func NewState(memberID string) State {
	return State{
		Trip: models.Trip{
			Location:           defaultLocation,
			Days:               defaultDays,
			Budget:             defaultBudget,
			PreferredTransport: models.TransportNone,
		},
		Members:    []models.Member{{ID: memberID, Name: defaultMember}},
		Activities: []models.Activity{},
		Expenses:   []models.Expense{},
		AutoFilled: []string{},
	}
}

// DisplayDays возвращает число дней, доступных в маршруте.
func (s State) DisplayDays() int {
	days := s.Trip.Days
	if days < 1 {
		days = 1
	}
	if days > MaxItineraryDays {
		days = MaxItineraryDays
	}
	return days
}

// ClampDay приводит номер дня к диапазону [1, DisplayDays].
func (s State) ClampDay(day int) int {
	if day < 1 {
		return 1
	}
	if last := s.DisplayDays(); day > last {
		return last
	}
	return day
}

// ActivitiesForDay возвращает активности дня в порядке добавления.
func (s State) ActivitiesForDay(day int) []models.Activity {
	out := make([]models.Activity, 0)
	for _, activity := range s.Activities {
		if activity.Day == day {
			out = append(out, activity)
		}
	}
	return out
}

// HasUserActivities сообщает, добавлял ли пользователь что-то в этот день.
func (s State) HasUserActivities(day int) bool {
	for _, activity := range s.Activities {
		if activity.Day == day && !activity.Suggested {
			return true
		}
	}
	return false
}

// IsAutoFilled сообщает, выполнялось ли автозаполнение дня для направления.
func (s State) IsAutoFilled(destination string, day int) bool {
	return containsString(s.AutoFilled, AutoFillKey(destination, day))
}

// AutoFillKey строит ключ защиты автозаполнения для пары (направление, день).
func AutoFillKey(destination string, day int) string {
	return normalizeKey(destination) + "#" + strconv.Itoa(day)
}

// ActivityKey строит ключ дедупликации предложений по названию и месту.
func ActivityKey(title, location string) string {
	return normalizeKey(title) + "|" + normalizeKey(location)
}

func normalizeKey(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
