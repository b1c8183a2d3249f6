package budget

import (
	"math"

	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/trip"
)

const (
	RecentLimit      = 5
	StatusOnTrack    = "On Track"
	StatusOverBudget = "Over Budget"
)

type Summary struct {
	Budget          float64                     `json:"budget"`
	Spent           float64                     `json:"spent"`
	Remaining       float64                     `json:"remaining"`
	ProgressPercent float64                     `json:"progressPercent"`
	Categories      map[models.Category]float64 `json:"categories"`
	Recent          []models.Expense            `json:"recent"`
	Status          string                      `json:"status"`
	Members         int                         `json:"members"`
}

// Summarize считает расходы снимка. Проценты ограничены [0, 100] только для отображения.
func Summarize(state trip.State) Summary {
	summary := Summary{
		Budget:     state.Trip.Budget,
		Categories: make(map[models.Category]float64),
		Recent:     make([]models.Expense, 0, RecentLimit),
		Members:    len(state.Members),
	}

	for _, expense := range state.Expenses {
		summary.Spent += expense.Amount
		summary.Categories[expense.Category] += expense.Amount
	}
	summary.Remaining = summary.Budget - summary.Spent
	summary.ProgressPercent = Progress(summary.Spent, summary.Budget)

	for i := len(state.Expenses) - 1; i >= 0 && len(summary.Recent) < RecentLimit; i-- {
		summary.Recent = append(summary.Recent, state.Expenses[i])
	}

	summary.Status = StatusOnTrack
	if summary.Spent > summary.Budget {
		summary.Status = StatusOverBudget
	}
	return summary
}

// Progress возвращает долю потраченного бюджета в процентах, ограниченную [0, 100].
func Progress(spent, budget float64) float64 {
	if budget <= 0 {
		if spent > 0 {
			return 100
		}
		return 0
	}
	percent := spent / budget * 100
	return math.Max(0, math.Min(100, percent))
}
