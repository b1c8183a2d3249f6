package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/budget"
	"example.com/trip-dashboard/backend/internal/models"
)

type ExpenseExport struct {
	Destination string           `json:"destination"`
	Summary     budget.Summary   `json:"summary"`
	Expenses    []models.Expense `json:"expenses"`
}

// ExportJSON выгружает расходы поездки в JSON-файл.
func (h *BudgetHandler) ExportJSON(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	state, err := h.Store.Get(sessionID)
	if err != nil {
		return stateError(c, err)
	}

	response := ExpenseExport{
		Destination: state.Trip.Location,
		Summary:     budget.Summarize(state),
		Expenses:    state.Expenses,
	}

	filename := "expenses-" + sessionID.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, response)
}

// ExportCSV выгружает расходы поездки в CSV-файл.
func (h *BudgetHandler) ExportCSV(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	state, err := h.Store.Get(sessionID)
	if err != nil {
		return stateError(c, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeExpensesCSV(writer, state.Expenses); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "expenses-" + sessionID.String() + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeExpensesCSV(writer *csv.Writer, expenses []models.Expense) error {
	if err := writer.Write([]string{"id", "title", "amount", "category", "date"}); err != nil {
		return err
	}
	for _, expense := range expenses {
		row := []string{
			expense.ID,
			expense.Title,
			strconv.FormatFloat(expense.Amount, 'f', 2, 64),
			string(expense.Category),
			expense.Date,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}
