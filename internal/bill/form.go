package bill

import (
	"path/filepath"
	"strconv"
	"strings"

	"example.com/trip-dashboard/backend/internal/models"
)

// ManualForm содержит предзаполненную форму ручного ввода, когда чек не распознан.
type ManualForm struct {
	Title    string          `json:"title"`
	Amount   string          `json:"amount"`
	Category models.Category `json:"category"`
	Date     string          `json:"date"`
	FileHint string          `json:"fileHint,omitempty"`
}

// NewManualForm собирает форму для дня поездки с подсказкой из имени файла.
func NewManualForm(day int, filename, today string) ManualForm {
	return ManualForm{
		Title:    "Bill - Day " + strconv.Itoa(day),
		Amount:   "",
		Category: models.CategoryMisc,
		Date:     today,
		FileHint: fileHint(filename),
	}
}

func fileHint(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" {
		return ""
	}
	return base
}
