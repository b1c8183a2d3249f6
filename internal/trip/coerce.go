package trip

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/models"
)

const DateLayout = "2006-01-02"

var clockLayouts = []string{"3:04 PM", "03:04 PM", "3:04PM", "3 PM", "3PM", "15:04"}

// Number принимает в JSON как число, так и строку с числом.
type Number struct {
	Raw string
	Set bool
}

// UnmarshalJSON сохраняет исходное значение без проверки.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = Number{}
		return nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		*n = Number{Raw: text, Set: true}
		return nil
	}

	*n = Number{Raw: string(trimmed), Set: true}
	return nil
}

// MarshalJSON возвращает исходное значение строкой.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// NumberOf создает Number из строки.
func NumberOf(raw string) Number {
	return Number{Raw: raw, Set: true}
}

// ParseNumber разбирает число, допуская пробелы и разделители тысяч.
func ParseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// ParseAmount разбирает сумму расхода; отрицательные и нечисловые значения отклоняются.
func ParseAmount(raw string) (float64, bool) {
	value, ok := ParseNumber(raw)
	if !ok || value < 0 {
		return 0, false
	}
	return value, true
}

// CoerceDays приводит ввод к числу дней; некорректный ввод дает 1.
func CoerceDays(raw string) int {
	value, ok := ParseNumber(raw)
	if !ok || value < 1 {
		return 1
	}
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(value)
}

// CoerceBudget приводит ввод к бюджету; некорректный ввод дает 0.
func CoerceBudget(raw string) float64 {
	value, ok := ParseNumber(raw)
	if !ok {
		return 0
	}
	return value
}

// CoerceTransport приводит строку к виду транспорта; неизвестное значение дает none.
func CoerceTransport(raw string) models.Transport {
	switch models.Transport(strings.ToLower(strings.TrimSpace(raw))) {
	case models.TransportCar:
		return models.TransportCar
	case models.TransportTrain:
		return models.TransportTrain
	case models.TransportFlight:
		return models.TransportFlight
	default:
		return models.TransportNone
	}
}

// CoerceStatus приводит строку к статусу активности; по умолчанию Pending.
func CoerceStatus(raw string) models.ActivityStatus {
	if strings.EqualFold(strings.TrimSpace(raw), string(models.ActivityStatusConfirmed)) {
		return models.ActivityStatusConfirmed
	}
	return models.ActivityStatusPending
}

// CoerceCategory приводит строку к категории расхода; неизвестное значение дает Misc.
func CoerceCategory(raw string) models.Category {
	trimmed := strings.TrimSpace(raw)
	for _, category := range models.Categories() {
		if strings.EqualFold(trimmed, string(category)) {
			return category
		}
	}
	return models.CategoryMisc
}

// ParseDate проверяет календарную дату YYYY-MM-DD и возвращает ее без пробелов.
func ParseDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if _, err := time.Parse(DateLayout, trimmed); err != nil {
		return "", false
	}
	return trimmed, true
}

// DaysBetween считает длительность поездки по датам включительно, минимум 1.
func DaysBetween(start, end string) int {
	from, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return 1
	}
	to, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return 1
	}

	days := int(math.Ceil(to.Sub(from).Hours()/24)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// ParseClock разбирает время вида "HH:MM AM/PM" в минуты от полуночи.
func ParseClock(raw string) (int, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if normalized == "" {
		return 0, false
	}

	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, normalized)
		if err == nil {
			return parsed.Hour()*60 + parsed.Minute(), true
		}
	}
	return 0, false
}

// SortByTime возвращает копию активностей, упорядоченных по времени.
// Активности без разбираемого времени идут последними в исходном порядке.
func SortByTime(activities []models.Activity) []models.Activity {
	out := make([]models.Activity, len(activities))
	copy(out, activities)

	sort.SliceStable(out, func(i, j int) bool {
		left, leftOK := ParseClock(out[i].Time)
		right, rightOK := ParseClock(out[j].Time)
		switch {
		case leftOK && rightOK:
			return left < right
		case leftOK:
			return true
		default:
			return false
		}
	})
	return out
}
