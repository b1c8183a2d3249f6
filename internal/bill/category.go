package bill

import (
	"strings"
	"unicode"

	"example.com/trip-dashboard/backend/internal/models"
)

type categoryKeywords struct {
	Category models.Category
	Keywords []string
}

var categoryRules = []categoryKeywords{
	{Category: models.CategoryStay, Keywords: []string{"hotel", "stay", "lodge", "hostel", "resort", "room", "accommodation", "inn", "homestay", "cabin", "guesthouse"}},
	{Category: models.CategoryFood, Keywords: []string{"restaurant", "food", "cafe", "café", "coffee", "dining", "meal", "snack", "bakery", "beverage", "drink", "juice", "tea", "dhaba", "lunch", "dinner", "breakfast"}},
	{Category: models.CategoryActivities, Keywords: []string{"ticket", "museum", "tour", "activity", "entry", "entrance", "park", "show", "cinema", "attraction", "cruise", "boating"}},
	{Category: models.CategoryTransport, Keywords: []string{"taxi", "cab", "uber", "ola", "bus", "train", "rail", "railway", "flight", "airline", "fuel", "petrol", "diesel", "parking", "toll", "metro", "rickshaw", "transport", "ferry"}},
	{Category: models.CategoryShopping, Keywords: []string{"shop", "mall", "store", "market", "souvenir", "gift", "clothing", "apparel", "supermarket", "grocery", "boutique"}},
}

// NormalizeCategory приводит категорию из сервиса распознавания к фиксированному списку.
// Точное совпадение имеет приоритет, затем ищутся ключевые слова, иначе Misc.
func NormalizeCategory(raw string) models.Category {
	trimmed := strings.TrimSpace(raw)
	for _, category := range models.Categories() {
		if strings.EqualFold(trimmed, string(category)) {
			return category
		}
	}

	words := strings.FieldsFunc(strings.ToLower(trimmed), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, rule := range categoryRules {
		for _, word := range words {
			for _, keyword := range rule.Keywords {
				if matchesKeyword(word, keyword) {
					return rule.Category
				}
			}
		}
	}

	return models.CategoryMisc
}

func matchesKeyword(word, keyword string) bool {
	return word == keyword || word == keyword+"s" || word == keyword+"es"
}
