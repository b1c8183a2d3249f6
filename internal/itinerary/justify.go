package itinerary

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Cue string

const (
	CueLodging    Cue = "lodging"
	CueAttraction Cue = "attraction"
	CueFood       Cue = "food"
	CueGeneral    Cue = "general"
)

var cueKeywords = []struct {
	Cue      Cue
	Keywords []string
}{
	{Cue: CueLodging, Keywords: []string{"hotel", "resort", "homestay", "inn", "hostel", "lodge", "villa", "residency", "suites", "guesthouse", "stay"}},
	{Cue: CueAttraction, Keywords: []string{"museum", "fort", "palace", "temple", "church", "mosque", "synagogue", "beach", "park", "gallery", "monument", "lake", "falls", "viewpoint", "garden", "nets", "island", "backwaters"}},
	{Cue: CueFood, Keywords: []string{"restaurant", "cafe", "café", "kitchen", "bakery", "dhaba", "grill", "bistro", "eatery", "biryani", "canteen", "food", "diner"}},
}

var justifications = map[Cue]string{
	CueLodging:    "Comfortable base close to the places you plan to see.",
	CueAttraction: "Popular sight nearby, worth a visit on this day.",
	CueFood:       "Good spot nearby to try local food.",
	CueGeneral:    "Convenient nearby pick for this day of your trip.",
}

// Classify определяет подсказку по ключевым словам в названии места.
func Classify(name string) Cue {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, rule := range cueKeywords {
		for _, word := range words {
			for _, keyword := range rule.Keywords {
				if word == keyword || word == keyword+"s" {
					return rule.Cue
				}
			}
		}
	}
	return CueGeneral
}

// Justify возвращает короткое пояснение, почему место предложено.
func Justify(name string) string {
	return justifications[Classify(name)]
}

// EstimateRating дает детерминированную оценку 3.5..4.9 по длине названия и адреса.
// Это заглушка, а не настоящий рейтинг.
func EstimateRating(name, address string) float64 {
	length := utf8.RuneCountInString(strings.TrimSpace(name)) + utf8.RuneCountInString(strings.TrimSpace(address))
	return math.Round((3.5+float64(length%15)/10)*10) / 10
}
