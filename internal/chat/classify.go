package chat

import (
	"strings"
	"unicode"
)

type Intent string

const (
	IntentBudget   Intent = "budget"
	IntentActivity Intent = "activity"
	IntentGroup    Intent = "group"
	IntentGeneric  Intent = "generic"
)

var intentRules = []struct {
	Intent   Intent
	Keywords []string
}{
	{Intent: IntentBudget, Keywords: []string{"budget", "cost", "price"}},
	{Intent: IntentActivity, Keywords: []string{"activity", "plan", "do"}},
	{Intent: IntentGroup, Keywords: []string{"member", "group"}},
}

var cannedReplies = map[Intent]string{
	IntentBudget:   "Budget tip: keep receipts using Scan bills. Set destination, days and people to plan.",
	IntentActivity: "Try “Suggested nearby” to add places to your plan for the day.",
	IntentGroup:    "Use Travel Group to add or remove members.",
	IntentGeneric:  "Got it! I will connect to the chatbot backend automatically when available.",
}

// Classify определяет намерение сообщения по первому сработавшему правилу.
// Короткое ключевое слово "do" должно быть отдельным словом, остальные ищутся как подстроки.
func Classify(message string) Intent {
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, rule := range intentRules {
		for _, keyword := range rule.Keywords {
			if len(keyword) <= 2 {
				if containsWord(words, keyword) {
					return rule.Intent
				}
				continue
			}
			if strings.Contains(lower, keyword) {
				return rule.Intent
			}
		}
	}
	return IntentGeneric
}

// CannedReply возвращает заготовленный ответ для сообщения.
func CannedReply(message string) string {
	return cannedReplies[Classify(message)]
}

func containsWord(words []string, target string) bool {
	for _, word := range words {
		if word == target {
			return true
		}
	}
	return false
}
