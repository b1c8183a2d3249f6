package ai

import (
	"context"
	"errors"
	"strings"
)

const assistantPrompt = "You are a friendly travel assistant inside a trip planning dashboard. " +
	"Answer in at most three short sentences. Quote prices in INR. " +
	"Suggest the dashboard features Scan bills, Suggested nearby and Travel Group when they help."

// Assistant отвечает на сообщения чата через LLM-провайдера.
type Assistant struct {
	client Client
}

// NewAssistant создает ассистента; nil-клиент дает nil.
func NewAssistant(client Client) *Assistant {
	if client == nil {
		return nil
	}
	return &Assistant{client: client}
}

// Reply возвращает ответ модели на одно сообщение пользователя.
func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	if a == nil {
		return "", errors.New("assistant is not configured")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message is empty")
	}

	reply, err := a.client.Chat(ctx, []Message{
		{Role: "system", Content: assistantPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", errors.New("assistant returned empty reply")
	}
	return reply, nil
}
