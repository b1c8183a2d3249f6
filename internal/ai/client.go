package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	defaultMaxTokens   = 512
	defaultTemperature = 0.4
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

type Settings struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// NewClient создает клиент выбранного провайдера. Пустой провайдер или ключ дают nil.
func NewClient(settings Settings) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(settings.Provider))
	if provider == "" || strings.TrimSpace(settings.APIKey) == "" {
		return nil, nil
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiClient(settings.APIKey, settings.BaseURL, settings.Model, settings.Timeout, settings.MaxTokens), nil
	case ProviderGroq:
		return NewGroqClient(settings.APIKey, settings.BaseURL, settings.Model, settings.Timeout, settings.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", settings.Provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}
	return defaultMaxTokens
}

// postJSON отправляет JSON и возвращает тело ответа вместе с кодом статуса.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload any) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, response.StatusCode, err
	}
	return body, response.StatusCode, nil
}

func apiError(provider string, body []byte, message string) error {
	if message != "" {
		return fmt.Errorf("%s api error: %s", provider, message)
	}
	return fmt.Errorf("%s api error: %s", provider, strings.TrimSpace(string(body)))
}
