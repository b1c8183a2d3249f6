package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GroqClient calls the Groq OpenAI-compatible chat completions API.
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type groqChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type groqChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGroqClient создает клиент Groq с заданными параметрами.
func NewGroqClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat отправляет переписку в Groq и возвращает текст первого варианта.
func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, error) {
	request := groqChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   resolveMaxTokens(c.maxTokens),
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	body, status, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, request)
	if err != nil {
		return "", err
	}

	var parsed groqChatResponse
	decodeErr := json.Unmarshal(body, &parsed)
	if status < 200 || status >= 300 {
		message := ""
		if decodeErr == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", apiError(ProviderGroq, body, message)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode groq response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("groq response missing choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
