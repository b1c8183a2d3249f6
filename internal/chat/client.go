package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/metrics"
)

const (
	DefaultTimeout = 3500 * time.Millisecond
	component      = "chat"
)

var errEmptyReply = errors.New("chat api returned empty reply")

type Client struct {
	urls       []string
	timeout    time.Duration
	httpClient *http.Client
	Metrics    *metrics.Metrics
}

// NewClient создает клиент чат-бота; каждый адрес пробуется со своим таймаутом.
func NewClient(urls []string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	candidates := make([]string, 0, len(urls))
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			candidates = append(candidates, url)
		}
	}
	return &Client{
		urls:       candidates,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Reply перебирает адреса по порядку. При отказе всех возвращает false.
func (c *Client) Reply(ctx context.Context, message string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, url := range c.urls {
		reply, err := c.call(ctx, url, message)
		c.Metrics.Upstream(component, err)
		if err == nil {
			return reply, true
		}
		slog.Debug("chat endpoint failed", slog.String("url", url), slog.String("error", err.Error()))
	}
	return "", false
}

func (c *Client) call(ctx context.Context, url, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("chat api error: status %d", response.StatusCode)
	}
	return extractReply(body)
}

// extractReply берет текст из reply, message или text, иначе возвращает тело JSON как есть.
func extractReply(body []byte) (string, error) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat reply: %w", err)
	}

	if fields, ok := parsed.(map[string]any); ok {
		for _, key := range []string{"reply", "message", "text"} {
			if value, ok := fields[key].(string); ok && strings.TrimSpace(value) != "" {
				return value, nil
			}
		}
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "", errEmptyReply
	}
	return raw, nil
}
