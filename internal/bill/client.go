package bill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/metrics"
	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/trip"
)

const (
	DefaultPath = "/image_process/process-bill"
	formField   = "file"
	component   = "bill"
)

type Item struct {
	Title    string          `json:"title"`
	Amount   float64         `json:"amount"`
	Category models.Category `json:"category"`
	Date     string          `json:"date"`
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
	Metrics    *metrics.Metrics
}

// NewClient создает клиент сервиса распознавания чеков.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + DefaultPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// Process отправляет изображение чека и возвращает позиции. При любой
// ошибке возвращается пустой список.
func (c *Client) Process(ctx context.Context, filename string, image io.Reader) []Item {
	items, err := c.process(ctx, filename, image)
	c.Metrics.Upstream(component, err)
	if err != nil {
		c.Metrics.Fallback(component)
		slog.Warn("bill fallback used", slog.String("file", filename), slog.String("error", err.Error()))
		return []Item{}
	}
	return items
}

func (c *Client) process(ctx context.Context, filename string, image io.Reader) ([]Item, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(formField, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("bill api error: status %d", response.StatusCode)
	}

	return Normalize(raw, c.now().Format(trip.DateLayout))
}

type modelResponse struct {
	Items []map[string]interface{} `json:"items"`
	Lines []map[string]interface{} `json:"lines"`
	Data  []map[string]interface{} `json:"data"`
}

// Normalize разбирает ответ сервиса: строки берутся из items, затем data, затем lines,
// название из title или name, сумма из amount (число или строка) или total.
func Normalize(raw []byte, today string) ([]Item, error) {
	var parsed modelResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode bill response: %w", err)
	}

	rows := parsed.Items
	if len(rows) == 0 {
		rows = parsed.Data
	}
	if len(rows) == 0 {
		rows = parsed.Lines
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{
			Title:    firstString(row, "title", "name"),
			Amount:   rowAmount(row),
			Category: NormalizeCategory(firstString(row, "category")),
			Date:     firstString(row, "date"),
		}
		if item.Title == "" {
			item.Title = "Item"
		}
		if item.Date == "" {
			item.Date = today
		}
		items = append(items, item)
	}
	return items, nil
}

func firstString(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := row[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func rowAmount(row map[string]interface{}) float64 {
	if amount := numberValue(row["amount"]); amount != 0 {
		return amount
	}
	return numberValue(row["total"])
}

func numberValue(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if parsed, ok := trip.ParseNumber(v); ok {
			return parsed
		}
	}
	return 0
}
