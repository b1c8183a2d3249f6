package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/metrics"
)

type TripType string

type Source string

const (
	TripTypeSolo     TripType = "solo"
	TripTypeFriends  TripType = "friends"
	TripTypeBusiness TripType = "business"

	SourceService  Source = "service"
	SourceFallback Source = "fallback"

	StatusOverBudget   = "Over Budget"
	StatusWithinBudget = "Within Budget"

	FallbackNotice = "Prediction service is unavailable, showing an estimate."

	component = "prediction"
)

var DefaultPaths = []string{"/travel_ai/predict", "/predict-trip"}

type Request struct {
	Destination      string   `json:"destination"`
	TripType         TripType `json:"tripType"`
	ParticipantCount int      `json:"participantCount"`
	Days             int      `json:"days"`
	Budget           float64  `json:"budget"`
}

type CostBreakdown struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Transport     float64 `json:"transport"`
	Activities    float64 `json:"activities"`
}

type Prediction struct {
	PredictedCost   float64       `json:"predictedCost"`
	TripCategory    string        `json:"tripCategory"`
	CostBreakdown   CostBreakdown `json:"costBreakdown"`
	Recommendations []string      `json:"recommendations"`
	BudgetStatus    string        `json:"budgetStatus"`
}

type Result struct {
	Prediction
	Source Source `json:"source"`
	Notice string `json:"notice,omitempty"`
}

// TripTypeFor выбирает тип поездки по числу участников.
func TripTypeFor(people int) TripType {
	if people > 1 {
		return TripTypeFriends
	}
	return TripTypeSolo
}

// Estimate считает детерминированный прогноз стоимости поездки.
func Estimate(req Request) Prediction {
	rate := 3000.0
	category := "Solo Leisure"
	if req.TripType == TripTypeFriends {
		rate = 3500
		category = "Group Leisure"
	}

	cost := math.Round(float64(atLeastOne(req.Days)) * rate * float64(atLeastOne(req.ParticipantCount)) * 1.1)

	status := StatusWithinBudget
	if cost > req.Budget {
		status = StatusOverBudget
	}

	return Prediction{
		PredictedCost: cost,
		TripCategory:  category,
		CostBreakdown: CostBreakdown{
			Accommodation: math.Round(cost * 0.4),
			Food:          math.Round(cost * 0.25),
			Transport:     math.Round(cost * 0.2),
			Activities:    math.Round(cost * 0.15),
		},
		Recommendations: []string{"Scan bills to keep track", "Use public transport to save costs"},
		BudgetStatus:    status,
	}
}

type Client struct {
	baseURL    string
	paths      []string
	httpClient *http.Client
	Metrics    *metrics.Metrics
}

// NewClient создает клиент сервиса прогнозов; пустой список путей заменяется стандартным.
func NewClient(baseURL string, paths []string, timeout time.Duration) *Client {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict перебирает пути сервиса по порядку и при полном отказе возвращает оценку Estimate.
func (c *Client) Predict(ctx context.Context, req Request) Result {
	for _, path := range c.paths {
		prediction, err := c.call(ctx, path, req)
		c.Metrics.Upstream(component, err)
		if err == nil {
			return Result{Prediction: prediction, Source: SourceService}
		}
		slog.Debug("prediction endpoint failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	c.Metrics.Fallback(component)
	slog.Warn("prediction fallback used", slog.String("destination", req.Destination), slog.Int("days", req.Days))
	return Result{Prediction: Estimate(req), Source: SourceFallback, Notice: FallbackNotice}
}

func (c *Client) call(ctx context.Context, path string, req Request) (Prediction, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Prediction{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Prediction{}, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Prediction{}, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return Prediction{}, fmt.Errorf("prediction api error: status %d", response.StatusCode)
	}

	var parsed Prediction
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	if parsed.Recommendations == nil {
		parsed.Recommendations = []string{}
	}
	return parsed, nil
}

func atLeastOne(value int) int {
	if value < 1 {
		return 1
	}
	return value
}
