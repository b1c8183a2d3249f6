package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/models"
)

const googleResultLimit = 5

// GoogleClient выполняет текстовый поиск Google Places.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type googleTextSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		PlaceID          string   `json:"place_id"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewGoogleClient создает клиент; без ключа возвращает nil.
func NewGoogleClient(apiKey, baseURL string, timeout time.Duration) *GoogleClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &GoogleClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TextSearch возвращает первые пять мест по текстовому запросу.
func (c *GoogleClient) TextSearch(ctx context.Context, query string) ([]models.Place, error) {
	if c == nil {
		return nil, errors.New("google places api key is missing")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	body, err := getJSON(ctx, c.httpClient, c.baseURL+"/textsearch/json?"+params.Encode(), "")
	if err != nil {
		return nil, fmt.Errorf("google places: %w", err)
	}

	var parsed googleTextSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("google places decode: %w", err)
	}
	if parsed.Status != "" && parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("google places api error: %s %s", parsed.Status, parsed.ErrorMessage)
	}

	out := make([]models.Place, 0, googleResultLimit)
	for _, result := range parsed.Results {
		if len(out) == googleResultLimit {
			break
		}
		out = append(out, models.Place{
			Name:    result.Name,
			Lat:     result.Geometry.Location.Lat,
			Lon:     result.Geometry.Location.Lng,
			Address: result.FormattedAddress,
			Rating:  result.Rating,
			PlaceID: result.PlaceID,
		})
	}
	return out, nil
}
