package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/models"
)

const (
	DefaultRadius  = 5000
	overpassOutMax = 20
)

// OverpassClient выполняет поиск объектов OpenStreetMap вокруг точки.
type OverpassClient struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

type overpassElement struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// NewOverpassClient создает клиент Overpass API.
func NewOverpassClient(endpoint, userAgent string, timeout time.Duration) *OverpassClient {
	return &OverpassClient{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BuildAroundQuery собирает объединение node/way/relation в радиусе от центра.
// Каждый фильтр дает отдельные выражения, то есть фильтры объединяются по ИЛИ.
func BuildAroundQuery(center models.Coordinates, radius int, filters []string) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radius, center.Lat, center.Lon)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, filter := range filters {
		for _, kind := range []string{"node", "way", "relation"} {
			b.WriteString(kind + filter + around + ";")
		}
	}
	b.WriteString(fmt.Sprintf(");out center %d;", overpassOutMax))
	return b.String()
}

// Around возвращает объекты с координатами; безымянные получают имя "Unnamed".
func (c *OverpassClient) Around(ctx context.Context, center models.Coordinates, radius int, filters []string) ([]models.Place, error) {
	form := url.Values{}
	form.Set("data", BuildAroundQuery(center, radius, filters))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass api error: status %d", response.StatusCode)
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode overpass: %w", err)
	}

	out := make([]models.Place, 0, len(parsed.Elements))
	for _, element := range parsed.Elements {
		lat, lon, ok := element.position()
		if !ok {
			continue
		}
		name := strings.TrimSpace(element.Tags["name"])
		if name == "" {
			name = "Unnamed"
		}
		out = append(out, models.Place{
			Name:    name,
			Lat:     lat,
			Lon:     lon,
			Address: elementAddress(element.Tags),
		})
	}
	return out, nil
}

func (e overpassElement) position() (float64, float64, bool) {
	if e.Lat != nil && e.Lon != nil && (*e.Lat != 0 || *e.Lon != 0) {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil && (e.Center.Lat != 0 || e.Center.Lon != 0) {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

func elementAddress(tags map[string]string) string {
	for _, key := range []string{"addr:full", "addr_full"} {
		if value := strings.TrimSpace(tags[key]); value != "" {
			return value
		}
	}

	street := strings.TrimSpace(tags["addr:street"])
	if street == "" {
		return ""
	}
	if number := strings.TrimSpace(tags["addr:housenumber"]); number != "" {
		return number + " " + street
	}
	return street
}
