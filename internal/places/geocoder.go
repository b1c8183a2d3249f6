package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example.com/trip-dashboard/backend/internal/models"
)

var ErrNoResult = errors.New("no geocoding result")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (models.Coordinates, error)
}

// NominatimGeocoder ищет координаты через Nominatim (OpenStreetMap).
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewNominatimGeocoder создает основной геокодер.
func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Geocode возвращает координаты первого результата поиска.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)

	body, err := getJSON(ctx, g.httpClient, g.baseURL+"/search?"+params.Encode(), g.userAgent)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim decode: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, ErrNoResult
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return models.Coordinates{}, fmt.Errorf("nominatim: invalid coordinates %q,%q", results[0].Lat, results[0].Lon)
	}
	return models.Coordinates{Lat: lat, Lon: lon}, nil
}

// PhotonGeocoder ищет координаты через Photon (komoot).
type PhotonGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// NewPhotonGeocoder создает резервный геокодер.
func NewPhotonGeocoder(baseURL, userAgent string, timeout time.Duration) *PhotonGeocoder {
	return &PhotonGeocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Geocode возвращает координаты первого объекта; Photon отдает их как [lon, lat].
func (g *PhotonGeocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	body, err := getJSON(ctx, g.httpClient, g.baseURL+"/api/?"+params.Encode(), g.userAgent)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("photon: %w", err)
	}

	var parsed photonResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.Coordinates{}, fmt.Errorf("photon decode: %w", err)
	}
	if len(parsed.Features) == 0 || len(parsed.Features[0].Geometry.Coordinates) < 2 {
		return models.Coordinates{}, ErrNoResult
	}

	coords := parsed.Features[0].Geometry.Coordinates
	return models.Coordinates{Lat: coords[1], Lon: coords[0]}, nil
}

// FallbackGeocoder опрашивает геокодеры по порядку до первого успеха.
type FallbackGeocoder []Geocoder

// Geocode возвращает первый успешный результат или последнюю ошибку.
func (f FallbackGeocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	err := ErrNoResult
	for _, geocoder := range f {
		if geocoder == nil {
			continue
		}
		var coords models.Coordinates
		coords, err = geocoder.Geocode(ctx, query)
		if err == nil {
			return coords, nil
		}
	}
	return models.Coordinates{}, err
}

func getJSON(ctx context.Context, client *http.Client, endpoint, userAgent string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Language", "en")
	if userAgent != "" {
		request.Header.Set("User-Agent", userAgent)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", response.StatusCode)
	}
	return body, nil
}
