package places

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"example.com/trip-dashboard/backend/internal/metrics"
	"example.com/trip-dashboard/backend/internal/models"
)

const (
	SectionStay    = "Places to stay"
	SectionVisit   = "Places to visit"
	SectionFood    = "Food"
	SectionShop    = "Shopping"
	SectionLeave   = "Tickets to leave"
	defaultLimit   = 10
	componentPlace = "places"
	componentGeo   = "geocoder"
)

// Section описывает одну категорию предложений дня.
type Section struct {
	Label       string
	Filters     []string
	GoogleQuery string
	Icon        models.IconKind
}

// SectionsForDay возвращает категории дня: 1: жилье и достопримечательности,
// 2: еда и покупки, 3 и далее: транспортные узлы.
func SectionsForDay(day int, destination string) []Section {
	switch day {
	case 1:
		return []Section{
			{Label: SectionStay, Filters: []string{"[tourism=hotel]", "[amenity=hotel]"}, GoogleQuery: "best hotels in " + destination, Icon: models.IconStay},
			{Label: SectionVisit, Filters: []string{"[tourism=attraction]"}, GoogleQuery: "tourist attractions in " + destination, Icon: models.IconVisit},
		}
	case 2:
		return []Section{
			{Label: SectionFood, Filters: []string{"[amenity=restaurant]"}, GoogleQuery: "best restaurants in " + destination, Icon: models.IconFood},
			{Label: SectionShop, Filters: []string{"[shop~'mall|supermarket|gift|convenience']"}, GoogleQuery: "shopping in " + destination, Icon: models.IconShopping},
		}
	default:
		return []Section{
			{Label: SectionLeave, Filters: []string{"[railway=station]", "[aeroway=aerodrome]", "[amenity=bus_station]"}, GoogleQuery: "bus stations or railway stations or airport in " + destination, Icon: models.IconDeparture},
		}
	}
}

type Suggestions struct {
	Sections map[string][]models.Place `json:"sections"`
	Order    []string                  `json:"order"`
	Center   *models.Coordinates       `json:"center"`
}

// Service собирает предложения мест для дня поездки.
type Service struct {
	Geocoder Geocoder
	Overpass *OverpassClient
	Google   *GoogleClient
	Radius   int
	Limit    int
	Metrics  *metrics.Metrics
}

// NewService создает сервис предложений; google может быть nil.
func NewService(geocoder Geocoder, overpass *OverpassClient, google *GoogleClient, radius, limit int) *Service {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Service{
		Geocoder: geocoder,
		Overpass: overpass,
		Google:   google,
		Radius:   radius,
		Limit:    limit,
	}
}

// Suggest геокодирует направление и запрашивает категории дня параллельно.
// Ошибка категории дает пустой список только для нее; без центра секции пусты.
func (s *Service) Suggest(ctx context.Context, destination string, day int) Suggestions {
	destination = strings.TrimSpace(destination)
	out := Suggestions{Sections: map[string][]models.Place{}, Order: []string{}}
	if destination == "" || s.Geocoder == nil {
		return out
	}

	center, err := s.Geocoder.Geocode(ctx, destination)
	s.Metrics.Upstream(componentGeo, err)
	if err != nil {
		s.Metrics.Fallback(componentGeo)
		slog.Warn("geocoding fallback used", slog.String("destination", destination), slog.String("error", err.Error()))
		return out
	}
	out.Center = &center

	sections := SectionsForDay(day, destination)
	results := make([][]models.Place, len(sections))

	var g errgroup.Group
	for i, section := range sections {
		out.Order = append(out.Order, section.Label)
		g.Go(func() error {
			results[i] = s.querySection(ctx, center, section)
			return nil
		})
	}
	_ = g.Wait()

	for i, section := range sections {
		out.Sections[section.Label] = results[i]
	}
	return out
}

func (s *Service) querySection(ctx context.Context, center models.Coordinates, section Section) []models.Place {
	if s.Google != nil {
		places, err := s.Google.TextSearch(ctx, section.GoogleQuery)
		s.Metrics.Upstream("google_places", err)
		if err == nil && len(places) > 0 {
			return s.capped(places)
		}
		if err != nil {
			slog.Warn("google places failed, using overpass", slog.String("section", section.Label), slog.String("error", err.Error()))
		}
	}

	if s.Overpass == nil {
		return []models.Place{}
	}

	places, err := s.Overpass.Around(ctx, center, s.Radius, section.Filters)
	s.Metrics.Upstream(componentPlace, err)
	if err != nil {
		s.Metrics.Fallback(componentPlace)
		slog.Warn("places fallback used", slog.String("section", section.Label), slog.String("error", err.Error()))
		return []models.Place{}
	}
	return s.capped(places)
}

func (s *Service) capped(places []models.Place) []models.Place {
	if len(places) > s.Limit {
		places = places[:s.Limit]
	}
	out := make([]models.Place, len(places))
	copy(out, places)
	return out
}
