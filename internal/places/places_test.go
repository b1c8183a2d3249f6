package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/trip-dashboard/backend/internal/models"
)

type stubGeocoder struct {
	coords models.Coordinates
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(ctx context.Context, query string) (models.Coordinates, error) {
	s.calls++
	return s.coords, s.err
}

// TestNominatimGeocode проверяет разбор ответа и заголовок User-Agent.
func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("q") != "Kochi" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "trip-test" {
			t.Errorf("expected user agent, got %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`[{"lat":"9.93","lon":"76.26"}]`))
	}))
	defer srv.Close()

	coords, err := NewNominatimGeocoder(srv.URL, "trip-test", time.Second).Geocode(context.Background(), "Kochi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Lat != 9.93 || coords.Lon != 76.26 {
		t.Fatalf("unexpected coords: %+v", coords)
	}
}

// TestPhotonGeocodeOrder проверяет порядок координат [lon, lat].
func TestPhotonGeocodeOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[76.26,9.93]}}]}`))
	}))
	defer srv.Close()

	coords, err := NewPhotonGeocoder(srv.URL, "", time.Second).Geocode(context.Background(), "Kochi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Lat != 9.93 || coords.Lon != 76.26 {
		t.Fatalf("unexpected coords: %+v", coords)
	}
}

// TestFallbackGeocoder проверяет переход на резервный геокодер.
func TestFallbackGeocoder(t *testing.T) {
	primary := &stubGeocoder{err: errors.New("down")}
	secondary := &stubGeocoder{coords: models.Coordinates{Lat: 1, Lon: 2}}

	coords, err := FallbackGeocoder{primary, secondary}.Geocode(context.Background(), "x")
	if err != nil || coords.Lat != 1 || coords.Lon != 2 {
		t.Fatalf("unexpected result %+v (err=%v)", coords, err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("unexpected calls: %d %d", primary.calls, secondary.calls)
	}

	if _, err := (FallbackGeocoder{primary}).Geocode(context.Background(), "x"); err == nil {
		t.Fatal("expected error when every geocoder fails")
	}
}

// TestBuildAroundQuery проверяет, что каждый фильтр дает свои выражения в объединении.
func TestBuildAroundQuery(t *testing.T) {
	query := BuildAroundQuery(models.Coordinates{Lat: 9.5, Lon: 76.25}, 5000, []string{"[tourism=hotel]", "[amenity=hotel]"})

	for _, part := range []string{
		"node[tourism=hotel](around:5000,9.500000,76.250000);",
		"way[tourism=hotel](around:5000,9.500000,76.250000);",
		"relation[tourism=hotel](around:5000,9.500000,76.250000);",
		"node[amenity=hotel](around:5000,9.500000,76.250000);",
		"way[amenity=hotel](around:5000,9.500000,76.250000);",
		"relation[amenity=hotel](around:5000,9.500000,76.250000);",
		"out center 20;",
	} {
		if !strings.Contains(query, part) {
			t.Fatalf("expected %q in %s", part, query)
		}
	}
	if strings.Contains(query, "[tourism=hotel][amenity=hotel]") {
		t.Fatalf("filters must not be combined in one statement: %s", query)
	}
}

// TestSuggestTransitHubsUnion проверяет, что на третий день находится вокзал,
// даже если он не аэропорт и не автовокзал.
func TestSuggestTransitHubsUnion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if strings.Contains(r.PostForm.Get("data"), "node[railway=station](") {
			_, _ = w.Write([]byte(`{"elements":[{"lat":9.97,"lon":76.29,"tags":{"name":"Ernakulam Junction"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	service := NewService(&stubGeocoder{coords: models.Coordinates{Lat: 9.93, Lon: 76.26}}, NewOverpassClient(srv.URL, "test", time.Second), nil, 0, 0)
	suggestions := service.Suggest(context.Background(), "Kochi", 3)

	hubs := suggestions.Sections[SectionLeave]
	if len(hubs) != 1 || hubs[0].Name != "Ernakulam Junction" {
		t.Fatalf("expected transit hub from railway filter, got %+v", suggestions.Sections)
	}
}

// TestOverpassAround проверяет имена по умолчанию, центр и отбрасывание без координат.
func TestOverpassAround(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || !strings.Contains(r.PostForm.Get("data"), "around:") {
			t.Errorf("expected overpass query in form")
		}
		_, _ = w.Write([]byte(`{"elements":[
			{"lat":9.9,"lon":76.2,"tags":{"name":"Grand Hotel","addr:street":"MG Road"}},
			{"center":{"lat":9.8,"lon":76.1},"tags":{}},
			{"tags":{"name":"Nowhere"}}
		]}`))
	}))
	defer srv.Close()

	places, err := NewOverpassClient(srv.URL, "trip-test", time.Second).Around(context.Background(), models.Coordinates{Lat: 9.9, Lon: 76.2}, 5000, []string{"[tourism=hotel]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %+v", places)
	}
	if places[0].Name != "Grand Hotel" || places[0].Address != "MG Road" {
		t.Fatalf("unexpected first place: %+v", places[0])
	}
	if places[1].Name != "Unnamed" || places[1].Lat != 9.8 {
		t.Fatalf("unexpected second place: %+v", places[1])
	}
}

// TestSuggestIsolatesFailures проверяет, что сбой одной категории не ломает другие.
func TestSuggestIsolatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if strings.Contains(r.PostForm.Get("data"), "tourism=attraction") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"elements":[{"lat":1,"lon":1,"tags":{"name":"A"}},{"lat":2,"lon":2,"tags":{"name":"B"}},{"lat":3,"lon":3,"tags":{"name":"C"}}]}`))
	}))
	defer srv.Close()

	service := NewService(&stubGeocoder{coords: models.Coordinates{Lat: 1, Lon: 1}}, NewOverpassClient(srv.URL, "", time.Second), nil, 0, 2)
	got := service.Suggest(context.Background(), "Kochi", 1)

	if got.Center == nil {
		t.Fatal("expected map center")
	}
	if len(got.Sections[SectionStay]) != 2 {
		t.Fatalf("expected capped stay section, got %+v", got.Sections[SectionStay])
	}
	visit, ok := got.Sections[SectionVisit]
	if !ok || len(visit) != 0 {
		t.Fatalf("expected empty visit section, got %+v (ok=%v)", visit, ok)
	}
	if len(got.Order) != 2 || got.Order[0] != SectionStay {
		t.Fatalf("unexpected order: %v", got.Order)
	}
}

// TestSuggestGeocodeFailure проверяет пустой результат без центра карты.
func TestSuggestGeocodeFailure(t *testing.T) {
	service := NewService(&stubGeocoder{err: ErrNoResult}, nil, nil, 0, 0)
	got := service.Suggest(context.Background(), "Atlantis", 2)

	if got.Center != nil || len(got.Sections) != 0 {
		t.Fatalf("expected empty suggestions, got %+v", got)
	}
}

// TestSectionsForDay проверяет категории по дням.
func TestSectionsForDay(t *testing.T) {
	if got := SectionsForDay(2, "Kochi"); len(got) != 2 || got[0].Label != SectionFood || got[1].Label != SectionShop {
		t.Fatalf("unexpected day 2 sections: %+v", got)
	}
	if got := SectionsForDay(3, "Kochi"); len(got) != 1 || got[0].Label != SectionLeave || got[0].Icon != models.IconDeparture {
		t.Fatalf("unexpected day 3 sections: %+v", got)
	}
}

// TestGoogleTextSearch проверяет ограничение пятью результатами и рейтинг.
func TestGoogleTextSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("expected api key")
		}
		var b strings.Builder
		b.WriteString(`{"status":"OK","results":[`)
		for i := 0; i < 7; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"name":"P","formatted_address":"Addr","rating":4.5,"place_id":"id","geometry":{"location":{"lat":1,"lng":2}}}`)
		}
		b.WriteString(`]}`)
		_, _ = w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	places, err := NewGoogleClient("secret", srv.URL, time.Second).TextSearch(context.Background(), "best hotels in Kochi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 5 {
		t.Fatalf("expected 5 places, got %d", len(places))
	}
	if places[0].Rating == nil || *places[0].Rating != 4.5 || places[0].Lon != 2 {
		t.Fatalf("unexpected place: %+v", places[0])
	}

	if NewGoogleClient("", srv.URL, time.Second) != nil {
		t.Fatal("expected nil client without api key")
	}
}
