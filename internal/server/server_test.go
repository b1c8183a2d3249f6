package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/budget"
	"example.com/trip-dashboard/backend/internal/chat"
	"example.com/trip-dashboard/backend/internal/config"
	"example.com/trip-dashboard/backend/internal/database"
	"example.com/trip-dashboard/backend/internal/handlers"
	"example.com/trip-dashboard/backend/internal/itinerary"
	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/prediction"
	"example.com/trip-dashboard/backend/internal/repository"
)

type testServer struct {
	e     *echo.Echo
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(upstream.Close)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "trip.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		Env: "test",
		Session: config.SessionConfig{
			JWTSecret: "test-secret",
			JWTIssuer: "trip-dashboard",
			TokenTTL:  time.Hour,
			IdleTTL:   time.Hour,
		},
		ML: config.MLConfig{
			BaseURL:           upstream.URL,
			ChatURLs:          []string{upstream.URL + "/chatbot/query"},
			PredictionTimeout: time.Second,
			BillTimeout:       time.Second,
			ChatTimeout:       time.Second,
		},
		Places: config.PlacesConfig{
			NominatimURL: upstream.URL,
			PhotonURL:    upstream.URL,
			OverpassURL:  upstream.URL,
			UserAgent:    "trip-dashboard-test",
			Timeout:      time.Second,
		},
		RateLimit: config.RateLimitConfig{
			SessionsPerMinute: 600,
			SessionsBurst:     100,
			UpstreamPerMinute: 600,
			UpstreamBurst:     100,
		},
	}

	srv := &testServer{e: New(cfg, nil, repository.NewSQLiteHeaderRepository(db))}

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var session handlers.SessionResponse
	decode(t, rec, &session)
	if session.Token == "" || session.State.Trip.Location != "Kochi, Kerala" {
		t.Fatalf("unexpected session response: %+v", session)
	}
	srv.token = session.Token
	return srv
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, s.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

// TestTripRequiresSession проверяет отказ без токена и с чужим токеном.
func TestTripRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, http.MethodGet, "/api/v1/trip", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/api/v1/trip", "", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
	if rec := srv.authed(t, http.MethodGet, "/api/v1/trip", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

// TestExpensesAndBudget проверяет добавление расходов, отказ на некорректной сумме и сводку.
func TestExpensesAndBudget(t *testing.T) {
	srv := newTestServer(t)

	var mutation handlers.MutationResponse
	decode(t, srv.authed(t, http.MethodPost, "/api/v1/trip/expenses", `{"title":"Lunch","amount":"450","category":"Food & Beverages"}`), &mutation)
	if !mutation.Applied || len(mutation.State.Expenses) != 1 {
		t.Fatalf("expected expense to be applied, got %+v", mutation)
	}
	if mutation.State.Expenses[0].Date == "" {
		t.Fatal("expected default expense date")
	}

	decode(t, srv.authed(t, http.MethodPost, "/api/v1/trip/expenses", `{"title":"Taxi","amount":200,"category":"Transport"}`), &mutation)
	if !mutation.Applied {
		t.Fatal("expected numeric amount to be accepted")
	}

	rec := srv.authed(t, http.MethodPost, "/api/v1/trip/expenses", `{"title":"Broken","amount":"abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed amount, got %d", rec.Code)
	}
	decode(t, rec, &mutation)
	if mutation.Applied || len(mutation.State.Expenses) != 2 {
		t.Fatalf("expected malformed amount to be ignored, got %+v", mutation)
	}

	decode(t, srv.authed(t, http.MethodPost, "/api/v1/trip/expenses", `{"title":"Bus","amount":"50","date":"next tuesday"}`), &mutation)
	if mutation.Applied || len(mutation.State.Expenses) != 2 {
		t.Fatalf("expected malformed date to be ignored, got %+v", mutation)
	}

	var summary budget.Summary
	decode(t, srv.authed(t, http.MethodGet, "/api/v1/trip/budget", ""), &summary)
	if summary.Spent != 650 || summary.Categories[models.CategoryTransport] != 200 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = srv.authed(t, http.MethodGet, "/api/v1/trip/budget/export/csv", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "id,title,amount,category,date\n") {
		t.Fatalf("unexpected csv export: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Lunch,450.00,Food & Beverages") {
		t.Fatalf("expected expense row in csv, got %s", rec.Body.String())
	}
}

// TestPatchCoercesValues проверяет приведение дней и бюджета.
func TestPatchCoercesValues(t *testing.T) {
	srv := newTestServer(t)

	var mutation handlers.MutationResponse
	decode(t, srv.authed(t, http.MethodPatch, "/api/v1/trip", `{"days":"0","budget":"abc","location":"Goa"}`), &mutation)
	if mutation.State.Trip.Days != 1 || mutation.State.Trip.Budget != 0 || mutation.State.Trip.Location != "Goa" {
		t.Fatalf("unexpected coerced trip: %+v", mutation.State.Trip)
	}

	if rec := srv.authed(t, http.MethodPatch, "/api/v1/trip", `{"days":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}
}

// TestPlanFallbackPrediction проверяет форму планирования при недоступном сервисе прогнозов.
func TestPlanFallbackPrediction(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.authed(t, http.MethodPost, "/api/v1/trip/plan", `{"destination":"Munnar","startDate":"2024-03-01","endDate":"2024-03-03","budget":"30000","people":"2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response handlers.PlanResponse
	decode(t, rec, &response)
	if !response.State.Trip.Planned || response.State.Trip.Days != 3 || response.State.Trip.Location != "Munnar" {
		t.Fatalf("unexpected trip: %+v", response.State.Trip)
	}
	if response.Prediction.Source != prediction.SourceFallback || response.Prediction.Notice == "" {
		t.Fatalf("expected fallback prediction, got %+v", response.Prediction)
	}
}

// TestItineraryWithoutPlaces проверяет пустые секции при отказе геокодера и форму ручного ввода чека.
func TestItineraryWithoutPlaces(t *testing.T) {
	srv := newTestServer(t)

	var view itinerary.View
	decode(t, srv.authed(t, http.MethodGet, "/api/v1/trip/itinerary/9", ""), &view)
	if view.Day != 3 || view.AutoAdded != 0 || view.Center != nil {
		t.Fatalf("unexpected view: %+v", view)
	}

	var capture itinerary.Capture
	decode(t, srv.authed(t, http.MethodPost, "/api/v1/trip/itinerary/2/bills", ""), &capture)
	if capture.ManualForm == nil || len(capture.Expenses) != 0 {
		t.Fatalf("expected manual form, got %+v", capture)
	}
}

// TestChatCannedReply проверяет заготовленный ответ при недоступном чат-боте.
func TestChatCannedReply(t *testing.T) {
	srv := newTestServer(t)

	var response handlers.ChatResponse
	decode(t, srv.authed(t, http.MethodPost, "/api/v1/trip/chat", `{"message":"What is the budget?"}`), &response)
	if response.Reply == nil || !response.Reply.Canned || len(response.Messages) != 3 {
		t.Fatalf("unexpected chat response: %+v", response)
	}
	if response.Messages[0].Content != chat.WelcomeMessage {
		t.Fatalf("expected welcome message first, got %+v", response.Messages[0])
	}
}

// TestTripHeader проверяет значения по умолчанию, валидацию дат и сохранение.
func TestTripHeader(t *testing.T) {
	srv := newTestServer(t)

	var header models.TripHeader
	decode(t, srv.authed(t, http.MethodGet, "/api/v1/trip-header", ""), &header)
	if header.Destination != "" || !header.EndDate.After(header.StartDate) {
		t.Fatalf("unexpected default header: %+v", header)
	}

	rec := srv.authed(t, http.MethodPut, "/api/v1/trip-header", `{"destination":"Goa","startDate":"03/01/2024","endDate":"2024-03-04"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	rec = srv.authed(t, http.MethodPut, "/api/v1/trip-header", `{"destination":"Goa","startDate":"2024-03-01","endDate":"2024-03-04","spentINR":1200,"places":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	decode(t, srv.authed(t, http.MethodGet, "/api/v1/trip-header", ""), &header)
	if header.Destination != "Goa" || header.SpentINR != 1200 || header.Places != 4 {
		t.Fatalf("unexpected saved header: %+v", header)
	}
}

// TestHealthAndMetrics проверяет статус сервиса и экспорт счетчика сессий.
func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	var health handlers.HealthResponse
	decode(t, srv.do(t, http.MethodGet, "/health", "", ""), &health)
	if health.Status != "ok" || health.Sessions != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}

	rec := srv.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "trip_dashboard_sessions_created_total 1") {
		t.Fatalf("unexpected metrics output: %d", rec.Code)
	}
}
