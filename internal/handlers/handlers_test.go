package handlers

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/auth"
	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/notifications"
	"example.com/trip-dashboard/backend/internal/prediction"
	"example.com/trip-dashboard/backend/internal/repository"
	"example.com/trip-dashboard/backend/internal/trip"
)

type failingHeaders struct {
	err error
}

func (f failingHeaders) Get(ctx context.Context, sessionID uuid.UUID) (models.TripHeader, error) {
	return models.TripHeader{}, f.err
}

func (f failingHeaders) Upsert(ctx context.Context, sessionID uuid.UUID, input repository.HeaderInput) (models.TripHeader, error) {
	return models.TripHeader{}, f.err
}

type structValidator struct {
	validate *validator.Validate
}

func (v structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type recordingPredictor struct {
	last prediction.Request
}

func (p *recordingPredictor) Predict(ctx context.Context, req prediction.Request) prediction.Result {
	p.last = req
	return prediction.Result{Prediction: prediction.Estimate(req), Source: prediction.SourceFallback}
}

func newContext(method, target string, sessionID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sessionID != uuid.Nil {
		c.Set(auth.ContextSessionIDKey, sessionID)
	}
	return c, rec
}

// TestWriteSSE проверяет формат события SSE.
func TestWriteSSE(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/stream", uuid.Nil)

	if err := writeSSE(c, notifications.Event{Type: trip.EventTripUpdated, Data: map[string]int{"version": 2}}); err != nil {
		t.Fatalf("writeSSE: %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: trip_updated\ndata: ") || !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("unexpected sse frame: %q", body)
	}
	if !strings.Contains(body, `"version":2`) {
		t.Fatalf("expected payload in frame: %q", body)
	}
}

// TestHandlersRequireSession проверяет 401 без сессии в контексте.
func TestHandlersRequireSession(t *testing.T) {
	handler := NewTripHandler(trip.NewStore(nil, 0))
	c, rec := newContext(http.MethodGet, "/api/v1/trip", uuid.Nil)

	if err := handler.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// TestUnknownSession проверяет 404 для сессии, которой нет в реестре.
func TestUnknownSession(t *testing.T) {
	handler := NewBudgetHandler(trip.NewStore(nil, 0))
	c, rec := newContext(http.MethodGet, "/api/v1/trip/budget", uuid.New())

	if err := handler.Summary(c); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "session not found") {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestHeaderStorageError проверяет 500 при сбое хранилища заголовка.
func TestHeaderStorageError(t *testing.T) {
	handler := NewHeaderHandler(failingHeaders{err: errors.New("disk full")})
	c, rec := newContext(http.MethodGet, "/api/v1/trip-header", uuid.New())

	if err := handler.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	handler = NewHeaderHandler(failingHeaders{err: repository.ErrNotFound})
	c, rec = newContext(http.MethodGet, "/api/v1/trip-header", uuid.New())
	if err := handler.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected default header, got %d", rec.Code)
	}
}

// TestExportJSON проверяет выгрузку расходов во вложение JSON.
func TestExportJSON(t *testing.T) {
	store := trip.NewStore(nil, 0)
	id, _ := store.Create()
	if _, _, err := store.Dispatch(id, trip.AddExpense{ID: "e1", Title: "Lunch", Amount: "450", Category: models.CategoryFood, Date: "2024-03-01"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	handler := NewBudgetHandler(store)
	c, rec := newContext(http.MethodGet, "/api/v1/trip/budget/export/json", id)
	if err := handler.ExportJSON(c); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), "expenses-"+id.String()+".json") {
		t.Fatalf("unexpected content disposition: %s", rec.Header().Get(echo.HeaderContentDisposition))
	}
	if !strings.Contains(rec.Body.String(), `"spent":450`) {
		t.Fatalf("expected summary in export: %s", rec.Body.String())
	}
}

// TestPlanDefaultsPeopleToGroup проверяет, что без числа участников берется размер группы.
func TestPlanDefaultsPeopleToGroup(t *testing.T) {
	store := trip.NewStore(nil, 0)
	id, _ := store.Create()
	if _, _, err := store.Dispatch(id, trip.AddMember{Member: store.NewMember("Asha")}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	predictor := &recordingPredictor{}
	handler := NewPlanHandler(store, predictor)

	cases := map[string]int{
		`{"destination":"Goa","startDate":"2024-03-01","endDate":"2024-03-02"}`:                2,
		`{"destination":"Goa","startDate":"2024-03-01","endDate":"2024-03-02","people":"abc"}`: 2,
		`{"destination":"Goa","startDate":"2024-03-01","endDate":"2024-03-02","people":"4"}`:   4,
	}
	for body, want := range cases {
		e := echo.New()
		e.Validator = structValidator{validate: validator.New()}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trip/plan", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(auth.ContextSessionIDKey, id)

		if err := handler.Plan(c); err != nil {
			t.Fatalf("Plan: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if predictor.last.ParticipantCount != want || predictor.last.TripType != prediction.TripTypeFor(want) {
			t.Fatalf("%s: expected %d participants, got %+v", body, want, predictor.last)
		}
	}
}

// TestStreamOutlivesWriteTimeout проверяет доставку события после истечения WriteTimeout сервера.
func TestStreamOutlivesWriteTimeout(t *testing.T) {
	hub := notifications.NewHub()
	sessionID := uuid.New()

	e := echo.New()
	e.GET("/stream", NewStreamHandler(hub).Stream, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(auth.ContextSessionIDKey, sessionID)
			return next(c)
		}
	})

	srv := httptest.NewUnstartedServer(e)
	srv.Config.WriteTimeout = 100 * time.Millisecond
	srv.Start()
	defer srv.Close()

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(srv.URL + "/stream")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if got := readEvent(); got != "connected" {
		t.Fatalf("expected connected event, got %q", got)
	}

	time.Sleep(300 * time.Millisecond)
	hub.Publish(sessionID, notifications.Event{Type: trip.EventTripUpdated, Data: map[string]int{"version": 1}})

	if got := readEvent(); got != trip.EventTripUpdated {
		t.Fatalf("expected %s event, got %q", trip.EventTripUpdated, got)
	}
}
