package mockml

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/prediction"
	"example.com/trip-dashboard/backend/internal/trip"
)

const (
	ChatPath    = "/chatbot/query"
	BillPath    = "/image_process/process-bill"
	greeting    = "Hello from mock chatbot!"
	maxBillSize = 10 << 20
)

// Assistant отвечает на сообщения чата; обычно это ai.Assistant.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

type Handler struct {
	Assistant Assistant
	now       func() time.Time
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type predictRequest struct {
	Days             *int                 `json:"days"`
	ParticipantCount *int                 `json:"participantCount"`
	TripType         *prediction.TripType `json:"tripType"`
	Budget           *float64             `json:"budget"`
}

type billResponse struct {
	Items []billItem `json:"items"`
}

type billItem struct {
	Title    string          `json:"title"`
	Amount   float64         `json:"amount"`
	Category models.Category `json:"category"`
	Date     string          `json:"date"`
}

// NewHandler создает обработчики мок-сервера; assistant может быть nil.
func NewHandler(assistant Assistant) *Handler {
	return &Handler{Assistant: assistant, now: time.Now}
}

// Register подключает маршруты мок-сервера к echo.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST(ChatPath, h.Chat)
	for _, path := range prediction.DefaultPaths {
		e.POST(path, h.Predict)
	}
	e.POST(BillPath, h.ProcessBill)
}

// Chat повторяет сообщение с подсказкой или передает его LLM-ассистенту.
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	_ = c.Bind(&req)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return c.JSON(http.StatusOK, chatResponse{Reply: greeting})
	}

	if h.Assistant != nil {
		reply, err := h.Assistant.Reply(c.Request().Context(), message)
		if err == nil {
			return c.JSON(http.StatusOK, chatResponse{Reply: reply})
		}
		slog.Warn("assistant fallback used", slog.String("error", err.Error()))
	}

	return c.JSON(http.StatusOK, chatResponse{Reply: EchoReply(message)})
}

// Predict возвращает детерминированный прогноз стоимости.
func (h *Handler) Predict(c echo.Context) error {
	var req predictRequest
	_ = c.Bind(&req)
	return c.JSON(http.StatusOK, prediction.Estimate(req.normalize()))
}

// ProcessBill возвращает одну примерную позицию чека на сегодня.
func (h *Handler) ProcessBill(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBillSize)
	if form, err := c.MultipartForm(); err == nil {
		defer form.RemoveAll()
	}

	return c.JSON(http.StatusOK, billResponse{Items: []billItem{{
		Title:    "Restaurant",
		Amount:   450,
		Category: models.CategoryFood,
		Date:     h.now().Format(trip.DateLayout),
	}}})
}

// EchoReply собирает ответ мок-бота на непустое сообщение.
func EchoReply(message string) string {
	return "You said: " + message + ". Here's a helpful tip: keep receipts using Scan bills!"
}

func (r predictRequest) normalize() prediction.Request {
	req := prediction.Request{Days: 3, ParticipantCount: 1, TripType: prediction.TripTypeSolo}
	if r.Days != nil {
		req.Days = *r.Days
	}
	if r.ParticipantCount != nil {
		req.ParticipantCount = *r.ParticipantCount
	}
	if r.TripType != nil {
		req.TripType = *r.TripType
	}
	if r.Budget != nil {
		req.Budget = *r.Budget
	}
	return req
}
