package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/trip-dashboard/backend/internal/chat"
)

type ChatHandler struct {
	Chat *chat.Service
}

// NewChatHandler создает обработчик чата ассистента.
func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{Chat: service}
}

type ChatRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type ChatResponse struct {
	Reply    *chat.Message  `json:"reply"`
	Messages []chat.Message `json:"messages"`
}

// Transcript возвращает переписку сессии.
func (h *ChatHandler) Transcript(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, ChatResponse{Messages: h.Chat.Transcript(sessionID)})
}

// Send добавляет сообщение и ответ бота; при недоступном боте ответ заготовленный.
func (h *ChatHandler) Send(c echo.Context) error {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	reply, messages := h.Chat.Send(c.Request().Context(), sessionID, req.Message)
	return c.JSON(http.StatusOK, ChatResponse{Reply: reply, Messages: messages})
}
