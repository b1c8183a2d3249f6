package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/trip-dashboard/backend/internal/metrics"
)

const WelcomeMessage = "Hello! I'm your AI travel assistant. Ask me about budgets, activities, or local tips!"

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Canned    bool      `json:"canned,omitempty"`
}

type transcript struct {
	messages []Message
	lastSeen time.Time
}

// Replier отвечает на сообщение; false означает, что ни один адрес не ответил.
type Replier interface {
	Reply(ctx context.Context, message string) (string, bool)
}

// Service хранит переписку каждой сессии только в памяти.
type Service struct {
	mu          sync.Mutex
	transcripts map[uuid.UUID]*transcript
	replier     Replier
	ttl         time.Duration
	now         func() time.Time
	Metrics     *metrics.Metrics
}

// NewService создает сервис чата; ttl ограничивает жизнь неактивной переписки.
func NewService(replier Replier, ttl time.Duration) *Service {
	return &Service{
		transcripts: make(map[uuid.UUID]*transcript),
		replier:     replier,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Transcript возвращает копию переписки, начиная с приветствия.
func (s *Service) Transcript(sessionID uuid.UUID) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(sessionID)
}

// Send добавляет сообщение пользователя и ответ бота. Пустое сообщение игнорируется.
func (s *Service) Send(ctx context.Context, sessionID uuid.UUID, text string) (*Message, []Message) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, s.Transcript(sessionID)
	}

	s.append(sessionID, RoleUser, text, false)

	reply, ok := "", false
	if s.replier != nil {
		reply, ok = s.replier.Reply(ctx, text)
	}
	if !ok {
		s.Metrics.Fallback(component)
		intent := Classify(text)
		slog.Warn("chat fallback used", slog.String("session_id", sessionID.String()), slog.String("intent", string(intent)))
		reply = cannedReplies[intent]
	}

	message := s.append(sessionID, RoleBot, reply, !ok)
	return &message, s.Transcript(sessionID)
}

func (s *Service) append(sessionID uuid.UUID, role Role, content string, canned bool) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	t := s.transcriptLocked(sessionID)
	message := Message{ID: uuid.NewString(), Role: role, Content: content, Timestamp: now, Canned: canned}
	t.messages = append(t.messages, message)
	t.lastSeen = now
	return message
}

func (s *Service) snapshotLocked(sessionID uuid.UUID) []Message {
	t := s.transcriptLocked(sessionID)
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (s *Service) transcriptLocked(sessionID uuid.UUID) *transcript {
	t, ok := s.transcripts[sessionID]
	if !ok {
		now := s.now()
		t = &transcript{
			messages: []Message{{ID: "welcome", Role: RoleBot, Content: WelcomeMessage, Timestamp: now}},
			lastSeen: now,
		}
		s.transcripts[sessionID] = t
	}
	return t
}

func (s *Service) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, t := range s.transcripts {
		if now.Sub(t.lastSeen) > s.ttl {
			delete(s.transcripts, id)
		}
	}
}
