package trip

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/trip-dashboard/backend/internal/models"
	"example.com/trip-dashboard/backend/internal/notifications"
)

const EventTripUpdated = "trip_updated"

var ErrSessionNotFound = errors.New("session not found")

type session struct {
	state    State
	lastSeen time.Time
}

// Store хранит последний снимок каждой сессии. Запись побеждает последней.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	hub      *notifications.Hub
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

// NewStore создает реестр сессий; ttl <= 0 отключает вытеснение простаивающих сессий.
func NewStore(hub *notifications.Hub, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*session),
		hub:      hub,
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewID возвращает новый идентификатор сущности.
func (s *Store) NewID() string {
	return s.newID()
}

// Today возвращает текущую дату в формате YYYY-MM-DD.
func (s *Store) Today() string {
	return s.now().Format(DateLayout)
}

// Create открывает новую сессию со снимком по умолчанию.
func (s *Store) Create() (uuid.UUID, State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	id := uuid.New()
	state := NewState(s.newID())
	s.sessions[id] = &session{state: state, lastSeen: now}
	return id, state
}

// Get возвращает текущий снимок сессии.
func (s *Store) Get(id uuid.UUID) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	current.lastSeen = s.now()
	return current.state, nil
}

// Dispatch атомарно применяет действия к снимку сессии и публикует trip_updated,
// если состояние изменилось.
func (s *Store) Dispatch(id uuid.UUID, actions ...Action) (State, bool, error) {
	s.mu.Lock()

	current, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return State{}, false, ErrSessionNotFound
	}

	next := current.state
	changed := false
	for _, action := range actions {
		var applied bool
		next, applied = Reduce(next, action)
		changed = changed || applied
	}

	current.lastSeen = s.now()
	if changed {
		next.Version = current.state.Version + 1
		current.state = next
	}
	s.mu.Unlock()

	if changed {
		publishTripUpdate(s.hub, id, next)
	}
	return next, changed, nil
}

// Len возвращает число активных сессий.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, current := range s.sessions {
		if now.Sub(current.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func publishTripUpdate(hub *notifications.Hub, sessionID uuid.UUID, state State) {
	if hub == nil {
		return
	}

	hub.Publish(sessionID, notifications.Event{
		Type: EventTripUpdated,
		Data: map[string]interface{}{
			"version":    state.Version,
			"days":       state.DisplayDays(),
			"activities": len(state.Activities),
			"expenses":   len(state.Expenses),
		},
	})
}

// NewMember собирает участника с новым идентификатором.
func (s *Store) NewMember(name string) models.Member {
	return models.Member{ID: s.newID(), Name: name}
}
