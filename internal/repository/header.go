package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/trip-dashboard/backend/internal/models"
)

const DateLayout = "2006-01-02"

type HeaderInput struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	SpentINR    int64
	Places      int
}

// HeaderStore хранит заголовок поездки каждой сессии.
type HeaderStore interface {
	Get(ctx context.Context, sessionID uuid.UUID) (models.TripHeader, error)
	Upsert(ctx context.Context, sessionID uuid.UUID, input HeaderInput) (models.TripHeader, error)
}

// DefaultHeader возвращает заголовок, который отдается, пока сессия ничего не сохранила.
func DefaultHeader(now time.Time) models.TripHeader {
	return models.TripHeader{
		StartDate: now,
		EndDate:   now.Add(24 * time.Hour),
	}
}

// ParseHeaderDates разбирает даты YYYY-MM-DD; ошибка любой из них дает ErrInvalid.
func ParseHeaderDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalid
	}
	endDate, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalid
	}
	return startDate, endDate, nil
}

func normalizeHeaderInput(input HeaderInput) HeaderInput {
	input.Destination = strings.TrimSpace(input.Destination)
	input.StartDate = dateOnly(input.StartDate)
	input.EndDate = dateOnly(input.EndDate)
	return input
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
