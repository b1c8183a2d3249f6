package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/trip-dashboard/backend/internal/models"
)

type TripHeaderRepository struct {
	db *pgxpool.Pool
}

// NewTripHeaderRepository создает репозиторий заголовков поездки в PostgreSQL.
func NewTripHeaderRepository(db *pgxpool.Pool) *TripHeaderRepository {
	return &TripHeaderRepository{db: db}
}

// Get возвращает заголовок сессии или ErrNotFound.
func (r *TripHeaderRepository) Get(ctx context.Context, sessionID uuid.UUID) (models.TripHeader, error) {
	var header models.TripHeader
	err := r.db.QueryRow(ctx,
		`SELECT id, session_id, destination, start_date, end_date, spent_inr, places, created_at, updated_at
		 FROM trip_headers
		 WHERE session_id = $1`,
		sessionID,
	).Scan(
		&header.ID,
		&header.SessionID,
		&header.Destination,
		&header.StartDate,
		&header.EndDate,
		&header.SpentINR,
		&header.Places,
		&header.CreatedAt,
		&header.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TripHeader{}, ErrNotFound
		}
		return models.TripHeader{}, fmt.Errorf("get trip header: %w", err)
	}
	return header, nil
}

// Upsert создает заголовок сессии или перезаписывает его поля.
func (r *TripHeaderRepository) Upsert(ctx context.Context, sessionID uuid.UUID, input HeaderInput) (models.TripHeader, error) {
	input = normalizeHeaderInput(input)

	var header models.TripHeader
	err := r.db.QueryRow(ctx,
		`INSERT INTO trip_headers (id, session_id, destination, start_date, end_date, spent_inr, places)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id) DO UPDATE SET
			destination = EXCLUDED.destination,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			spent_inr = EXCLUDED.spent_inr,
			places = EXCLUDED.places,
			updated_at = now()
		 RETURNING id, session_id, destination, start_date, end_date, spent_inr, places, created_at, updated_at`,
		uuid.New(),
		sessionID,
		input.Destination,
		input.StartDate,
		input.EndDate,
		input.SpentINR,
		input.Places,
	).Scan(
		&header.ID,
		&header.SessionID,
		&header.Destination,
		&header.StartDate,
		&header.EndDate,
		&header.SpentINR,
		&header.Places,
		&header.CreatedAt,
		&header.UpdatedAt,
	)
	if err != nil {
		return models.TripHeader{}, fmt.Errorf("upsert trip header: %w", err)
	}
	return header, nil
}
