package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/trip-dashboard/backend/internal/models"
)

type SQLiteHeaderRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteHeaderRepository создает репозиторий заголовков поездки в SQLite.
func NewSQLiteHeaderRepository(db *sql.DB) *SQLiteHeaderRepository {
	return &SQLiteHeaderRepository{db: db, now: time.Now}
}

// Get возвращает заголовок сессии или ErrNotFound.
func (r *SQLiteHeaderRepository) Get(ctx context.Context, sessionID uuid.UUID) (models.TripHeader, error) {
	var (
		header             models.TripHeader
		id, session        string
		startDate, endDate string
		createdAt          int64
		updatedAt          int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, destination, start_date, end_date, spent_inr, places, created_at, updated_at
		 FROM trip_headers
		 WHERE session_id = ?`,
		sessionID.String(),
	).Scan(&id, &session, &header.Destination, &startDate, &endDate, &header.SpentINR, &header.Places, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TripHeader{}, ErrNotFound
		}
		return models.TripHeader{}, fmt.Errorf("get trip header: %w", err)
	}

	if header.ID, err = uuid.Parse(id); err != nil {
		return models.TripHeader{}, fmt.Errorf("parse trip header id: %w", err)
	}
	if header.SessionID, err = uuid.Parse(session); err != nil {
		return models.TripHeader{}, fmt.Errorf("parse trip header session: %w", err)
	}
	if header.StartDate, header.EndDate, err = ParseHeaderDates(startDate, endDate); err != nil {
		return models.TripHeader{}, fmt.Errorf("parse trip header dates: %w", err)
	}
	header.CreatedAt = time.Unix(createdAt, 0).UTC()
	header.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return header, nil
}

// Upsert создает заголовок сессии или перезаписывает его поля.
func (r *SQLiteHeaderRepository) Upsert(ctx context.Context, sessionID uuid.UUID, input HeaderInput) (models.TripHeader, error) {
	input = normalizeHeaderInput(input)
	now := r.now().Unix()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trip_headers (id, session_id, destination, start_date, end_date, spent_inr, places, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET
			destination = excluded.destination,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			spent_inr = excluded.spent_inr,
			places = excluded.places,
			updated_at = excluded.updated_at`,
		uuid.NewString(),
		sessionID.String(),
		input.Destination,
		input.StartDate.Format(DateLayout),
		input.EndDate.Format(DateLayout),
		input.SpentINR,
		input.Places,
		now,
		now,
	)
	if err != nil {
		return models.TripHeader{}, fmt.Errorf("upsert trip header: %w", err)
	}
	return r.Get(ctx, sessionID)
}
