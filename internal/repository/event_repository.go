package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is a one-off (ad-hoc) event row. Pattern-derived instances are
// never stored; the resolver regenerates them per pass.
type Event struct {
	ID        string
	TeamID    string
	Date      string // YYYY-MM-DD
	Name      string
	Time      *string
	Status    string
	UpdatedAt time.Time
}

// EventRepository defines ad-hoc event data operations
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Event, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type pgEventRepository struct {
	pool *pgxpool.Pool
}

// NewPgEventRepository creates a new PostgreSQL event repository
func NewPgEventRepository(pool *pgxpool.Pool) EventRepository {
	return &pgEventRepository{pool: pool}
}

func (r *pgEventRepository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (team_id, date, name, time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		event.TeamID, event.Date, event.Name, event.Time, event.Status,
	).Scan(&event.ID, &event.UpdatedAt)
}

func (r *pgEventRepository) FindByID(ctx context.Context, id string) (*Event, error) {
	query := `
		SELECT id, team_id, to_char(date, 'YYYY-MM-DD'), name, time, status, updated_at
		FROM events WHERE id = $1
	`
	e := &Event{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.TeamID, &e.Date, &e.Name, &e.Time, &e.Status, &e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *pgEventRepository) FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Event, error) {
	query := `
		SELECT id, team_id, to_char(date, 'YYYY-MM-DD'), name, time, status, updated_at
		FROM events
		WHERE team_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, time NULLS LAST, name
	`
	rows, err := r.pool.Query(ctx, query, teamID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.TeamID, &e.Date, &e.Name, &e.Time, &e.Status, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *pgEventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}
