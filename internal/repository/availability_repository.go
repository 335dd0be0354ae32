package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Availability is one member's response for one date: the remote store
// keeps a single row per (team, member, date), last write wins on
// updated_at.
type Availability struct {
	ID          string
	TeamID      string
	MemberID    string
	Date        string // YYYY-MM-DD
	IsAvailable bool
	UpdatedAt   time.Time
}

// AvailabilityRepository defines availability data operations
type AvailabilityRepository interface {
	Upsert(ctx context.Context, row *Availability) error
	FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Availability, error)
}

type pgAvailabilityRepository struct {
	pool *pgxpool.Pool
}

// NewPgAvailabilityRepository creates a new PostgreSQL availability repository
func NewPgAvailabilityRepository(pool *pgxpool.Pool) AvailabilityRepository {
	return &pgAvailabilityRepository{pool: pool}
}

// Upsert writes a response; the server clock stamps updated_at, so
// concurrent devices converge on last write wins.
func (r *pgAvailabilityRepository) Upsert(ctx context.Context, row *Availability) error {
	query := `
		INSERT INTO availability (team_id, member_id, date, is_available, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (team_id, member_id, date) DO UPDATE
		SET is_available = EXCLUDED.is_available, updated_at = EXCLUDED.updated_at
		RETURNING id, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		row.TeamID, row.MemberID, row.Date, row.IsAvailable,
	).Scan(&row.ID, &row.UpdatedAt)
}

func (r *pgAvailabilityRepository) FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Availability, error) {
	query := `
		SELECT id, team_id, member_id, to_char(date, 'YYYY-MM-DD'), is_available, updated_at
		FROM availability
		WHERE team_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, member_id
	`
	rows, err := r.pool.Query(ctx, query, teamID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Availability
	for rows.Next() {
		a := &Availability{}
		if err := rows.Scan(&a.ID, &a.TeamID, &a.MemberID, &a.Date, &a.IsAvailable, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
