package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conflict is the stored record of an assignment/availability disagreement.
// Rows are never deleted; leaders mark them resolved so the audit history
// survives.
type Conflict struct {
	ID          string
	TeamID      string
	MemberID    string
	EventKey    string // logical event id
	ServiceDate string // YYYY-MM-DD
	RoleName    string
	Resolved    bool
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// ConflictRepository defines conflict data operations
type ConflictRepository interface {
	Create(ctx context.Context, conflict *Conflict) error
	FindByID(ctx context.Context, id string) (*Conflict, error)
	FindByTeam(ctx context.Context, teamID string, includeResolved bool) ([]*Conflict, error)
	MarkResolved(ctx context.Context, id string, at time.Time) error
}

type pgConflictRepository struct {
	pool *pgxpool.Pool
}

// NewPgConflictRepository creates a new PostgreSQL conflict repository
func NewPgConflictRepository(pool *pgxpool.Pool) ConflictRepository {
	return &pgConflictRepository{pool: pool}
}

func (r *pgConflictRepository) Create(ctx context.Context, conflict *Conflict) error {
	query := `
		INSERT INTO conflicts (id, team_id, member_id, event_key, service_date, role_name, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		conflict.ID, conflict.TeamID, conflict.MemberID, conflict.EventKey,
		conflict.ServiceDate, conflict.RoleName, conflict.Resolved, conflict.CreatedAt,
	)
	return err
}

func (r *pgConflictRepository) FindByID(ctx context.Context, id string) (*Conflict, error) {
	query := `
		SELECT id, team_id, member_id, event_key, to_char(service_date, 'YYYY-MM-DD'),
		       role_name, resolved, resolved_at, created_at
		FROM conflicts WHERE id = $1
	`
	c := &Conflict{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TeamID, &c.MemberID, &c.EventKey, &c.ServiceDate,
		&c.RoleName, &c.Resolved, &c.ResolvedAt, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgConflictRepository) FindByTeam(ctx context.Context, teamID string, includeResolved bool) ([]*Conflict, error) {
	query := `
		SELECT id, team_id, member_id, event_key, to_char(service_date, 'YYYY-MM-DD'),
		       role_name, resolved, resolved_at, created_at
		FROM conflicts
		WHERE team_id = $1 AND ($2 OR NOT resolved)
		ORDER BY service_date, created_at
	`
	rows, err := r.pool.Query(ctx, query, teamID, includeResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Conflict
	for rows.Next() {
		c := &Conflict{}
		if err := rows.Scan(
			&c.ID, &c.TeamID, &c.MemberID, &c.EventKey, &c.ServiceDate,
			&c.RoleName, &c.Resolved, &c.ResolvedAt, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *pgConflictRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE conflicts SET resolved = TRUE, resolved_at = $2 WHERE id = $1 AND NOT resolved`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}
