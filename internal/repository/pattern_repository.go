package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventPattern is a recurring event definition owned by the team
// configuration. Catalogs are replaced wholesale, never edited row by row.
type EventPattern struct {
	ID            string
	TeamID        string
	Name          string
	Weekday       int // 0 = Sunday ... 6 = Saturday
	DefaultTime   *string
	RehearsalRule *string
	Position      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PatternRepository defines pattern catalog data operations
type PatternRepository interface {
	FindByTeam(ctx context.Context, teamID string) ([]*EventPattern, error)
	ReplaceAll(ctx context.Context, teamID string, patterns []*EventPattern) error
}

type pgPatternRepository struct {
	pool *pgxpool.Pool
}

// NewPgPatternRepository creates a new PostgreSQL pattern repository
func NewPgPatternRepository(pool *pgxpool.Pool) PatternRepository {
	return &pgPatternRepository{pool: pool}
}

func (r *pgPatternRepository) FindByTeam(ctx context.Context, teamID string) ([]*EventPattern, error) {
	query := `
		SELECT id, team_id, name, weekday, default_time, rehearsal_rule, position, created_at, updated_at
		FROM event_patterns WHERE team_id = $1
		ORDER BY position, name
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*EventPattern
	for rows.Next() {
		p := &EventPattern{}
		if err := rows.Scan(
			&p.ID, &p.TeamID, &p.Name, &p.Weekday, &p.DefaultTime,
			&p.RehearsalRule, &p.Position, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// ReplaceAll swaps a team's whole catalog in one transaction.
func (r *pgPatternRepository) ReplaceAll(ctx context.Context, teamID string, patterns []*EventPattern) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM event_patterns WHERE team_id = $1`, teamID); err != nil {
		return err
	}

	insert := `
		INSERT INTO event_patterns (team_id, name, weekday, default_time, rehearsal_rule, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	for i, p := range patterns {
		p.TeamID = teamID
		p.Position = i
		if err := tx.QueryRow(ctx, insert,
			teamID, p.Name, p.Weekday, p.DefaultTime, p.RehearsalRule, i,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
