package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Assignment places a member into a role for one event, keyed by date and
// event name. The reconciliation core consumes assignments read-only.
type Assignment struct {
	ID        string    `db:"id"`
	TeamID    string    `db:"team_id"`
	MemberID  string    `db:"member_id"`
	Date      string    `db:"date"`
	EventName string    `db:"event_name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// AssignmentRepository defines assignment data operations
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *Assignment) error
	FindByID(ctx context.Context, id string) (*Assignment, error)
	FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Assignment, error)
	Delete(ctx context.Context, id string) error
}

type sqlxAssignmentRepository struct {
	db *sqlx.DB
}

// NewSqlxAssignmentRepository creates an assignment repository over sqlx
func NewSqlxAssignmentRepository(db *sqlx.DB) AssignmentRepository {
	return &sqlxAssignmentRepository{db: db}
}

func (r *sqlxAssignmentRepository) Create(ctx context.Context, assignment *Assignment) error {
	query := `
		INSERT INTO assignments (team_id, member_id, date, event_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		assignment.TeamID, assignment.MemberID, assignment.Date, assignment.EventName, assignment.Role,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

func (r *sqlxAssignmentRepository) FindByID(ctx context.Context, id string) (*Assignment, error) {
	query := `
		SELECT id, team_id, member_id, to_char(date, 'YYYY-MM-DD') AS date, event_name, role, created_at
		FROM assignments WHERE id = $1
	`
	a := &Assignment{}
	err := r.db.GetContext(ctx, a, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *sqlxAssignmentRepository) FindByTeamAndRange(ctx context.Context, teamID, from, to string) ([]*Assignment, error) {
	query := `
		SELECT id, team_id, member_id, to_char(date, 'YYYY-MM-DD') AS date, event_name, role, created_at
		FROM assignments
		WHERE team_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, event_name, role
	`
	var out []*Assignment
	if err := r.db.SelectContext(ctx, &out, query, teamID, from, to); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqlxAssignmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	return err
}
