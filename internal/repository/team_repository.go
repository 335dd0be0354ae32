package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Team Models
// ============================================

// Team is the unit that owns a pattern catalog, events and members.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Member is a person on a team's roster. Full user management lives in the
// external auth system; this row only anchors availability and assignments.
type Member struct {
	ID        string
	TeamID    string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

// ============================================
// Team Repository Interface
// ============================================

// TeamRepository defines team data operations
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindAll(ctx context.Context) ([]*Team, error)

	// Member operations
	AddMember(ctx context.Context, member *Member) error
	FindMembers(ctx context.Context, teamID string) ([]*Member, error)
	FindMember(ctx context.Context, teamID, memberID string) (*Member, error)
	IsMember(ctx context.Context, teamID, memberID string) (bool, error)
}

// ============================================
// PostgreSQL Team Repository Implementation
// ============================================

type pgTeamRepository struct {
	pool *pgxpool.Pool
}

// NewPgTeamRepository creates a new PostgreSQL team repository
func NewPgTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgTeamRepository{pool: pool}
}

func (r *pgTeamRepository) Create(ctx context.Context, team *Team) error {
	query := `
		INSERT INTO teams (name)
		VALUES ($1)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE id = $1`
	team := &Team{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *pgTeamRepository) FindAll(ctx context.Context) ([]*Team, error) {
	query := `SELECT id, name, created_at FROM teams ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (r *pgTeamRepository) AddMember(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (team_id, name, email, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, member.TeamID, member.Name, member.Email, member.Role).
		Scan(&member.ID, &member.CreatedAt)
}

func (r *pgTeamRepository) FindMembers(ctx context.Context, teamID string) ([]*Member, error) {
	query := `
		SELECT id, team_id, name, email, role, created_at
		FROM members WHERE team_id = $1
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *pgTeamRepository) FindMember(ctx context.Context, teamID, memberID string) (*Member, error) {
	query := `
		SELECT id, team_id, name, email, role, created_at
		FROM members WHERE team_id = $1 AND id = $2
	`
	m := &Member{}
	err := r.pool.QueryRow(ctx, query, teamID, memberID).
		Scan(&m.ID, &m.TeamID, &m.Name, &m.Email, &m.Role, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgTeamRepository) IsMember(ctx context.Context, teamID, memberID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE team_id = $1 AND id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, teamID, memberID).Scan(&exists)
	return exists, err
}
