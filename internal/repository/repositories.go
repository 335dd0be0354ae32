package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Repositories bundles every data access interface behind one constructor,
// mirroring how the server wires storage once at startup.
type Repositories struct {
	// pgxpool repositories
	TeamRepo         TeamRepository
	PatternRepo      PatternRepository
	EventRepo        EventRepository
	AvailabilityRepo AvailabilityRepository
	ConflictRepo     ConflictRepository

	// sqlx repository (sql.DB handle)
	AssignmentRepo AssignmentRepository
}

// NewRepositories builds the repository set over a pgx pool plus a
// database/sql handle for the sqlx-backed repositories.
func NewRepositories(pool *pgxpool.Pool, db *sql.DB) *Repositories {
	return &Repositories{
		TeamRepo:         NewPgTeamRepository(pool),
		PatternRepo:      NewPgPatternRepository(pool),
		EventRepo:        NewPgEventRepository(pool),
		AvailabilityRepo: NewPgAvailabilityRepository(pool),
		ConflictRepo:     NewPgConflictRepository(pool),

		AssignmentRepo: NewSqlxAssignmentRepository(sqlx.NewDb(db, "pgx")),
	}
}
