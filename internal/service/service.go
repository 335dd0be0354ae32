package service

import (
	"errors"

	"github.com/rosterline/rosterline-backend/internal/config"
	"github.com/rosterline/rosterline-backend/internal/db"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/socket"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidDateRange = errors.New("invalid date range")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth       AuthService
	Team       TeamService
	Pattern    PatternService
	Event      EventService
	Assignment AssignmentService
	Conflict   ConflictService
	Roster     RosterService

	Broadcaster *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Redis       *db.RedisDB // optional, may be nil
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	rosterSvc := NewRosterService(deps.Config, deps.Repos, deps.Redis, deps.Broadcaster)

	return &Services{
		Auth:       NewAuthService(deps.Config),
		Team:       NewTeamService(deps.Repos.TeamRepo),
		Pattern:    NewPatternService(deps.Repos.PatternRepo, deps.Repos.TeamRepo, rosterSvc, deps.Broadcaster),
		Event:      NewEventService(deps.Repos.EventRepo, deps.Repos.TeamRepo, rosterSvc, deps.Broadcaster),
		Assignment: NewAssignmentService(deps.Repos.AssignmentRepo, deps.Repos.TeamRepo, rosterSvc, deps.Broadcaster),
		Conflict:   NewConflictService(deps.Repos.ConflictRepo, rosterSvc, deps.Broadcaster),
		Roster:     rosterSvc,

		Broadcaster: deps.Broadcaster,
	}
}
