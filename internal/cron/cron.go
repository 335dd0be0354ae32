package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rosterline/rosterline-backend/internal/config"
	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/roster"
	"github.com/rosterline/rosterline-backend/internal/service"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	services *service.Services
	teamRepo repository.TeamRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, services *service.Services, teamRepo repository.TeamRepository) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		services: services,
		teamRepo: teamRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Forced re-sync of teams with live sessions
	interval := s.cfg.SyncIntervalMinutes
	if interval <= 0 {
		interval = 15
	}
	s.cron.AddFunc(everyMinutes(interval), func() {
		log.Println("[Cron] Running availability re-sync...")
		s.resyncLiveSessions()
	})

	// Run every hour - conflict scan over the coming window for all teams
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running conflict scan...")
		s.scanAllTeams()
	})

	// Run every day at 3 AM - drop sessions idle for over a day
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running idle session eviction...")
		evicted := s.services.Roster.EvictIdleSessions(24 * time.Hour)
		if evicted > 0 {
			log.Printf("[Cron] Evicted %d idle sessions", evicted)
		}
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// resyncLiveSessions forces a fresh availability pull for every team that
// currently holds a session. Teams without a session have nothing stale.
func (s *Scheduler) resyncLiveSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	from, to := upcomingWindow(14)
	for _, teamID := range s.services.Roster.ActiveTeamIDs() {
		if err := s.services.Roster.Sync(ctx, teamID, from, to, true); err != nil {
			log.Printf("[Cron] Re-sync failed - TeamID: %s, Error: %v", teamID, err)
		}
	}
}

func (s *Scheduler) scanAllTeams() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	teams, err := s.teamRepo.FindAll(ctx)
	if err != nil {
		log.Printf("[Cron] Conflict scan aborted, team list failed: %v", err)
		return
	}

	days := s.cfg.ConflictScanDays
	if days <= 0 {
		days = 30
	}
	from, to := upcomingWindow(days)
	for _, team := range teams {
		detected, err := s.services.Conflict.Scan(ctx, team.ID, from, to)
		if err != nil {
			log.Printf("[Cron] Conflict scan failed - TeamID: %s, Error: %v", team.ID, err)
			continue
		}
		if len(detected) > 0 {
			log.Printf("[Cron] Detected %d new conflicts - TeamID: %s", len(detected), team.ID)
		}
	}
}

func upcomingWindow(days int) (string, string) {
	now := time.Now()
	return now.Format(roster.DateLayout), now.AddDate(0, 0, days).Format(roster.DateLayout)
}

func everyMinutes(n int) string {
	// cron/v3 supports the @every descriptor, which avoids minute-boundary
	// stampedes across deployments.
	return "@every " + (time.Duration(n) * time.Minute).String()
}
