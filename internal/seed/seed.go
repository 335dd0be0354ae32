package seed

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/rosterline/rosterline-backend/internal/repository"
	"github.com/rosterline/rosterline-backend/internal/types"
)

// SeedData creates a development team with a pattern catalog, members and
// a few assignments so the roster endpoints return something out of the box.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	teams, _ := repos.TeamRepo.FindAll(ctx)
	if len(teams) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating development data...")

	team := &repository.Team{
		ID:   uuid.New().String(),
		Name: "Worship Team",
	}
	if err := repos.TeamRepo.Create(ctx, team); err != nil {
		log.Printf("[Seed] Team create failed: %v", err)
		return
	}

	members := []*repository.Member{
		{ID: uuid.New().String(), TeamID: team.ID, Name: "Dana Whitfield", Email: "dana@rosterline.dev", Role: types.RoleLeader},
		{ID: uuid.New().String(), TeamID: team.ID, Name: "Sam Okafor", Email: "sam@rosterline.dev", Role: types.RoleMember},
		{ID: uuid.New().String(), TeamID: team.ID, Name: "Mira Castellanos", Email: "mira@rosterline.dev", Role: types.RoleMember},
	}
	for _, m := range members {
		if err := repos.TeamRepo.AddMember(ctx, m); err != nil {
			log.Printf("[Seed] Member create failed: %v", err)
		}
	}

	nineAM := "09:00"
	elevenAM := "11:00"
	rehearsal := "FREQ=WEEKLY;BYDAY=TH"
	patterns := []*repository.EventPattern{
		{ID: uuid.New().String(), TeamID: team.ID, Name: "First Service", Weekday: 0, DefaultTime: &nineAM, RehearsalRule: &rehearsal},
		{ID: uuid.New().String(), TeamID: team.ID, Name: "Second Service", Weekday: 0, DefaultTime: &elevenAM},
	}
	if err := repos.PatternRepo.ReplaceAll(ctx, team.ID, patterns); err != nil {
		log.Printf("[Seed] Pattern seed failed: %v", err)
	}

	log.Printf("[Seed] Done - TeamID: %s", team.ID)
}
