package memory

import (
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "tm-eagles", Name: "Riverside Eagles", Short: "EAG"},
		{ID: "tm-wolves", Name: "Northgate Wolves", Short: "WOL"},
		{ID: "tm-sharks", Name: "Harbour Sharks", Short: "SHA"},
		{ID: "tm-lions", Name: "Oakfield Lions", Short: "LIO"},
		{ID: "tm-falcons", Name: "Westbrook Falcons", Short: "FAL"},
		{ID: "tm-titans", Name: "Southport Titans", Short: "TIT"},
	}
}

// SeedMatches returns a small demo schedule. It deliberately contains a
// venue clash and a short rest gap so a fresh instance has something to
// analyze.
func SeedMatches() []schedule.Match {
	teams := make(map[string]team.Team, len(SeedTeams()))
	for _, t := range SeedTeams() {
		teams[t.ID] = t
	}

	return []schedule.Match{
		{
			ID:        "mt-0001",
			Date:      "2026-09-05",
			StartTime: "10:00",
			EndTime:   "11:30",
			Team1:     teams["tm-eagles"],
			Team2:     teams["tm-wolves"],
			Venue:     "Central Arena",
		},
		{
			ID:        "mt-0002",
			Date:      "2026-09-05",
			StartTime: "11:00",
			EndTime:   "12:30",
			Team1:     teams["tm-sharks"],
			Team2:     teams["tm-lions"],
			Venue:     "Central Arena",
		},
		{
			ID:        "mt-0003",
			Date:      "2026-09-05",
			StartTime: "15:00",
			EndTime:   "16:30",
			Team1:     teams["tm-falcons"],
			Team2:     teams["tm-titans"],
			Venue:     "East Court",
		},
		{
			ID:        "mt-0004",
			Date:      "2026-09-06",
			StartTime: "09:00",
			EndTime:   "10:30",
			Team1:     teams["tm-eagles"],
			Team2:     teams["tm-sharks"],
			Venue:     "East Court",
		},
		{
			ID:        "mt-0005",
			Date:      "2026-09-06",
			StartTime: "12:00",
			EndTime:   "13:30",
			Team1:     teams["tm-eagles"],
			Team2:     teams["tm-falcons"],
			Venue:     "Central Arena",
		},
	}
}
