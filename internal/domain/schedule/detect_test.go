package schedule

import (
	"testing"

	"github.com/tourneyops/scheduler-api/internal/domain/team"
)

func newMatch(id, date, start, end, team1, team2, venue string) Match {
	return Match{
		ID:        id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Team1:     team.Team{ID: team1, Name: "Team " + team1},
		Team2:     team.Team{ID: team2, Name: "Team " + team2},
		Venue:     venue,
	}
}

func TestDetectConflicts(t *testing.T) {
	const day = "2026-05-02"

	tests := []struct {
		name    string
		matches []Match
		want    []Conflict
	}{
		{
			name: "no overlap no conflict",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:00", "t1", "t2", "arena"),
				newMatch("m2", day, "11:00", "12:00", "t3", "t4", "arena 2"),
			},
			want: nil,
		},
		{
			name: "shared team overlapping",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:30", "t1", "t2", "arena"),
				newMatch("m2", day, "11:00", "12:00", "t1", "t3", "arena 2"),
			},
			want: []Conflict{{Type: ConflictTeam}},
		},
		{
			name: "shared venue overlapping",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:30", "t1", "t2", "arena"),
				newMatch("m2", day, "11:00", "12:00", "t3", "t4", "arena"),
			},
			want: []Conflict{{Type: ConflictVenue}},
		},
		{
			name: "same pair emits team and venue",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:30", "t1", "t2", "arena"),
				newMatch("m2", day, "11:00", "12:00", "t2", "t3", "arena"),
			},
			want: []Conflict{{Type: ConflictTeam}, {Type: ConflictVenue}},
		},
		{
			name: "back to back is clean",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:00", "t1", "t2", "arena"),
				newMatch("m2", day, "11:00", "12:00", "t1", "t3", "arena"),
			},
			want: nil,
		},
		{
			name: "other dates are ignored",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:30", "t1", "t2", "arena"),
				newMatch("m2", "2026-05-03", "10:00", "11:30", "t1", "t3", "arena"),
			},
			want: nil,
		},
		{
			name: "broken times are skipped",
			matches: []Match{
				newMatch("m1", day, "10:00", "09:00", "t1", "t2", "arena"),
				newMatch("m2", day, "10:00", "11:30", "t1", "t3", "arena"),
			},
			want: nil,
		},
		{
			name: "empty venues never collide",
			matches: []Match{
				newMatch("m1", day, "10:00", "11:30", "t1", "t2", ""),
				newMatch("m2", day, "11:00", "12:00", "t3", "t4", ""),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectConflicts(tt.matches, day)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d conflicts, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i].Type != tt.want[i].Type {
					t.Fatalf("conflict %d: expected type %s, got %s", i, tt.want[i].Type, got[i].Type)
				}
			}
		})
	}
}

func TestDetectConflictsDeterministic(t *testing.T) {
	const day = "2026-05-02"
	matches := []Match{
		newMatch("m1", day, "10:00", "12:00", "t1", "t2", "arena"),
		newMatch("m2", day, "11:00", "13:00", "t1", "t3", "arena"),
		newMatch("m3", day, "11:30", "13:30", "t2", "t4", "arena"),
	}

	first := DetectConflicts(matches, day)
	for run := 0; run < 5; run++ {
		again := DetectConflicts(matches, day)
		if len(again) != len(first) {
			t.Fatalf("conflict count changed across runs: %d vs %d", len(first), len(again))
		}
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("conflict %d changed across runs", i)
			}
		}
	}

	// m1-m2 pairs on team and venue, m1-m3 on both, m2-m3 on venue only.
	if len(first) != 5 {
		t.Fatalf("expected 5 conflicts, got %d: %+v", len(first), first)
	}
	if first[0].Match1.ID != "m1" || first[0].Match2.ID != "m2" || first[0].Type != ConflictTeam {
		t.Fatalf("unexpected first conflict: %+v", first[0])
	}
}
