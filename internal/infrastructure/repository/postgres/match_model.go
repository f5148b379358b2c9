package postgres

import (
	"time"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
)

// matchTableModel mirrors the matches table. Date and times are stored as
// raw text: analysis is expected to see malformed values exactly as they
// were submitted.
type matchTableModel struct {
	ID         string    `db:"id"`
	MatchDate  string    `db:"match_date"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
	Team1ID    string    `db:"team1_id"`
	Team1Name  string    `db:"team1_name"`
	Team1Short string    `db:"team1_short"`
	Team2ID    string    `db:"team2_id"`
	Team2Name  string    `db:"team2_name"`
	Team2Short string    `db:"team2_short"`
	Venue      string    `db:"venue"`
	Completed  bool      `db:"completed"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type matchInsertModel struct {
	ID         string `db:"id"`
	MatchDate  string `db:"match_date"`
	StartTime  string `db:"start_time"`
	EndTime    string `db:"end_time"`
	Team1ID    string `db:"team1_id"`
	Team1Name  string `db:"team1_name"`
	Team1Short string `db:"team1_short"`
	Team2ID    string `db:"team2_id"`
	Team2Name  string `db:"team2_name"`
	Team2Short string `db:"team2_short"`
	Venue      string `db:"venue"`
	Completed  bool   `db:"completed"`
}

func (m matchTableModel) toDomain() schedule.Match {
	return schedule.Match{
		ID:        m.ID,
		Date:      m.MatchDate,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Team1:     team.Team{ID: m.Team1ID, Name: m.Team1Name, Short: m.Team1Short},
		Team2:     team.Team{ID: m.Team2ID, Name: m.Team2Name, Short: m.Team2Short},
		Venue:     m.Venue,
		Completed: m.Completed,
	}
}

func matchInsertFromDomain(m schedule.Match) matchInsertModel {
	return matchInsertModel{
		ID:         m.ID,
		MatchDate:  m.Date,
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
		Team1ID:    m.Team1.ID,
		Team1Name:  m.Team1.Name,
		Team1Short: m.Team1.Short,
		Team2ID:    m.Team2.ID,
		Team2Name:  m.Team2.Name,
		Team2Short: m.Team2.Short,
		Venue:      m.Venue,
		Completed:  m.Completed,
	}
}
