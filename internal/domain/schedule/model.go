package schedule

import (
	"errors"
	"fmt"

	"github.com/tourneyops/scheduler-api/internal/domain/team"
)

var (
	ErrMatchNotFound      = errors.New("match not found in schedule")
	ErrUnknownIssueType   = errors.New("unknown issue type")
	ErrSuggestionOverflow = errors.New("suggested time does not fit in the scheduling day")
)

// Match is one scheduled fixture between two teams. Date is a calendar day
// ("2006-01-02"); StartTime and EndTime are wall-clock times ("15:04") on
// that day. An empty Venue means the match has no venue assigned.
type Match struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string
	Team1     team.Team
	Team2     team.Team
	Venue     string
	Completed bool
}

// Duration returns the match length in minutes. Matches with malformed or
// unordered times have no usable duration and report an error.
func (m Match) Duration() (int, error) {
	start, end, err := m.span()
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, fmt.Errorf("match %s: end %s is not after start %s", m.ID, m.EndTime, m.StartTime)
	}
	return end - start, nil
}

func (m Match) span() (start, end int, err error) {
	start, err = MinutesOfDay(m.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("match %s start: %w", m.ID, err)
	}
	end, err = MinutesOfDay(m.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("match %s end: %w", m.ID, err)
	}
	return start, end, nil
}

// timeValid reports whether the match has a well-formed, strictly ordered
// time range. Matches failing this are excluded from overlap math and
// surfaced as invalid_date issues instead.
func (m Match) timeValid() bool {
	start, end, err := m.span()
	if err != nil {
		return false
	}
	return end > start
}

func (m Match) sharesTeam(other Match) bool {
	return m.Team1.ID == other.Team1.ID ||
		m.Team1.ID == other.Team2.ID ||
		m.Team2.ID == other.Team1.ID ||
		m.Team2.ID == other.Team2.ID
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if _, err := ParseDate(m.Date); err != nil {
		return fmt.Errorf("match %s: %w", m.ID, err)
	}
	if err := m.Team1.Validate(); err != nil {
		return fmt.Errorf("match %s team1: %w", m.ID, err)
	}
	if err := m.Team2.Validate(); err != nil {
		return fmt.Errorf("match %s team2: %w", m.ID, err)
	}
	if m.Team1.ID == m.Team2.ID {
		return fmt.Errorf("match %s: a team cannot play itself", m.ID)
	}

	return nil
}

type ConflictType string

const (
	ConflictTeam  ConflictType = "team_conflict"
	ConflictVenue ConflictType = "venue_conflict"
)

// Conflict is a derived pairwise collision between two same-day matches.
// Conflicts are recomputed from scratch on every analysis pass and never
// persisted.
type Conflict struct {
	Type   ConflictType
	Match1 Match
	Match2 Match
}

type IssueType string

const (
	IssueTeamConflict  IssueType = "team_conflict"
	IssueVenueConflict IssueType = "venue_conflict"
	IssueTeamOverload  IssueType = "team_overload"
	IssueRestTime      IssueType = "rest_time"
	IssueInvalidDate   IssueType = "invalid_date"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for triage: critical > high > medium > low.
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func ParseSeverity(v string) (Severity, error) {
	switch Severity(v) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(v), nil
	default:
		return "", fmt.Errorf("invalid severity %q", v)
	}
}

/// Issue is any detected schedule problem: a pairwise conflict or a broader
// defect (overload, short rest, invalid time range).
type Issue struct {
	Type            IssueType
	Severity        Severity
	Date            string
	MatchIDs        []string
	TeamID          string
	Description     string
	AutoFixEligible bool
}

// ProposedChange describes a concrete schedule adjustment for one match.
// Empty fields are left untouched on apply.
type ProposedChange struct {
	MatchID      string
	NewDate      string
	NewStartTime string
	NewEndTime   string
	Reason       string
}

// Config holds the analysis policy knobs. The zero value is usable:
// unset fields fall back to the defaults below.
type Config struct {
	MinRestHours             int
	MaxMatchesPerTeamPerDay  int
	ConflictBufferMinutes    int
	AutoFixSeverityThreshold Severity
	TeamConflictSeverity     Severity
	VenueConflictSeverity    Severity
}

func DefaultConfig() Config {
	return Config{
		MinRestHours:             3,
		MaxMatchesPerTeamPerDay:  1,
		ConflictBufferMinutes:    30,
		AutoFixSeverityThreshold: SeverityHigh,
		TeamConflictSeverity:     SeverityHigh,
		VenueConflictSeverity:    SeverityMedium,
	}
}

func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.MinRestHours <= 0 {
		c.MinRestHours = defaults.MinRestHours
	}
	if c.MaxMatchesPerTeamPerDay <= 0 {
		c.MaxMatchesPerTeamPerDay = defaults.MaxMatchesPerTeamPerDay
	}
	if c.ConflictBufferMinutes <= 0 {
		c.ConflictBufferMinutes = defaults.ConflictBufferMinutes
	}
	if c.AutoFixSeverityThreshold.Rank() == 0 {
		c.AutoFixSeverityThreshold = defaults.AutoFixSeverityThreshold
	}
	if c.TeamConflictSeverity.Rank() == 0 {
		c.TeamConflictSeverity = defaults.TeamConflictSeverity
	}
	if c.VenueConflictSeverity.Rank() == 0 {
		c.VenueConflictSeverity = defaults.VenueConflictSeverity
	}
	return c
}
