package schedule

import (
	"fmt"
	"sort"
)

// AnalyzeSchedule inspects the whole match collection and returns every
// detected issue: pairwise conflicts on each day, overloaded teams, short
// rest gaps, and invalid time ranges. The function is pure and idempotent;
// data-quality problems are classified and reported, never raised.
//
// Output ordering is deterministic: severity descending, then date, then
// first referenced match ID, then issue type.
func AnalyzeSchedule(matches []Match, cfg Config) []Issue {
	cfg = cfg.normalized()

	var issues []Issue
	issues = append(issues, invalidDateIssues(matches, cfg)...)
	issues = append(issues, conflictIssues(matches, cfg)...)
	issues = append(issues, overloadIssues(matches, cfg)...)
	issues = append(issues, restIssues(matches, cfg)...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity.Rank() != issues[j].Severity.Rank() {
			return issues[i].Severity.Rank() > issues[j].Severity.Rank()
		}
		if issues[i].Date != issues[j].Date {
			return issues[i].Date < issues[j].Date
		}
		if firstID(issues[i]) != firstID(issues[j]) {
			return firstID(issues[i]) < firstID(issues[j])
		}
		return issues[i].Type < issues[j].Type
	})

	return issues
}

// ConflictToIssue maps a detected conflict to its issue form using the
// configured severity policy. Severity is policy, not a property of the
// conflict itself.
func ConflictToIssue(c Conflict, cfg Config) Issue {
	cfg = cfg.normalized()

	severity := cfg.TeamConflictSeverity
	subject := "team"
	if c.Type == ConflictVenue {
		severity = cfg.VenueConflictSeverity
		subject = "venue"
	}

	return finishIssue(Issue{
		Type:     IssueType(c.Type),
		Severity: severity,
		Date:     c.Match1.Date,
		MatchIDs: []string{c.Match1.ID, c.Match2.ID},
		Description: fmt.Sprintf("matches %s and %s overlap on a shared %s (%s-%s vs %s-%s)",
			c.Match1.ID, c.Match2.ID, subject,
			c.Match1.StartTime, c.Match1.EndTime, c.Match2.StartTime, c.Match2.EndTime),
	}, cfg)
}

func invalidDateIssues(matches []Match, cfg Config) []Issue {
	var issues []Issue
	for _, m := range matches {
		description := ""
		switch {
		case !m.timeValid():
			description = fmt.Sprintf("match %s has an invalid time range %s-%s", m.ID, m.StartTime, m.EndTime)
		default:
			if _, err := ParseDate(m.Date); err != nil {
				description = fmt.Sprintf("match %s has an unparseable date %q", m.ID, m.Date)
			}
		}
		if description == "" {
			continue
		}
		issues = append(issues, finishIssue(Issue{
			Type:        IssueInvalidDate,
			Severity:    SeverityCritical,
			Date:        m.Date,
			MatchIDs:    []string{m.ID},
			Description: description,
		}, cfg))
	}
	return issues
}

func conflictIssues(matches []Match, cfg Config) []Issue {
	var issues []Issue
	for _, date := range distinctDates(matches) {
		for _, c := range DetectConflicts(matches, date) {
			issues = append(issues, ConflictToIssue(c, cfg))
		}
	}
	return issues
}

func overloadIssues(matches []Match, cfg Config) []Issue {
	type teamDay struct {
		teamID string
		date   string
	}
	names := make(map[string]string)
	byTeamDay := make(map[teamDay][]Match)
	for _, m := range matches {
		for _, t := range []string{m.Team1.ID, m.Team2.ID} {
			if t == "" {
				continue
			}
			key := teamDay{teamID: t, date: m.Date}
			byTeamDay[key] = append(byTeamDay[key], m)
		}
		names[m.Team1.ID] = m.Team1.Name
		names[m.Team2.ID] = m.Team2.Name
	}

	keys := make([]teamDay, 0, len(byTeamDay))
	for key := range byTeamDay {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].teamID < keys[j].teamID
	})

	var issues []Issue
	for _, key := range keys {
		day := byTeamDay[key]
		if len(day) <= cfg.MaxMatchesPerTeamPerDay {
			continue
		}
		sortByStart(day)
		ids := make([]string, 0, len(day))
		for _, m := range day {
			ids = append(ids, m.ID)
		}
		issues = append(issues, finishIssue(Issue{
			Type:     IssueTeamOverload,
			Severity: SeverityHigh,
			Date:     key.date,
			MatchIDs: ids,
			TeamID:   key.teamID,
			Description: fmt.Sprintf("%s plays %d matches on %s (max %d)",
				teamLabel(names, key.teamID), len(day), key.date, cfg.MaxMatchesPerTeamPerDay),
		}, cfg))
	}
	return issues
}

func restIssues(matches []Match, cfg Config) []Issue {
	names := make(map[string]string)
	byTeam := make(map[string][]Match)
	for _, m := range matches {
		if !m.timeValid() {
			continue
		}
		if _, err := ParseDate(m.Date); err != nil {
			continue
		}
		for _, t := range []string{m.Team1.ID, m.Team2.ID} {
			if t != "" {
				byTeam[t] = append(byTeam[t], m)
			}
		}
		names[m.Team1.ID] = m.Team1.Name
		names[m.Team2.ID] = m.Team2.Name
	}

	teamIDs := make([]string, 0, len(byTeam))
	for teamID := range byTeam {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Strings(teamIDs)

	minRest := cfg.MinRestHours * 60

	var issues []Issue
	for _, teamID := range teamIDs {
		played := byTeam[teamID]
		sortByStart(played)
		for i := 1; i < len(played); i++ {
			prev, next := played[i-1], played[i]
			if prev.ID == next.ID {
				continue
			}
			gap := absoluteStart(next) - absoluteEnd(prev)
			if gap >= minRest {
				continue
			}
			issues = append(issues, finishIssue(Issue{
				Type:     IssueRestTime,
				Severity: SeverityMedium,
				Date:     next.Date,
				MatchIDs: []string{prev.ID, next.ID},
				TeamID:   teamID,
				Description: fmt.Sprintf("%s has %dm rest between %s and %s (min %dh)",
					teamLabel(names, teamID), maxInt(gap, 0), prev.ID, next.ID, cfg.MinRestHours),
			}, cfg))
		}
	}
	return issues
}

func finishIssue(issue Issue, cfg Config) Issue {
	issue.AutoFixEligible = issue.Severity.Rank() >= cfg.AutoFixSeverityThreshold.Rank()
	return issue
}

func distinctDates(matches []Match) []string {
	seen := make(map[string]struct{}, len(matches))
	var dates []string
	for _, m := range matches {
		if _, ok := seen[m.Date]; ok {
			continue
		}
		seen[m.Date] = struct{}{}
		dates = append(dates, m.Date)
	}
	sort.Strings(dates)
	return dates
}

// sortByStart orders matches chronologically by (date, start time, id).
// Callers pass only matches with parseable times.
func sortByStart(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date < matches[j].Date
		}
		si, _ := MinutesOfDay(matches[i].StartTime)
		sj, _ := MinutesOfDay(matches[j].StartTime)
		if si != sj {
			return si < sj
		}
		return matches[i].ID < matches[j].ID
	})
}

// absoluteStart and absoluteEnd express match boundaries in minutes on a
// shared timeline so rest gaps across midnight come out right.
func absoluteStart(m Match) int {
	day, _ := ParseDate(m.Date)
	clock, _ := MinutesOfDay(m.StartTime)
	return int(day.Unix()/60) + clock
}

func absoluteEnd(m Match) int {
	day, _ := ParseDate(m.Date)
	clock, _ := MinutesOfDay(m.EndTime)
	return int(day.Unix()/60) + clock
}

func teamLabel(names map[string]string, teamID string) string {
	if name := names[teamID]; name != "" {
		return name
	}
	return teamID
}

func firstID(issue Issue) string {
	if len(issue.MatchIDs) == 0 {
		return ""
	}
	return issue.MatchIDs[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
