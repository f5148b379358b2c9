package schedule

import (
	"fmt"
)

// SuggestFix proposes schedule changes that would clear the given issue.
// Proposals never mutate the input; ApplyFix materializes them on a copy.
// A proposal that would push a match past the end of its day is rejected
// with ErrSuggestionOverflow rather than silently wrapped.
func SuggestFix(issue Issue, matches []Match, cfg Config) ([]ProposedChange, error) {
	cfg = cfg.normalized()

	switch issue.Type {
	case IssueTeamConflict, IssueVenueConflict:
		return suggestConflictShift(issue, matches, cfg)
	case IssueRestTime:
		return suggestRestShift(issue, matches, cfg)
	case IssueTeamOverload:
		return suggestOverloadMove(issue, matches, cfg)
	case IssueInvalidDate:
		return suggestTimeRepair(issue, matches)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIssueType, issue.Type)
	}
}

// suggestConflictShift moves the later of the two overlapping matches to
// start a buffer after the earlier one ends, preserving its duration.
func suggestConflictShift(issue Issue, matches []Match, cfg Config) ([]ProposedChange, error) {
	if len(issue.MatchIDs) < 2 {
		return nil, fmt.Errorf("%w: conflict issue references %d matches", ErrMatchNotFound, len(issue.MatchIDs))
	}
	first, err := findMatch(matches, issue.MatchIDs[0])
	if err != nil {
		return nil, err
	}
	second, err := findMatch(matches, issue.MatchIDs[1])
	if err != nil {
		return nil, err
	}

	anchor, moved := orderByStart(first, second)

	duration, err := moved.Duration()
	if err != nil {
		return nil, err
	}
	_, anchorEnd, err := anchor.span()
	if err != nil {
		return nil, err
	}

	newStart := anchorEnd + cfg.ConflictBufferMinutes
	newEnd := newStart + duration
	if newEnd >= minutesPerDay {
		return nil, fmt.Errorf("%w: match %s cannot be shifted past %s end", ErrSuggestionOverflow, moved.ID, moved.Date)
	}

	startClock, err := ClockOfMinutes(newStart)
	if err != nil {
		return nil, err
	}
	endClock, err := ClockOfMinutes(newEnd)
	if err != nil {
		return nil, err
	}

	return []ProposedChange{{
		MatchID:      moved.ID,
		NewStartTime: startClock,
		NewEndTime:   endClock,
		Reason: fmt.Sprintf("shift %dm after %s ends to clear the %s",
			cfg.ConflictBufferMinutes, anchor.ID, issue.Type),
	}}, nil
}

// suggestRestShift pushes the later match out until the team has the
// configured rest after the earlier one. The date advances when the new
// start lands on a later day; a match that would straddle midnight is
// rejected instead.
func suggestRestShift(issue Issue, matches []Match, cfg Config) ([]ProposedChange, error) {
	if len(issue.MatchIDs) < 2 {
		return nil, fmt.Errorf("%w: rest issue references %d matches", ErrMatchNotFound, len(issue.MatchIDs))
	}
	first, err := findMatch(matches, issue.MatchIDs[0])
	if err != nil {
		return nil, err
	}
	second, err := findMatch(matches, issue.MatchIDs[1])
	if err != nil {
		return nil, err
	}

	earlier, later := orderByStart(first, second)

	duration, err := later.Duration()
	if err != nil {
		return nil, err
	}

	newStartAbs := absoluteEnd(earlier) + cfg.MinRestHours*60
	newDayUnixMin := newStartAbs - mod(newStartAbs, minutesPerDay)
	newStart := newStartAbs - newDayUnixMin
	newEnd := newStart + duration
	if newEnd >= minutesPerDay {
		return nil, fmt.Errorf("%w: match %s cannot straddle midnight", ErrSuggestionOverflow, later.ID)
	}

	startClock, err := ClockOfMinutes(newStart)
	if err != nil {
		return nil, err
	}
	endClock, err := ClockOfMinutes(newEnd)
	if err != nil {
		return nil, err
	}

	change := ProposedChange{
		MatchID:      later.ID,
		NewStartTime: startClock,
		NewEndTime:   endClock,
		Reason: fmt.Sprintf("give %s at least %dh rest after %s",
			restSubject(issue, later), cfg.MinRestHours, earlier.ID),
	}
	if newDate := dateOfUnixMinutes(newDayUnixMin); newDate != later.Date {
		change.NewDate = newDate
	}
	return []ProposedChange{change}, nil
}

// suggestOverloadMove pushes each match beyond the per-day cap to the next
// day with its kickoff times unchanged. The chronologically earliest
// matches keep their slot.
func suggestOverloadMove(issue Issue, matches []Match, cfg Config) ([]ProposedChange, error) {
	if len(issue.MatchIDs) <= cfg.MaxMatchesPerTeamPerDay {
		return nil, nil
	}

	day, err := ParseDate(issue.Date)
	if err != nil {
		return nil, err
	}
	nextDay := FormatDate(day.AddDate(0, 0, 1))

	var changes []ProposedChange
	for _, matchID := range issue.MatchIDs[cfg.MaxMatchesPerTeamPerDay:] {
		m, err := findMatch(matches, matchID)
		if err != nil {
			return nil, err
		}
		changes = append(changes, ProposedChange{
			MatchID: m.ID,
			NewDate: nextDay,
			Reason: fmt.Sprintf("move to %s to stay within %d match(es) per team per day",
				nextDay, cfg.MaxMatchesPerTeamPerDay),
		})
	}
	return changes, nil
}

// suggestTimeRepair rebuilds a broken end time as start plus one hour.
// Unparseable starts or dates have no mechanical fix.
func suggestTimeRepair(issue Issue, matches []Match) ([]ProposedChange, error) {
	if len(issue.MatchIDs) == 0 {
		return nil, fmt.Errorf("%w: invalid-date issue references no match", ErrMatchNotFound)
	}
	m, err := findMatch(matches, issue.MatchIDs[0])
	if err != nil {
		return nil, err
	}

	if _, err := ParseDate(m.Date); err != nil {
		return nil, fmt.Errorf("match %s: no mechanical fix for date %q", m.ID, m.Date)
	}
	start, err := MinutesOfDay(m.StartTime)
	if err != nil {
		return nil, fmt.Errorf("match %s: no mechanical fix for start %q", m.ID, m.StartTime)
	}

	newEnd := start + 60
	if newEnd >= minutesPerDay {
		return nil, fmt.Errorf("%w: match %s starts too late for a one hour slot", ErrSuggestionOverflow, m.ID)
	}
	endClock, err := ClockOfMinutes(newEnd)
	if err != nil {
		return nil, err
	}

	return []ProposedChange{{
		MatchID:    m.ID,
		NewEndTime: endClock,
		Reason:     "rebuild end time as start plus one hour",
	}}, nil
}

func findMatch(matches []Match, matchID string) (Match, error) {
	for _, m := range matches {
		if m.ID == matchID {
			return m, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
}

// orderByStart returns the two matches ordered chronologically, later ID
// breaking ties so the anchor is stable.
func orderByStart(a, b Match) (anchor, moved Match) {
	sa := absoluteStart(a)
	sb := absoluteStart(b)
	if sa < sb || (sa == sb && a.ID < b.ID) {
		return a, b
	}
	return b, a
}

func restSubject(issue Issue, fallback Match) string {
	if issue.TeamID != "" {
		return issue.TeamID
	}
	return fallback.ID
}

func dateOfUnixMinutes(unixMinutes int) string {
	return FormatDate(unixTimeOfMinutes(unixMinutes))
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
