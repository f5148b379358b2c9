package schedule

import "fmt"

// ApplyFix returns a new match slice with the proposed changes applied.
// The input is never mutated; unknown match IDs fail the whole batch so a
// partially applied schedule can never leak out.
func ApplyFix(matches []Match, changes []ProposedChange) ([]Match, error) {
	updated := make([]Match, len(matches))
	copy(updated, matches)

	index := make(map[string]int, len(updated))
	for i, m := range updated {
		index[m.ID] = i
	}

	for _, change := range changes {
		i, ok := index[change.MatchID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, change.MatchID)
		}
		if change.NewDate != "" {
			updated[i].Date = change.NewDate
		}
		if change.NewStartTime != "" {
			updated[i].StartTime = change.NewStartTime
		}
		if change.NewEndTime != "" {
			updated[i].EndTime = change.NewEndTime
		}
	}
	return updated, nil
}
