package schedule

// DetectConflicts scans the matches scheduled on the given calendar day and
// reports every pairwise collision: a team_conflict when two overlapping
// matches share a team, a venue_conflict when two overlapping matches claim
// the same non-empty venue. A pair can produce both.
//
// The scan is an O(n²) pass over unordered pairs in input order, which is
// fine for realistic per-day match counts. Matches with malformed or
// unordered times never enter the overlap math; they are reported as
// invalid_date issues by AnalyzeSchedule instead. Output order is
// deterministic: first index ascending, second index ascending, team
// conflict before venue conflict for the same pair.
func DetectConflicts(matches []Match, date string) []Conflict {
	day := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Date == date && m.timeValid() {
			day = append(day, m)
		}
	}

	var conflicts []Conflict
	for i := 0; i < len(day); i++ {
		s1, e1, _ := day[i].span()
		for j := i + 1; j < len(day); j++ {
			s2, e2, _ := day[j].span()
			if !Overlaps(s1, e1, s2, e2) {
				continue
			}
			if day[i].sharesTeam(day[j]) {
				conflicts = append(conflicts, Conflict{Type: ConflictTeam, Match1: day[i], Match2: day[j]})
			}
			if day[i].Venue != "" && day[i].Venue == day[j].Venue {
				conflicts = append(conflicts, Conflict{Type: ConflictVenue, Match1: day[i], Match2: day[j]})
			}
		}
	}

	return conflicts
}
