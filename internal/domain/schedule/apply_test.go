package schedule

import (
	"errors"
	"testing"
)

func TestApplyFix(t *testing.T) {
	matches := []Match{
		newMatch("m1", "2026-05-02", "10:00", "11:00", "t1", "t2", "arena"),
		newMatch("m2", "2026-05-02", "12:00", "13:00", "t3", "t4", "arena"),
	}

	changes := []ProposedChange{
		{MatchID: "m2", NewDate: "2026-05-03", NewStartTime: "09:00"},
	}

	fixed, err := ApplyFix(matches, changes)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if fixed[1].Date != "2026-05-03" || fixed[1].StartTime != "09:00" {
		t.Fatalf("expected changes applied, got %+v", fixed[1])
	}
	if fixed[1].EndTime != "13:00" {
		t.Fatalf("empty fields must stay untouched, got %q", fixed[1].EndTime)
	}
	if fixed[0] != matches[0] {
		t.Fatalf("untargeted match changed: %+v", fixed[0])
	}

	// the input slice is never mutated
	if matches[1].Date != "2026-05-02" || matches[1].StartTime != "12:00" {
		t.Fatalf("input mutated: %+v", matches[1])
	}
}

func TestApplyFixUnknownMatch(t *testing.T) {
	matches := []Match{
		newMatch("m1", "2026-05-02", "10:00", "11:00", "t1", "t2", "arena"),
	}

	changes := []ProposedChange{
		{MatchID: "m1", NewDate: "2026-05-03"},
		{MatchID: "ghost", NewDate: "2026-05-04"},
	}

	fixed, err := ApplyFix(matches, changes)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
	if fixed != nil {
		t.Fatalf("expected nil result on failure, got %+v", fixed)
	}
	if matches[0].Date != "2026-05-02" {
		t.Fatalf("input mutated on failed batch: %+v", matches[0])
	}
}

func TestApplyFixEmptyChanges(t *testing.T) {
	matches := []Match{
		newMatch("m1", "2026-05-02", "10:00", "11:00", "t1", "t2", "arena"),
	}

	fixed, err := ApplyFix(matches, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(fixed) != 1 || fixed[0] != matches[0] {
		t.Fatalf("expected an identical copy, got %+v", fixed)
	}
}
