package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches []schedule.Match
}

func NewMatchRepository(matches []schedule.Match) *MatchRepository {
	out := make([]schedule.Match, len(matches))
	copy(out, matches)
	return &MatchRepository{matches: out}
}

func (r *MatchRepository) ListAll(_ context.Context) ([]schedule.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Match, len(r.matches))
	copy(out, r.matches)
	return out, nil
}

func (r *MatchRepository) ListByDate(_ context.Context, date string) ([]schedule.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Match, 0)
	for _, m := range r.matches {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (schedule.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matches {
		if m.ID == matchID {
			return m, nil
		}
	}
	return schedule.Match{}, fmt.Errorf("%w: %s", schedule.ErrMatchNotFound, matchID)
}

func (r *MatchRepository) ReplaceAll(_ context.Context, matches []schedule.Match) error {
	out := make([]schedule.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})

	r.mu.Lock()
	r.matches = out
	r.mu.Unlock()
	return nil
}

func (r *MatchRepository) Save(_ context.Context, m schedule.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.matches {
		if r.matches[i].ID == m.ID {
			r.matches[i] = m
			return nil
		}
	}
	r.matches = append(r.matches, m)
	return nil
}
