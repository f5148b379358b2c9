package schedule

import "context"

// Repository stores the match schedule. ReplaceAll swaps the entire
// collection atomically; readers observe either the old or the new
// schedule, never a mix.
type Repository interface {
	ListAll(ctx context.Context) ([]Match, error)
	ListByDate(ctx context.Context, date string) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, error)
	ReplaceAll(ctx context.Context, matches []Match) error
	Save(ctx context.Context, m Match) error
}
