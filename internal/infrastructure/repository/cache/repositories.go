package cache

import (
	"context"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	basecache "github.com/tourneyops/scheduler-api/internal/platform/cache"
)

// MatchRepository caches reads in front of another match repository.
// Writes pass through and drop every match key.
type MatchRepository struct {
	next  schedule.Repository
	cache *basecache.Store
}

func NewMatchRepository(next schedule.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) ListAll(ctx context.Context) ([]schedule.Match, error) {
	v, err := r.cache.GetOrLoad(ctx, "match:list", func(ctx context.Context) (any, error) {
		items, err := r.next.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return append([]schedule.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]schedule.Match)
	return append([]schedule.Match(nil), items...), nil
}

func (r *MatchRepository) ListByDate(ctx context.Context, date string) ([]schedule.Match, error) {
	key := "match:date:" + date
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		return append([]schedule.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]schedule.Match)
	return append([]schedule.Match(nil), items...), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (schedule.Match, error) {
	key := "match:id:" + matchID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.GetByID(ctx, matchID)
	})
	if err != nil {
		return schedule.Match{}, err
	}

	item, _ := v.(schedule.Match)
	return item, nil
}

func (r *MatchRepository) ReplaceAll(ctx context.Context, matches []schedule.Match) error {
	if err := r.next.ReplaceAll(ctx, matches); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:")
	return nil
}

func (r *MatchRepository) Save(ctx context.Context, m schedule.Match) error {
	if err := r.next.Save(ctx, m); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:")
	return nil
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) ListAll(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}
