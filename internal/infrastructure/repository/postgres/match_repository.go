package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	qb "github.com/tourneyops/scheduler-api/internal/platform/querybuilder"
)

const matchUpsertSuffix = `ON CONFLICT (id)
DO UPDATE SET
	match_date = EXCLUDED.match_date,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	team1_id = EXCLUDED.team1_id,
	team1_name = EXCLUDED.team1_name,
	team1_short = EXCLUDED.team1_short,
	team2_id = EXCLUDED.team2_id,
	team2_name = EXCLUDED.team2_name,
	team2_short = EXCLUDED.team2_short,
	venue = EXCLUDED.venue,
	completed = EXCLUDED.completed,
	updated_at = NOW()`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListAll(ctx context.Context) ([]schedule.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		OrderBy("match_date", "start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	return matchRowsToDomain(rows), nil
}

func (r *MatchRepository) ListByDate(ctx context.Context, date string) ([]schedule.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("match_date", date)).
		OrderBy("start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by date query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by date: %w", err)
	}

	return matchRowsToDomain(rows), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (schedule.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return schedule.Match{}, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return schedule.Match{}, fmt.Errorf("%w: %s", schedule.ErrMatchNotFound, matchID)
		}
		return schedule.Match{}, fmt.Errorf("select match by id: %w", err)
	}

	return row.toDomain(), nil
}

// ReplaceAll swaps the stored schedule atomically: the old rows are gone
// and the new ones visible in a single transaction.
func (r *MatchRepository) ReplaceAll(ctx context.Context, matches []schedule.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace matches tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("matches").ToSQL()
	if err != nil {
		return fmt.Errorf("build delete matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}

	for _, m := range matches {
		query, args, err := qb.InsertModel("matches", matchInsertFromDomain(m), "")
		if err != nil {
			return fmt.Errorf("build insert match query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace matches tx: %w", err)
	}

	return nil
}

func (r *MatchRepository) Save(ctx context.Context, m schedule.Match) error {
	query, args, err := qb.InsertModel("matches", matchInsertFromDomain(m), matchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}

	return nil
}

func matchRowsToDomain(rows []matchTableModel) []schedule.Match {
	out := make([]schedule.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
