package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	"github.com/tourneyops/scheduler-api/internal/platform/id"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
)

// AlertPublisher receives a digest of newly detected issues. Publishing is
// best effort and never blocks the request path.
type AlertPublisher interface {
	PublishIssueDigest(ctx context.Context, issues []schedule.Issue) error
}

const (
	maxAnalyzeDaysWorkers = 4
	maxAutoFixPasses      = 16
	alertPublishTimeout   = 10 * time.Second
)

type ScheduleService struct {
	matchRepo schedule.Repository
	teamRepo  team.Repository
	idGen     id.Generator
	alerts    AlertPublisher
	logger    *logging.Logger
	cfg       schedule.Config

	background conc.WaitGroup
}

func NewScheduleService(
	matchRepo schedule.Repository,
	teamRepo team.Repository,
	idGen id.Generator,
	alerts AlertPublisher,
	logger *logging.Logger,
	cfg schedule.Config,
) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		idGen:     idGen,
		alerts:    alerts,
		logger:    logger,
		cfg:       cfg,
	}
}

// Close drains in-flight background work. Call on shutdown.
func (s *ScheduleService) Close() {
	s.background.WaitAndRecover()
}

func (s *ScheduleService) ListMatches(ctx context.Context, date string) ([]schedule.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListMatches")
	defer span.End()

	date = strings.TrimSpace(date)
	if date == "" {
		items, err := s.matchRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		return items, nil
	}

	if _, err := schedule.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	items, err := s.matchRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list matches date=%s: %w", date, err)
	}
	return items, nil
}

func (s *ScheduleService) GetMatch(ctx context.Context, matchID string) (schedule.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return schedule.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return s.matchRepo.GetByID(ctx, matchID)
}

// ReplaceSchedule swaps the entire stored schedule for the given matches.
// Matches without an ID get a generated one. Times are allowed to be
// broken here; that is exactly what analysis reports on.
func (s *ScheduleService) ReplaceSchedule(ctx context.Context, matches []schedule.Match) ([]schedule.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ReplaceSchedule")
	defer span.End()

	prepared := make([]schedule.Match, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for i, m := range matches {
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			if s.idGen == nil {
				return nil, fmt.Errorf("%w: match %d has no id", ErrInvalidInput, i)
			}
			generated, err := s.idGen.NewID()
			if err != nil {
				return nil, fmt.Errorf("generate match id: %w", err)
			}
			m.ID = generated
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate match id %s", ErrInvalidInput, m.ID)
		}
		seen[m.ID] = struct{}{}

		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		prepared = append(prepared, m)
	}

	if err := s.matchRepo.ReplaceAll(ctx, prepared); err != nil {
		return nil, fmt.Errorf("replace schedule: %w", err)
	}

	s.logger.InfoContext(ctx, "schedule replaced", "matches", len(prepared))
	return prepared, nil
}

func (s *ScheduleService) DetectConflicts(ctx context.Context, date string) ([]schedule.Conflict, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.DetectConflicts")
	defer span.End()

	date = strings.TrimSpace(date)
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	matches, err := s.matchRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list matches date=%s: %w", date, err)
	}
	return schedule.DetectConflicts(matches, date), nil
}

// DayReport is the per-date output of a fan-out conflict scan.
type DayReport struct {
	Date      string              `json:"date"`
	Conflicts []schedule.Conflict `json:"conflicts"`
}

// AnalyzeDays scans several dates concurrently on a bounded worker pool.
func (s *ScheduleService) AnalyzeDays(ctx context.Context, dates []string, maxWorkers int) ([]DayReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.AnalyzeDays")
	defer span.End()

	normalized, err := normalizeAnalysisDates(dates)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	workerCount := normalizeWorkerCount(maxWorkers, len(normalized))
	reports := make(chan DayReport, len(normalized))

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, date := range normalized {
		date := date
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			reports <- DayReport{
				Date:      date,
				Conflicts: schedule.DetectConflicts(matches, date),
			}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit day scan to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(reports)

	out := make([]DayReport, 0, len(normalized))
	for report := range reports {
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// AnalyzeSchedule classifies the whole stored schedule. Critical findings
// are pushed to the alert publisher in the background.
func (s *ScheduleService) AnalyzeSchedule(ctx context.Context) ([]schedule.Issue, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.AnalyzeSchedule")
	defer span.End()

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	issues := schedule.AnalyzeSchedule(matches, s.cfg)
	s.dispatchCriticalAlerts(ctx, issues)
	return issues, nil
}

func (s *ScheduleService) SuggestFix(ctx context.Context, issue schedule.Issue) ([]schedule.ProposedChange, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.SuggestFix")
	defer span.End()

	if strings.TrimSpace(string(issue.Type)) == "" {
		return nil, fmt.Errorf("%w: issue type is required", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return schedule.SuggestFix(issue, matches, s.cfg)
}

// ApplyResult reports what a fix application changed and what is left.
type ApplyResult struct {
	Matches         []schedule.Match `json:"matches"`
	AppliedChanges  int              `json:"applied_changes"`
	RemainingIssues []schedule.Issue `json:"remaining_issues"`
}

func (s *ScheduleService) ApplyFixes(ctx context.Context, changes []schedule.ProposedChange) (ApplyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ApplyFixes")
	defer span.End()

	if len(changes) == 0 {
		return ApplyResult{}, fmt.Errorf("%w: at least one change is required", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("list matches: %w", err)
	}

	updated, err := schedule.ApplyFix(matches, changes)
	if err != nil {
		return ApplyResult{}, err
	}

	if err := s.matchRepo.ReplaceAll(ctx, updated); err != nil {
		return ApplyResult{}, fmt.Errorf("store fixed schedule: %w", err)
	}

	remaining := schedule.AnalyzeSchedule(updated, s.cfg)
	s.logger.InfoContext(ctx, "schedule fixes applied",
		"changes", len(changes),
		"remaining_issues", len(remaining),
	)
	return ApplyResult{
		Matches:         updated,
		AppliedChanges:  len(changes),
		RemainingIssues: remaining,
	}, nil
}

// AutoFixResult summarizes an automatic repair run.
type AutoFixResult struct {
	AppliedChanges  []schedule.ProposedChange `json:"applied_changes"`
	FixedIssues     int                       `json:"fixed_issues"`
	SkippedIssues   []schedule.Issue          `json:"skipped_issues"`
	RemainingIssues []schedule.Issue          `json:"remaining_issues"`
}

// AutoFix repeatedly suggests and applies fixes for issues at or above the
// configured severity threshold. Issues whose suggestion fails are skipped
// and reported rather than aborting the run.
func (s *ScheduleService) AutoFix(ctx context.Context) (AutoFixResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.AutoFix")
	defer span.End()

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return AutoFixResult{}, fmt.Errorf("list matches: %w", err)
	}

	var result AutoFixResult
	skipped := make(map[string]struct{})

	for pass := 0; pass < maxAutoFixPasses; pass++ {
		issues := schedule.AnalyzeSchedule(matches, s.cfg)

		var target *schedule.Issue
		for i := range issues {
			if !issues[i].AutoFixEligible {
				continue
			}
			if _, done := skipped[issueKey(issues[i])]; done {
				continue
			}
			target = &issues[i]
			break
		}
		if target == nil {
			result.RemainingIssues = issues
			break
		}

		changes, err := schedule.SuggestFix(*target, matches, s.cfg)
		if err != nil {
			skipped[issueKey(*target)] = struct{}{}
			result.SkippedIssues = append(result.SkippedIssues, *target)
			s.logger.WarnContext(ctx, "auto fix skipped issue",
				"issue_type", string(target.Type),
				"date", target.Date,
				"error", err,
			)
			continue
		}

		matches, err = schedule.ApplyFix(matches, changes)
		if err != nil {
			return AutoFixResult{}, err
		}
		result.AppliedChanges = append(result.AppliedChanges, changes...)
		result.FixedIssues++
	}

	if result.RemainingIssues == nil {
		result.RemainingIssues = schedule.AnalyzeSchedule(matches, s.cfg)
	}

	if len(result.AppliedChanges) > 0 {
		if err := s.matchRepo.ReplaceAll(ctx, matches); err != nil {
			return AutoFixResult{}, fmt.Errorf("store fixed schedule: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "auto fix finished",
		"fixed_issues", result.FixedIssues,
		"skipped_issues", len(result.SkippedIssues),
		"remaining_issues", len(result.RemainingIssues),
	)
	return result, nil
}

func (s *ScheduleService) dispatchCriticalAlerts(ctx context.Context, issues []schedule.Issue) {
	if s.alerts == nil {
		return
	}

	var critical []schedule.Issue
	for _, issue := range issues {
		if issue.Severity == schedule.SeverityCritical {
			critical = append(critical, issue)
		}
	}
	if len(critical) == 0 {
		return
	}

	// detach from the request lifetime but keep trace correlation
	alertCtx := context.WithoutCancel(ctx)
	s.background.Go(func() {
		publishCtx, cancel := context.WithTimeout(alertCtx, alertPublishTimeout)
		defer cancel()
		if err := s.alerts.PublishIssueDigest(publishCtx, critical); err != nil {
			s.logger.ErrorContext(publishCtx, "publish issue digest", "error", err)
		}
	})
}

func issueKey(issue schedule.Issue) string {
	return string(issue.Type) + "|" + issue.Date + "|" + strings.Join(issue.MatchIDs, ",") + "|" + issue.TeamID
}

func normalizeAnalysisDates(dates []string) ([]string, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: at least one date is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, date := range dates {
		date = strings.TrimSpace(date)
		if date == "" {
			continue
		}
		if _, err := schedule.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		out = append(out, date)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one date is required", ErrInvalidInput)
	}
	sort.Strings(out)
	return out, nil
}

func normalizeWorkerCount(value, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > maxAnalyzeDaysWorkers {
		value = maxAnalyzeDaysWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
