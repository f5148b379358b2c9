package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	schedulemock "github.com/tourneyops/scheduler-api/internal/mocks/domain/schedule"
	teammock "github.com/tourneyops/scheduler-api/internal/mocks/domain/team"
	"github.com/tourneyops/scheduler-api/internal/platform/id"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
)

func newMockedScheduleService(t *testing.T) (*ScheduleService, *schedulemock.Repository, *teammock.Repository) {
	t.Helper()

	matchRepo := schedulemock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	service := NewScheduleService(
		matchRepo,
		teamRepo,
		id.NewRandomGenerator("mt"),
		nil,
		logging.NewNop(),
		schedule.DefaultConfig(),
	)
	t.Cleanup(service.Close)

	return service, matchRepo, teamRepo
}

func TestScheduleService_DetectConflicts_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	service, matchRepo, _ := newMockedScheduleService(t)
	ctx := context.Background()
	date := "2026-09-12"

	home := team.Team{ID: "tm-eagles", Name: "Riverdale Eagles"}
	away := team.Team{ID: "tm-sharks", Name: "Bayside Sharks"}
	other := team.Team{ID: "tm-wolves", Name: "Northgate Wolves"}

	matchRepo.
		On("ListByDate", mock.Anything, date).
		Return([]schedule.Match{
			{ID: "mt-1", Date: date, StartTime: "10:00", EndTime: "11:00", Team1: home, Team2: away, Venue: "Court A"},
			{ID: "mt-2", Date: date, StartTime: "10:30", EndTime: "11:30", Team1: home, Team2: other, Venue: "Court B"},
		}, nil).
		Once()

	conflicts, err := service.DetectConflicts(ctx, date)
	if err != nil {
		t.Fatalf("detect conflicts: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("unexpected conflict count: got=%d want=1", len(conflicts))
	}
	if conflicts[0].Type != schedule.ConflictTeam {
		t.Fatalf("unexpected conflict type: %s", conflicts[0].Type)
	}
}

func TestScheduleService_DetectConflicts_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	service, matchRepo, _ := newMockedScheduleService(t)
	ctx := context.Background()
	repoErr := errors.New("query timeout")

	matchRepo.
		On("ListByDate", mock.Anything, "2026-09-12").
		Return(nil, repoErr).
		Once()

	_, err := service.DetectConflicts(ctx, "2026-09-12")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
