package httpapi

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
	"github.com/tourneyops/scheduler-api/internal/usecase"
)

type Handler struct {
	scheduleService *usecase.ScheduleService
	teamService     *usecase.TeamService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	scheduleService *usecase.ScheduleService,
	teamService *usecase.TeamService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scheduleService: scheduleService,
		teamService:     teamService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type teamDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short,omitempty"`
}

type matchDTO struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Team1     teamDTO `json:"team1"`
	Team2     teamDTO `json:"team2"`
	Venue     string  `json:"venue,omitempty"`
	Completed bool    `json:"completed"`
}

type conflictDTO struct {
	Type   string   `json:"type"`
	Match1 matchDTO `json:"match1"`
	Match2 matchDTO `json:"match2"`
}

type issueDTO struct {
	Type            string   `json:"type"`
	Severity        string   `json:"severity"`
	Date            string   `json:"date,omitempty"`
	MatchIDs        []string `json:"match_ids"`
	TeamID          string   `json:"team_id,omitempty"`
	Description     string   `json:"description"`
	AutoFixEligible bool     `json:"auto_fix_eligible"`
}

type proposedChangeDTO struct {
	MatchID      string `json:"match_id"`
	NewDate      string `json:"new_date,omitempty"`
	NewStartTime string `json:"new_start_time,omitempty"`
	NewEndTime   string `json:"new_end_time,omitempty"`
	Reason       string `json:"reason"`
}

type dayReportDTO struct {
	Date      string        `json:"date"`
	Conflicts []conflictDTO `json:"conflicts"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:    v.ID,
		Name:  v.Name,
		Short: v.Short,
	}
}

func matchToDTO(v schedule.Match) matchDTO {
	return matchDTO{
		ID:        v.ID,
		Date:      v.Date,
		StartTime: v.StartTime,
		EndTime:   v.EndTime,
		Team1:     teamToDTO(v.Team1),
		Team2:     teamToDTO(v.Team2),
		Venue:     v.Venue,
		Completed: v.Completed,
	}
}

func matchesToDTO(items []schedule.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}

func conflictToDTO(v schedule.Conflict) conflictDTO {
	return conflictDTO{
		Type:   string(v.Type),
		Match1: matchToDTO(v.Match1),
		Match2: matchToDTO(v.Match2),
	}
}

func conflictsToDTO(items []schedule.Conflict) []conflictDTO {
	out := make([]conflictDTO, 0, len(items))
	for _, item := range items {
		out = append(out, conflictToDTO(item))
	}
	return out
}

func issueToDTO(v schedule.Issue) issueDTO {
	return issueDTO{
		Type:            string(v.Type),
		Severity:        string(v.Severity),
		Date:            v.Date,
		MatchIDs:        v.MatchIDs,
		TeamID:          v.TeamID,
		Description:     v.Description,
		AutoFixEligible: v.AutoFixEligible,
	}
}

func issuesToDTO(items []schedule.Issue) []issueDTO {
	out := make([]issueDTO, 0, len(items))
	for _, item := range items {
		out = append(out, issueToDTO(item))
	}
	return out
}

func changeToDTO(v schedule.ProposedChange) proposedChangeDTO {
	return proposedChangeDTO{
		MatchID:      v.MatchID,
		NewDate:      v.NewDate,
		NewStartTime: v.NewStartTime,
		NewEndTime:   v.NewEndTime,
		Reason:       v.Reason,
	}
}

func changesToDTO(items []schedule.ProposedChange) []proposedChangeDTO {
	out := make([]proposedChangeDTO, 0, len(items))
	for _, item := range items {
		out = append(out, changeToDTO(item))
	}
	return out
}
