package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	"github.com/tourneyops/scheduler-api/internal/usecase"
)

type teamPayload struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Short string `json:"short"`
}

// matchPayload carries raw schedule input. Start and end times are
// deliberately unvalidated here: malformed times are stored and surface
// as invalid_date issues in analysis.
type matchPayload struct {
	ID        string      `json:"id"`
	Date      string      `json:"date" validate:"required"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Team1     teamPayload `json:"team1" validate:"required"`
	Team2     teamPayload `json:"team2" validate:"required"`
	Venue     string      `json:"venue"`
	Completed bool        `json:"completed"`
}

type replaceScheduleRequest struct {
	Matches []matchPayload `json:"matches" validate:"required,min=1,dive"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	date := r.URL.Query().Get("date")
	matches, err := h.scheduleService.ListMatches(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	item, err := h.scheduleService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) ReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReplaceSchedule")
	defer span.End()

	var req replaceScheduleRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matches := make([]schedule.Match, 0, len(req.Matches))
	for _, payload := range req.Matches {
		matches = append(matches, matchFromPayload(payload))
	}

	stored, err := h.scheduleService.ReplaceSchedule(ctx, matches)
	if err != nil {
		h.logger.WarnContext(ctx, "replace schedule failed", "matches", len(matches), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(stored))
}

func matchFromPayload(payload matchPayload) schedule.Match {
	return schedule.Match{
		ID:        payload.ID,
		Date:      payload.Date,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Team1:     team.Team{ID: payload.Team1.ID, Name: payload.Team1.Name, Short: payload.Team1.Short},
		Team2:     team.Team{ID: payload.Team2.ID, Name: payload.Team2.Name, Short: payload.Team2.Short},
		Venue:     payload.Venue,
		Completed: payload.Completed,
	}
}
