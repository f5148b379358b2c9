package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/usecase"
)

type scanConflictsRequest struct {
	Dates      []string `json:"dates" validate:"required,min=1,dive,required"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,gte=1,lte=16"`
}

type issuePayload struct {
	Type            string   `json:"type" validate:"required"`
	Severity        string   `json:"severity"`
	Date            string   `json:"date"`
	MatchIDs        []string `json:"match_ids"`
	TeamID          string   `json:"team_id"`
	Description     string   `json:"description"`
	AutoFixEligible bool     `json:"auto_fix_eligible"`
}

type suggestFixRequest struct {
	Issue issuePayload `json:"issue" validate:"required"`
}

type changePayload struct {
	MatchID      string `json:"match_id" validate:"required"`
	NewDate      string `json:"new_date"`
	NewStartTime string `json:"new_start_time"`
	NewEndTime   string `json:"new_end_time"`
	Reason       string `json:"reason"`
}

type applyFixesRequest struct {
	Changes []changePayload `json:"changes" validate:"required,min=1,dive"`
}

func (h *Handler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListConflicts")
	defer span.End()

	date := r.URL.Query().Get("date")
	conflicts, err := h.scheduleService.DetectConflicts(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "detect conflicts failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, conflictsToDTO(conflicts))
}

func (h *Handler) ScanConflicts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScanConflicts")
	defer span.End()

	var req scanConflictsRequest
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

	reports, err := h.scheduleService.AnalyzeDays(ctx, req.Dates, req.MaxWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "scan conflicts failed", "dates", len(req.Dates), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]dayReportDTO, 0, len(reports))
	for _, report := range reports {
		out = append(out, dayReportDTO{
			Date:      report.Date,
			Conflicts: conflictsToDTO(report.Conflicts),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListIssues")
	defer span.End()

	issues, err := h.scheduleService.AnalyzeSchedule(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "analyze schedule failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, issuesToDTO(issues))
}

func (h *Handler) SuggestFix(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SuggestFix")
	defer span.End()

	var req suggestFixRequest
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

	changes, err := h.scheduleService.SuggestFix(ctx, issueFromPayload(req.Issue))
	if err != nil {
		h.logger.WarnContext(ctx, "suggest fix failed", "issue_type", req.Issue.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, changesToDTO(changes))
}

func (h *Handler) ApplyFixes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyFixes")
	defer span.End()

	var req applyFixesRequest
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

	changes := make([]schedule.ProposedChange, 0, len(req.Changes))
	for _, payload := range req.Changes {
		changes = append(changes, schedule.ProposedChange{
			MatchID:      payload.MatchID,
			NewDate:      payload.NewDate,
			NewStartTime: payload.NewStartTime,
			NewEndTime:   payload.NewEndTime,
			Reason:       payload.Reason,
		})
	}

	result, err := h.scheduleService.ApplyFixes(ctx, changes)
	if err != nil {
		h.logger.WarnContext(ctx, "apply fixes failed", "changes", len(changes), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, applyResultToDTO(result))
}

func (h *Handler) AutoFix(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AutoFix")
	defer span.End()

	result, err := h.scheduleService.AutoFix(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "auto fix failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, autoFixResultToDTO(result))
}

type applyResultDTO struct {
	Matches         []matchDTO `json:"matches"`
	AppliedChanges  int        `json:"applied_changes"`
	RemainingIssues []issueDTO `json:"remaining_issues"`
}

type autoFixResultDTO struct {
	AppliedChanges  []proposedChangeDTO `json:"applied_changes"`
	FixedIssues     int                 `json:"fixed_issues"`
	SkippedIssues   []issueDTO          `json:"skipped_issues"`
	RemainingIssues []issueDTO          `json:"remaining_issues"`
}

func applyResultToDTO(result usecase.ApplyResult) applyResultDTO {
	return applyResultDTO{
		Matches:         matchesToDTO(result.Matches),
		AppliedChanges:  result.AppliedChanges,
		RemainingIssues: issuesToDTO(result.RemainingIssues),
	}
}

func autoFixResultToDTO(result usecase.AutoFixResult) autoFixResultDTO {
	return autoFixResultDTO{
		AppliedChanges:  changesToDTO(result.AppliedChanges),
		FixedIssues:     result.FixedIssues,
		SkippedIssues:   issuesToDTO(result.SkippedIssues),
		RemainingIssues: issuesToDTO(result.RemainingIssues),
	}
}

func issueFromPayload(payload issuePayload) schedule.Issue {
	return schedule.Issue{
		Type:            schedule.IssueType(payload.Type),
		Severity:        schedule.Severity(payload.Severity),
		Date:            payload.Date,
		MatchIDs:        payload.MatchIDs,
		TeamID:          payload.TeamID,
		Description:     payload.Description,
		AutoFixEligible: payload.AutoFixEligible,
	}
}
