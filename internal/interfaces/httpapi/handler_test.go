package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/tourneyops/scheduler-api/internal/domain/schedule"
	"github.com/tourneyops/scheduler-api/internal/domain/team"
	"github.com/tourneyops/scheduler-api/internal/infrastructure/repository/memory"
	"github.com/tourneyops/scheduler-api/internal/platform/id"
	"github.com/tourneyops/scheduler-api/internal/platform/logging"
	"github.com/tourneyops/scheduler-api/internal/usecase"
)

func newTestRouter(t *testing.T, matches []schedule.Match, teams []team.Team) http.Handler {
	t.Helper()

	matchRepo := memory.NewMatchRepository(matches)
	teamRepo := memory.NewTeamRepository(teams)

	scheduleService := usecase.NewScheduleService(
		matchRepo,
		teamRepo,
		id.NewRandomGenerator("mt"),
		nil,
		logging.NewNop(),
		schedule.DefaultConfig(),
	)
	t.Cleanup(scheduleService.Close)
	teamService := usecase.NewTeamService(teamRepo)

	handler := NewHandler(scheduleService, teamService, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func routerMatch(id, date, start, end, team1, team2, venue string) schedule.Match {
	return schedule.Match{
		ID:        id,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Team1:     team.Team{ID: team1, Name: strings.ToUpper(team1)},
		Team2:     team.Team{ID: team2, Name: strings.ToUpper(team2)},
		Venue:     venue,
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "ok" {
		t.Fatalf("expected status=ok, got %v", data["status"])
	}
}

func TestRouter_ListMatchesByDate(t *testing.T) {
	router := newTestRouter(t, []schedule.Match{
		routerMatch("mt-1", "2026-09-05", "10:00", "11:00", "t1", "t2", "arena-a"),
		routerMatch("mt-2", "2026-09-06", "10:00", "11:00", "t3", "t4", "arena-b"),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches?date=2026-09-05", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %T", body["data"])
	}
	if len(data) != 1 {
		t.Fatalf("expected 1 match, got %d", len(data))
	}
	first, _ := data[0].(map[string]any)
	if got, _ := first["id"].(string); got != "mt-1" {
		t.Fatalf("expected match mt-1, got %v", first["id"])
	}
}

func TestRouter_GetMatchNotFound(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_GetTeam(t *testing.T) {
	router := newTestRouter(t, nil, memory.SeedTeams())

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/tm-eagles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["id"].(string); got != "tm-eagles" {
		t.Fatalf("expected team tm-eagles, got %v", data["id"])
	}
}

func TestRouter_ReplaceScheduleRejectsBrokenJSON(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/v1/matches", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_ReplaceScheduleRejectsMissingTeams(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	payload := `{"matches":[{"date":"2026-09-05","start_time":"10:00","end_time":"11:00"}]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/matches", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_ReplaceScheduleStoresMatches(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	payload := `{"matches":[{
		"id": "mt-1",
		"date": "2026-09-05",
		"start_time": "10:00",
		"end_time": "11:00",
		"team1": {"id": "t1", "name": "T1"},
		"team2": {"id": "t2", "name": "T2"},
		"venue": "arena-a"
	}]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/matches", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/matches/mt-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected stored match to be readable, got %d", rec.Code)
	}
}

func TestRouter_ConflictsRequireDate(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/schedule/conflicts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_ListConflicts(t *testing.T) {
	router := newTestRouter(t, []schedule.Match{
		routerMatch("mt-1", "2026-09-05", "10:00", "11:00", "t1", "t2", "arena-a"),
		routerMatch("mt-2", "2026-09-05", "10:30", "11:30", "t3", "t4", "arena-a"),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/schedule/conflicts?date=2026-09-05", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 venue conflict, got %d", len(data))
	}
	first, _ := data[0].(map[string]any)
	if got, _ := first["type"].(string); got != "venue_conflict" {
		t.Fatalf("expected venue_conflict, got %v", first["type"])
	}
}

func TestRouter_ScanConflicts(t *testing.T) {
	router := newTestRouter(t, []schedule.Match{
		routerMatch("mt-1", "2026-09-05", "10:00", "11:00", "t1", "t2", "arena-a"),
		routerMatch("mt-2", "2026-09-05", "10:30", "11:30", "t1", "t3", "arena-b"),
	}, nil)

	payload := `{"dates":["2026-09-06","2026-09-05"],"max_workers":2}`
	req := httptest.NewRequest(http.MethodPost, "/v1/schedule/conflicts/scan", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("expected 2 day reports, got %d", len(data))
	}
	first, _ := data[0].(map[string]any)
	if got, _ := first["date"].(string); got != "2026-09-05" {
		t.Fatalf("expected reports sorted by date, first=%v", first["date"])
	}
}

func TestRouter_IssuesSuggestApplyRoundTrip(t *testing.T) {
	router := newTestRouter(t, []schedule.Match{
		routerMatch("mt-1", "2026-09-05", "10:00", "11:00", "t1", "t2", "arena-a"),
		routerMatch("mt-2", "2026-09-05", "10:30", "11:30", "t1", "t3", "arena-b"),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/schedule/issues", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	issues, _ := body["data"].([]any)
	if len(issues) == 0 {
		t.Fatalf("expected issues for overlapping schedule")
	}

	var conflictIssue map[string]any
	for _, raw := range issues {
		item, _ := raw.(map[string]any)
		if item["type"] == "team_conflict" {
			conflictIssue = item
			break
		}
	}
	if conflictIssue == nil {
		t.Fatalf("expected a team_conflict issue")
	}

	suggestPayload, err := sonic.Marshal(map[string]any{"issue": conflictIssue})
	if err != nil {
		t.Fatalf("marshal suggest payload: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/v1/schedule/issues/suggest", strings.NewReader(string(suggestPayload)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from suggest, got %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeEnvelope(t, rec)
	changes, _ := body["data"].([]any)
	if len(changes) != 1 {
		t.Fatalf("expected 1 proposed change, got %d", len(changes))
	}

	applyPayload, err := sonic.Marshal(map[string]any{"changes": changes})
	if err != nil {
		t.Fatalf("marshal apply payload: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/v1/schedule/fixes", strings.NewReader(string(applyPayload)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from apply, got %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeEnvelope(t, rec)
	result, _ := body["data"].(map[string]any)
	if got, _ := result["applied_changes"].(float64); got != 1 {
		t.Fatalf("expected 1 applied change, got %v", result["applied_changes"])
	}
}

func TestRouter_SuggestUnknownIssueType(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	payload := `{"issue":{"type":"mystery"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/schedule/issues/suggest", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_AutoFixClearsEligibleIssues(t *testing.T) {
	router := newTestRouter(t, []schedule.Match{
		routerMatch("mt-1", "2026-09-05", "10:00", "11:00", "t1", "t2", "arena-a"),
		routerMatch("mt-2", "2026-09-05", "10:30", "11:30", "t1", "t3", "arena-b"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/schedule/fixes/auto", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	result, _ := body["data"].(map[string]any)
	if got, _ := result["fixed_issues"].(float64); got < 1 {
		t.Fatalf("expected at least one fixed issue, got %v", result["fixed_issues"])
	}
	remaining, _ := result["remaining_issues"].([]any)
	for _, raw := range remaining {
		item, _ := raw.(map[string]any)
		if eligible, _ := item["auto_fix_eligible"].(bool); eligible {
			t.Fatalf("expected no auto-fix eligible issues to remain, got %v", item)
		}
	}
}

func TestRouter_ApplyFixesUnknownMatch(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	payload := `{"changes":[{"match_id":"ghost","new_start_time":"12:00"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/schedule/fixes", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
