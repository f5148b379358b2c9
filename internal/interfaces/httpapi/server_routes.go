package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)

	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("PUT /v1/matches", handler.ReplaceSchedule)

	mux.HandleFunc("GET /v1/schedule/conflicts", handler.ListConflicts)
	mux.HandleFunc("POST /v1/schedule/conflicts/scan", handler.ScanConflicts)
	mux.HandleFunc("GET /v1/schedule/issues", handler.ListIssues)
	mux.HandleFunc("POST /v1/schedule/issues/suggest", handler.SuggestFix)
	mux.HandleFunc("POST /v1/schedule/fixes", handler.ApplyFixes)
	mux.HandleFunc("POST /v1/schedule/fixes/auto", handler.AutoFix)
}
