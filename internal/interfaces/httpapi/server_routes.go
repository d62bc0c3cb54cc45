package httpapi

import "net/http"

// guarded registers handler behind RequireSession.
type guarded struct {
	mux      *http.ServeMux
	sessions IdentitySource
}

func (g guarded) handle(pattern string, handler http.HandlerFunc) {
	g.mux.Handle(pattern, RequireSession(g.sessions, handler))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.Docs)
	mux.Handle("GET /docs/", http.RedirectHandler("/docs", http.StatusMovedPermanently))
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, sessions IdentitySource) {
	g := guarded{mux: mux, sessions: sessions}
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	g.handle("POST /v1/auth/logout", handler.Logout)
	g.handle("GET /v1/auth/me", handler.Me)
}

func registerCompetitionRoutes(mux *http.ServeMux, handler *Handler, sessions IdentitySource) {
	g := guarded{mux: mux, sessions: sessions}
	g.handle("GET /v1/competitions", handler.ListCompetitions)
	g.handle("POST /v1/competitions", handler.CreateCompetition)
	g.handle("GET /v1/competitions/{competitionID}", handler.GetCompetition)
	g.handle("PATCH /v1/competitions/{competitionID}", handler.UpdateCompetition)
	g.handle("DELETE /v1/competitions/{competitionID}", handler.DeleteCompetition)
	g.handle("POST /v1/competitions/{competitionID}/status", handler.ChangeCompetitionStatus)
	g.handle("GET /v1/competitions/{competitionID}/games", handler.ListCompetitionGames)
	g.handle("POST /v1/competitions/{competitionID}/games", handler.CreateCompetitionGame)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, sessions IdentitySource) {
	g := guarded{mux: mux, sessions: sessions}
	g.handle("GET /v1/players", handler.ListPlayers)
	g.handle("POST /v1/players", handler.CreatePlayer)
	g.handle("PATCH /v1/players/{playerID}", handler.UpdatePlayer)
	g.handle("DELETE /v1/players/{playerID}", handler.DeletePlayer)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler, sessions IdentitySource) {
	g := guarded{mux: mux, sessions: sessions}
	g.handle("GET /v1/games", handler.ListGames)
	g.handle("PATCH /v1/games/{gameID}", handler.UpdateGame)
	g.handle("DELETE /v1/games/{gameID}", handler.DeleteGame)
	g.handle("GET /v1/games/{gameID}/matches", handler.ListGameMatches)
	g.handle("POST /v1/games/{gameID}/matches", handler.CreateGameMatch)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, sessions IdentitySource) {
	g := guarded{mux: mux, sessions: sessions}
	g.handle("GET /v1/matches", handler.ListMatches)
	g.handle("PATCH /v1/matches/{matchID}", handler.UpdateMatch)
	g.handle("DELETE /v1/matches/{matchID}", handler.DeleteMatch)
}
