package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAPIRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/matches", handler.ListMatches)
	mux.HandleFunc("GET /api/matches/{id}", handler.GetMatch)
	mux.HandleFunc("GET /api/heroes", handler.ListHeroes)
	mux.HandleFunc("GET /api/hero-stats", handler.ListHeroStats)
	mux.HandleFunc("GET /api/rankings", handler.Rankings)
	mux.HandleFunc("GET /api/team/{id}", handler.TeamProfile)
	mux.HandleFunc("GET /api/teams/{id}", handler.TeamSnapshot)
	mux.HandleFunc("GET /api/videogames", handler.ListVideogames)
}
