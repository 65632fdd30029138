package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/usecase"
)

type Handler struct {
	matchService     *usecase.MatchService
	heroService      *usecase.HeroService
	teamService      *usecase.TeamService
	videogameService *usecase.VideogameService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	heroService *usecase.HeroService,
	teamService *usecase.TeamService,
	videogameService *usecase.VideogameService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:     matchService,
		heroService:      heroService,
		teamService:      teamService,
		videogameService: videogameService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type listMatchesQuery struct {
	Page    int    `validate:"gte=1,lte=10000"`
	PerPage int    `validate:"gte=1,lte=100"`
	Status  string `validate:"omitempty,oneof=not_started running finished"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	query, err := parseListMatchesQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(query); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	matches, err := h.matchService.List(ctx, usecase.ListMatchesInput{
		Page:    query.Page,
		PerPage: query.PerPage,
		Status:  match.Status(query.Status),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if matches == nil {
		matches = []match.Summary{}
	}

	writeJSON(ctx, w, http.StatusOK, matches)
}

func parseListMatchesQuery(r *http.Request) (listMatchesQuery, error) {
	query := listMatchesQuery{Page: 1, PerPage: 12}
	values := r.URL.Query()

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: page must be an integer", usecase.ErrInvalidInput)
		}
		query.Page = page
	}

	rawPerPage := strings.TrimSpace(values.Get("per_page"))
	if rawPerPage == "" {
		rawPerPage = strings.TrimSpace(values.Get("limit"))
	}
	if rawPerPage != "" {
		perPage, err := strconv.Atoi(rawPerPage)
		if err != nil {
			return query, fmt.Errorf("%w: per_page must be an integer", usecase.ErrInvalidInput)
		}
		query.PerPage = perPage
	}

	query.Status = strings.TrimSpace(values.Get("filter[status]"))
	return query, nil
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	found, err := h.matchService.Get(ctx, r.PathValue("id"), r.URL.Query().Get("include"))
	if err != nil {
		h.logger.ErrorContext(ctx, "get match failed", "match_id", r.PathValue("id"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, found)
}

func (h *Handler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHeroes")
	defer span.End()

	heroes, err := h.heroService.ListHeroes(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list heroes failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, heroes)
}

func (h *Handler) ListHeroStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHeroStats")
	defer span.End()

	stats, err := h.heroService.ListHeroStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list hero stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}

func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Rankings")
	defer span.End()

	rankings, err := h.teamService.Rankings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"rankings": rankings})
}

func (h *Handler) TeamProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamProfile")
	defer span.End()

	profile, err := h.teamService.Profile(ctx, r.PathValue("id"))
	if err != nil {
		h.logger.ErrorContext(ctx, "team profile failed", "team_id", r.PathValue("id"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, profile)
}

func (h *Handler) TeamSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamSnapshot")
	defer span.End()

	snapshot, err := h.teamService.Snapshot(ctx, r.PathValue("id"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, snapshot)
}

func (h *Handler) ListVideogames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListVideogames")
	defer span.End()

	games, err := h.videogameService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list videogames failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"games": games})
}
