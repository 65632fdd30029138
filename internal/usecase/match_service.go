package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nikdesigns/esports-track/external/pandascore"
	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/platform/cache"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

const (
	defaultPerPage = 12

	upcomingFetchFloor = 80
	combinedFetchFloor = 40
)

type CommercialMatchProvider interface {
	Configured() bool
	ListMatches(ctx context.Context, params pandascore.ListParams) ([]match.Summary, error)
	GetMatch(ctx context.Context, id, include string) (match.Summary, error)
}

type GraphQLMatchProvider interface {
	Configured() bool
	ListMatches(ctx context.Context, limit, offset int) ([]match.Summary, error)
}

type ProMatchProvider interface {
	ListProMatches(ctx context.Context, limit int) ([]match.Summary, error)
}

type MatchServiceConfig struct {
	Commercial CommercialMatchProvider
	GraphQL    GraphQLMatchProvider
	Fallback   ProMatchProvider
	Cache      *cache.Store[[]match.Summary]
	Logger     *logging.Logger
	Now        func() time.Time
}

// MatchService aggregates the three match feeds in strict priority order:
// commercial, GraphQL, public fallback.
type MatchService struct {
	commercial CommercialMatchProvider
	graphql    GraphQLMatchProvider
	fallback   ProMatchProvider
	cache      *cache.Store[[]match.Summary]
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchService(cfg MatchServiceConfig) *MatchService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	store := cfg.Cache
	if store == nil {
		store = cache.NewStore[[]match.Summary](20 * time.Second)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &MatchService{
		commercial: cfg.Commercial,
		graphql:    cfg.GraphQL,
		fallback:   cfg.Fallback,
		cache:      store,
		logger:     logger,
		now:        now,
	}
}

type ListMatchesInput struct {
	Page    int
	PerPage int
	Status  match.Status
}

func (in *ListMatchesInput) normalize() {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PerPage < 1 {
		in.PerPage = defaultPerPage
	}
}

// attemptOutcome tags one provider attempt so the short-circuit rule stays
// explicit: data short-circuits or contributes, empty falls through,
// failure falls through and blocks caching of an all-failed result.
type attemptOutcome int

const (
	outcomeData attemptOutcome = iota
	outcomeEmpty
	outcomeFailure
)

type attemptResult struct {
	provider string
	outcome  attemptOutcome
	matches  []match.Summary
}

// List returns one page of the merged match feed. Provider failures are
// absorbed: the worst case is an empty page, never an error.
func (s *MatchService) List(ctx context.Context, input ListMatchesInput) ([]match.Summary, error) {
	input.normalize()
	key := listCacheKey(input)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	page, cacheable := s.assemble(ctx, input)
	if cacheable {
		s.cache.Set(ctx, key, page)
	}
	return page, nil
}

func (s *MatchService) assemble(ctx context.Context, input ListMatchesInput) ([]match.Summary, bool) {
	results := make([]attemptResult, 0, 3)

	if s.commercial != nil && s.commercial.Configured() {
		result := s.attemptCommercial(ctx, input)
		results = append(results, result)
		if result.outcome == outcomeData {
			// provider-side pagination and filtering are trusted as-is
			return result.matches, true
		}
	}

	if s.graphql != nil && s.graphql.Configured() {
		results = append(results, s.attemptGraphQL(ctx, input))
	}

	if s.fallback != nil {
		results = append(results, s.attemptFallback(ctx, input))
	}

	combined, anyFailure, allFailed := mergeAttempts(results)

	// the upcoming-only enrichment can leave the combined feed empty; the
	// public feed's plain recent window is the last resort
	if len(combined) == 0 && s.fallback != nil && input.Status != match.StatusNotStarted {
		results = append(results, s.attemptFallbackWindow(ctx, input))
		combined, anyFailure, allFailed = mergeAttempts(results)
	}

	combined = match.Dedupe(combined)
	if input.Status != "" {
		combined = match.FilterStatus(combined, input.Status)
	}
	match.Sort(combined)
	page := match.Paginate(combined, input.Page, input.PerPage)

	// an empty page produced purely by outages is not a real answer and
	// must not be served from cache for the full TTL
	cacheable := !(len(page) == 0 && anyFailure) && !allFailed
	return page, cacheable
}

func (s *MatchService) attemptCommercial(ctx context.Context, input ListMatchesInput) attemptResult {
	matches, err := s.commercial.ListMatches(ctx, pandascore.ListParams{
		Page:    input.Page,
		PerPage: input.PerPage,
		Status:  input.Status,
	})
	return s.tag(ctx, "pandascore", matches, err)
}

func (s *MatchService) attemptGraphQL(ctx context.Context, input ListMatchesInput) attemptResult {
	offset := (input.Page - 1) * input.PerPage
	matches, err := s.graphql.ListMatches(ctx, input.PerPage, offset)
	return s.tag(ctx, "stratz", matches, err)
}

// attemptFallback over-fetches because the public feed has no status
// filter; upcoming matches are selected in-process. Outside the upcoming
// listing the feed only enriches the page with a handful of
// future-scheduled rows, never with its recent results.
func (s *MatchService) attemptFallback(ctx context.Context, input ListMatchesInput) attemptResult {
	window := input.Page * input.PerPage
	limit := maxInt(combinedFetchFloor, window*2)
	if input.Status == match.StatusNotStarted {
		limit = maxInt(upcomingFetchFloor, window*4)
	}

	matches, err := s.fallback.ListProMatches(ctx, limit)
	result := s.tag(ctx, "opendota", matches, err)
	if result.outcome != outcomeData {
		return result
	}

	result.matches = s.futureScheduled(result.matches)
	if input.Status != match.StatusNotStarted && len(result.matches) > input.PerPage {
		result.matches = result.matches[:input.PerPage]
	}
	if len(result.matches) == 0 {
		result.outcome = outcomeEmpty
	}
	return result
}

// attemptFallbackWindow returns the recent window as-is, finished rows
// included, sized to cover the requested page.
func (s *MatchService) attemptFallbackWindow(ctx context.Context, input ListMatchesInput) attemptResult {
	limit := maxInt(1, input.Page*input.PerPage)
	matches, err := s.fallback.ListProMatches(ctx, limit)
	return s.tag(ctx, "opendota", matches, err)
}

func mergeAttempts(results []attemptResult) (combined []match.Summary, anyFailure, allFailed bool) {
	combined = make([]match.Summary, 0)
	allFailed = len(results) > 0
	for _, result := range results {
		switch result.outcome {
		case outcomeData:
			combined = append(combined, result.matches...)
			allFailed = false
		case outcomeEmpty:
			allFailed = false
		case outcomeFailure:
			anyFailure = true
		}
	}
	return combined, anyFailure, allFailed
}

func (s *MatchService) futureScheduled(in []match.Summary) []match.Summary {
	cutoff := s.now().Add(5 * time.Second)
	out := make([]match.Summary, 0, len(in))
	for _, m := range in {
		if m.ScheduledAt != nil && m.ScheduledAt.After(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

func (s *MatchService) tag(ctx context.Context, provider string, matches []match.Summary, err error) attemptResult {
	if err != nil {
		s.logger.WarnContext(ctx, "match provider attempt failed", "provider", provider, "error", err)
		return attemptResult{provider: provider, outcome: outcomeFailure}
	}
	if len(matches) == 0 {
		return attemptResult{provider: provider, outcome: outcomeEmpty}
	}
	return attemptResult{provider: provider, outcome: outcomeData, matches: matches}
}

// Get returns one match from the commercial feed. There is no fallback,
// so upstream problems surface as errors.
func (s *MatchService) Get(ctx context.Context, id, include string) (match.Summary, error) {
	if id == "" {
		return match.Summary{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if s.commercial == nil || !s.commercial.Configured() {
		return match.Summary{}, fmt.Errorf("%w: commercial feed key missing", ErrNotConfigured)
	}

	found, err := s.commercial.GetMatch(ctx, id, include)
	if err != nil {
		if statusErr, ok := fetch.AsStatusError(err); ok && statusErr.StatusCode == 404 {
			return match.Summary{}, fmt.Errorf("%w: match=%s", ErrNotFound, id)
		}
		return match.Summary{}, fmt.Errorf("%w: get match: %w", ErrDependencyUnavailable, err)
	}
	return found, nil
}

func listCacheKey(input ListMatchesInput) string {
	status := "all"
	if input.Status != "" {
		status = string(input.Status)
	}
	return "matches:" + strconv.Itoa(input.PerPage) + ":" + strconv.Itoa(input.Page) + ":" + status
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
