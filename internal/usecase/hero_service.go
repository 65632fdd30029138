package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/nikdesigns/esports-track/internal/domain/hero"
	"github.com/nikdesigns/esports-track/internal/platform/cache"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

type HeroProvider interface {
	ListHeroes(ctx context.Context) ([]hero.Meta, error)
	ListHeroStats(ctx context.Context) ([]hero.Stat, error)
}

type HeroServiceConfig struct {
	Provider   HeroProvider
	MetaCache  *cache.Store[[]hero.Meta]
	StatsCache *cache.Store[[]hero.Stat]
	Logger     *logging.Logger
}

// HeroService serves the hero catalogue and the pick/win leaderboard.
type HeroService struct {
	provider   HeroProvider
	metaCache  *cache.Store[[]hero.Meta]
	statsCache *cache.Store[[]hero.Stat]
	logger     *logging.Logger
}

func NewHeroService(cfg HeroServiceConfig) *HeroService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	metaCache := cfg.MetaCache
	if metaCache == nil {
		metaCache = cache.NewStore[[]hero.Meta](time.Hour)
	}
	statsCache := cfg.StatsCache
	if statsCache == nil {
		statsCache = cache.NewStore[[]hero.Stat](30 * time.Minute)
	}
	return &HeroService{
		provider:   cfg.Provider,
		metaCache:  metaCache,
		statsCache: statsCache,
		logger:     logger,
	}
}

// ListHeroes returns the catalogue with absolute image URLs.
func (s *HeroService) ListHeroes(ctx context.Context) ([]hero.Meta, error) {
	return s.metaCache.GetOrLoad(ctx, "heroes", func(ctx context.Context) ([]hero.Meta, error) {
		heroes, err := s.provider.ListHeroes(ctx)
		if err != nil {
			return nil, classifyUpstream("list heroes", err)
		}
		return heroes, nil
	})
}

// ListHeroStats returns the leaderboard, most picked first. Stats and
// catalogue metadata are fetched concurrently; a catalogue failure only
// costs the imagery.
func (s *HeroService) ListHeroStats(ctx context.Context) ([]hero.Stat, error) {
	return s.statsCache.GetOrLoad(ctx, "hero-stats", func(ctx context.Context) ([]hero.Stat, error) {
		var (
			stats    []hero.Stat
			statsErr error
			meta     []hero.Meta
			metaErr  error
		)

		var wg conc.WaitGroup
		wg.Go(func() {
			stats, statsErr = s.provider.ListHeroStats(ctx)
		})
		wg.Go(func() {
			meta, metaErr = s.ListHeroes(ctx)
		})
		wg.Wait()

		if statsErr != nil {
			return nil, classifyUpstream("list hero stats", statsErr)
		}
		if metaErr != nil {
			s.logger.WarnContext(ctx, "hero catalogue unavailable, serving stats without imagery", "error", metaErr)
			meta = nil
		}

		joinHeroMeta(stats, meta)
		hero.SortByPickDesc(stats)
		return stats, nil
	})
}

// joinHeroMeta attaches catalogue imagery to stats rows, matching by id
// first, then by either name field.
func joinHeroMeta(stats []hero.Stat, meta []hero.Meta) {
	if len(meta) == 0 {
		return
	}

	byID := make(map[int64]hero.Meta, len(meta))
	byName := make(map[string]hero.Meta, len(meta)*2)
	for _, m := range meta {
		byID[m.ID] = m
		if m.Name != nil {
			byName[strings.ToLower(*m.Name)] = m
		}
		if m.LocalizedName != nil {
			byName[strings.ToLower(*m.LocalizedName)] = m
		}
	}

	for i := range stats {
		m, ok := lookupMeta(stats[i], byID, byName)
		if !ok {
			continue
		}
		if m.ImgFull != nil {
			stats[i].ImgFull = m.ImgFull
		} else {
			stats[i].ImgFull = m.Img
		}
		if m.IconFull != nil {
			stats[i].IconFull = m.IconFull
		} else {
			stats[i].IconFull = m.Icon
		}
	}
}

func lookupMeta(stat hero.Stat, byID map[int64]hero.Meta, byName map[string]hero.Meta) (hero.Meta, bool) {
	if stat.ID != nil {
		if m, ok := byID[*stat.ID]; ok {
			return m, true
		}
	}
	if stat.Name != nil {
		if m, ok := byName[strings.ToLower(*stat.Name)]; ok {
			return m, true
		}
	}
	if stat.LocalizedName != nil {
		if m, ok := byName[strings.ToLower(*stat.LocalizedName)]; ok {
			return m, true
		}
	}
	return hero.Meta{}, false
}

// classifyUpstream maps fetch-layer failures onto the service error
// taxonomy handlers translate to HTTP statuses.
func classifyUpstream(op string, err error) error {
	if fetch.IsTimeout(err) {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamTimeout, op, err)
	}
	if _, ok := fetch.AsStatusError(err); ok {
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	}
	if fetch.IsTransient(err) {
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
