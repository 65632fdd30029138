package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/videogame"
	"github.com/nikdesigns/esports-track/internal/platform/cache"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

type VideogameProvider interface {
	Configured() bool
	ListVideogames(ctx context.Context) ([]videogame.Game, error)
}

type VideogameServiceConfig struct {
	Provider VideogameProvider
	Cache    *cache.Store[[]videogame.Game]
	Logger   *logging.Logger
}

// VideogameService serves the commercial provider's title catalogue.
type VideogameService struct {
	provider VideogameProvider
	cache    *cache.Store[[]videogame.Game]
	logger   *logging.Logger
}

func NewVideogameService(cfg VideogameServiceConfig) *VideogameService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	store := cfg.Cache
	if store == nil {
		store = cache.NewStore[[]videogame.Game](time.Minute)
	}
	return &VideogameService{
		provider: cfg.Provider,
		cache:    store,
		logger:   logger,
	}
}

// List returns all known titles sorted by name.
func (s *VideogameService) List(ctx context.Context) ([]videogame.Game, error) {
	if s.provider == nil || !s.provider.Configured() {
		return nil, fmt.Errorf("%w: commercial feed key missing", ErrNotConfigured)
	}

	return s.cache.GetOrLoad(ctx, "videogames", func(ctx context.Context) ([]videogame.Game, error) {
		games, err := s.provider.ListVideogames(ctx)
		if err != nil {
			return nil, classifyUpstream("list videogames", err)
		}
		return games, nil
	})
}
