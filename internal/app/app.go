package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nikdesigns/esports-track/external/opendota"
	"github.com/nikdesigns/esports-track/external/pandascore"
	"github.com/nikdesigns/esports-track/external/stratz"
	"github.com/nikdesigns/esports-track/internal/config"
	"github.com/nikdesigns/esports-track/internal/domain/hero"
	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/domain/team"
	"github.com/nikdesigns/esports-track/internal/domain/videogame"
	"github.com/nikdesigns/esports-track/internal/interfaces/httpapi"
	"github.com/nikdesigns/esports-track/internal/platform/cache"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	var mirror cache.Mirror
	if cfg.CacheMirrorEnabled {
		fileMirror, err := cache.NewFileMirror(cfg.CacheDir, logger)
		if err != nil {
			return nil, fmt.Errorf("build cache mirror: %w", err)
		}
		mirror = fileMirror
	}

	pandaScore := pandascore.NewClient(pandascore.ClientConfig{
		BaseURL:        cfg.PandaScoreBaseURL,
		Token:          cfg.PandaScoreAPIKey,
		Timeout:        cfg.PandaScoreTimeout,
		MaxRetries:     cfg.PandaScoreMaxRetries,
		BackoffBase:    cfg.UpstreamBackoffBase,
		Logger:         logger,
		CircuitBreaker: cfg.PandaScoreCircuit,
	})
	stratzClient := stratz.NewClient(stratz.ClientConfig{
		APIURL:         cfg.StratzAPIURL,
		Token:          cfg.StratzAPIKey,
		Timeout:        cfg.StratzTimeout,
		MaxRetries:     cfg.StratzMaxRetries,
		BackoffBase:    cfg.UpstreamBackoffBase,
		Logger:         logger,
		CircuitBreaker: cfg.StratzCircuit,
	})
	openDota := opendota.NewClient(opendota.ClientConfig{
		BaseURL:        cfg.OpenDotaBaseURL,
		Timeout:        cfg.OpenDotaTimeout,
		MaxRetries:     cfg.OpenDotaMaxRetries,
		BackoffBase:    cfg.UpstreamBackoffBase,
		Logger:         logger,
		CircuitBreaker: cfg.OpenDotaCircuit,
	})

	matchSvc := usecase.NewMatchService(usecase.MatchServiceConfig{
		Commercial: pandaScore,
		GraphQL:    stratzClient,
		Fallback:   openDota,
		Cache:      newStore[[]match.Summary](cfg, cfg.CacheTTLMatches, mirror),
		Logger:     logger,
	})
	heroSvc := usecase.NewHeroService(usecase.HeroServiceConfig{
		Provider:   openDota,
		MetaCache:  newStore[[]hero.Meta](cfg, cfg.CacheTTLHeroes, mirror),
		StatsCache: newStore[[]hero.Stat](cfg, cfg.CacheTTLHeroStats, mirror),
		Logger:     logger,
	})
	teamSvc := usecase.NewTeamService(usecase.TeamServiceConfig{
		Provider:      openDota,
		RankingsCache: newStore[[]team.Ranking](cfg, cfg.CacheTTLRankings, mirror),
		ProfileCache:  newStore[team.Profile](cfg, cfg.CacheTTLTeams, mirror),
		SnapshotCache: newStore[team.Snapshot](cfg, cfg.CacheTTLTeams, mirror),
		Logger:        logger,
	})
	videogameSvc := usecase.NewVideogameService(usecase.VideogameServiceConfig{
		Provider: pandaScore,
		Cache:    newStore[[]videogame.Game](cfg, cfg.CacheTTLVideogames, mirror),
		Logger:   logger,
	})

	handler := httpapi.NewHandler(matchSvc, heroSvc, teamSvc, videogameSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func newStore[V any](cfg config.Config, ttl time.Duration, mirror cache.Mirror) *cache.Store[V] {
	if !cfg.CacheEnabled {
		return cache.NewDisabledStore[V]()
	}
	if mirror != nil {
		return cache.NewMirroredStore[V](ttl, mirror)
	}
	return cache.NewStore[V](ttl)
}
