package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/nikdesigns/esports-track/external/opendota"
	"github.com/nikdesigns/esports-track/internal/domain/team"
	"github.com/nikdesigns/esports-track/internal/platform/cache"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

const (
	profileHistoryLimit  = 10
	snapshotHistoryLimit = 5
)

type TeamProvider interface {
	ListTeams(ctx context.Context) ([]team.Ranking, error)
	GetTeam(ctx context.Context, id string) (json.RawMessage, error)
	ListTeamMatches(ctx context.Context, id string, limit int) ([]json.RawMessage, error)
}

type TeamServiceConfig struct {
	Provider      TeamProvider
	RankingsCache *cache.Store[[]team.Ranking]
	ProfileCache  *cache.Store[team.Profile]
	SnapshotCache *cache.Store[team.Snapshot]
	Logger        *logging.Logger
	Now           func() time.Time
}

// TeamService serves the rating table and two team-detail variants: the
// normalized profile and the raw best-effort snapshot.
type TeamService struct {
	provider      TeamProvider
	rankingsCache *cache.Store[[]team.Ranking]
	profileCache  *cache.Store[team.Profile]
	snapshotCache *cache.Store[team.Snapshot]
	logger        *logging.Logger
	now           func() time.Time
}

func NewTeamService(cfg TeamServiceConfig) *TeamService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	rankingsCache := cfg.RankingsCache
	if rankingsCache == nil {
		rankingsCache = cache.NewStore[[]team.Ranking](5 * time.Minute)
	}
	profileCache := cfg.ProfileCache
	if profileCache == nil {
		profileCache = cache.NewStore[team.Profile](time.Minute)
	}
	snapshotCache := cfg.SnapshotCache
	if snapshotCache == nil {
		snapshotCache = cache.NewStore[team.Snapshot](time.Minute)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TeamService{
		provider:      cfg.Provider,
		rankingsCache: rankingsCache,
		profileCache:  profileCache,
		snapshotCache: snapshotCache,
		logger:        logger,
		now:           now,
	}
}

// Rankings returns the full rating table in provider order.
func (s *TeamService) Rankings(ctx context.Context) ([]team.Ranking, error) {
	return s.rankingsCache.GetOrLoad(ctx, "rankings", func(ctx context.Context) ([]team.Ranking, error) {
		rankings, err := s.provider.ListTeams(ctx)
		if err != nil {
			return nil, classifyUpstream("list teams", err)
		}
		return rankings, nil
	})
}

// Profile returns a normalized team with its recent history. The profile
// fetch is load-bearing; a history failure degrades to an empty list.
func (s *TeamService) Profile(ctx context.Context, id string) (team.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return team.Profile{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	return s.profileCache.GetOrLoad(ctx, "team:"+id, func(ctx context.Context) (team.Profile, error) {
		var (
			rawTeam    json.RawMessage
			teamErr    error
			rawMatches []json.RawMessage
			matchesErr error
		)

		var wg conc.WaitGroup
		wg.Go(func() {
			rawTeam, teamErr = s.provider.GetTeam(ctx, id)
		})
		wg.Go(func() {
			rawMatches, matchesErr = s.provider.ListTeamMatches(ctx, id, profileHistoryLimit)
		})
		wg.Wait()

		if teamErr != nil {
			return team.Profile{}, classifyUpstream("get team", teamErr)
		}
		if matchesErr != nil {
			s.logger.WarnContext(ctx, "team history unavailable", "team_id", id, "error", matchesErr)
			rawMatches = nil
		}

		profile := team.Profile{
			Team:          opendota.NormalizeTeamInfo(rawTeam),
			RecentMatches: make([]team.RecentMatch, 0, len(rawMatches)),
		}
		for _, raw := range rawMatches {
			profile.RecentMatches = append(profile.RecentMatches, opendota.NormalizeRecentMatch(raw))
		}
		return profile, nil
	})
}

// Snapshot returns raw provider payloads, substituting nulls for whatever
// failed. It never errors.
func (s *TeamService) Snapshot(ctx context.Context, id string) (team.Snapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return team.Snapshot{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	snapshot, err := s.snapshotCache.GetOrLoad(ctx, "teams:"+id, func(ctx context.Context) (team.Snapshot, error) {
		var (
			rawTeam    json.RawMessage
			teamErr    error
			rawMatches []json.RawMessage
			matchesErr error
		)

		var wg conc.WaitGroup
		wg.Go(func() {
			rawTeam, teamErr = s.provider.GetTeam(ctx, id)
		})
		wg.Go(func() {
			rawMatches, matchesErr = s.provider.ListTeamMatches(ctx, id, snapshotHistoryLimit)
		})
		wg.Wait()

		if teamErr != nil {
			s.logger.WarnContext(ctx, "team snapshot profile unavailable", "team_id", id, "error", teamErr)
			rawTeam = nil
		}
		if matchesErr != nil {
			s.logger.WarnContext(ctx, "team snapshot history unavailable", "team_id", id, "error", matchesErr)
			rawMatches = nil
		}

		snap := buildSnapshot(rawTeam, rawMatches, s.now())
		if teamErr != nil && matchesErr != nil {
			// a full outage still renders, but never from cache
			return snap, errSnapshotUnavailable
		}
		return snap, nil
	})
	if err != nil {
		return buildSnapshot(nil, nil, s.now()), nil
	}
	return snapshot, nil
}

var errSnapshotUnavailable = fmt.Errorf("team snapshot providers unavailable")

func buildSnapshot(rawTeam json.RawMessage, rawMatches []json.RawMessage, now time.Time) team.Snapshot {
	if len(rawMatches) > snapshotHistoryLimit {
		rawMatches = rawMatches[:snapshotHistoryLimit]
	}
	if rawMatches == nil {
		rawMatches = []json.RawMessage{}
	}
	return team.Snapshot{
		Team:          rawTeam,
		RecentMatches: rawMatches,
		FetchedAt:     now.UnixMilli(),
	}
}
