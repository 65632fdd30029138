package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/team"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
)

type fakeTeamProvider struct {
	rankings    []team.Ranking
	rankingsErr error
	teamRaw     json.RawMessage
	teamErr     error
	matchesRaw  []json.RawMessage
	matchesErr  error
	gotLimit    int
}

func (f *fakeTeamProvider) ListTeams(context.Context) ([]team.Ranking, error) {
	return f.rankings, f.rankingsErr
}

func (f *fakeTeamProvider) GetTeam(context.Context, string) (json.RawMessage, error) {
	return f.teamRaw, f.teamErr
}

func (f *fakeTeamProvider) ListTeamMatches(_ context.Context, _ string, limit int) ([]json.RawMessage, error) {
	f.gotLimit = limit
	return f.matchesRaw, f.matchesErr
}

func newTeamService(p *fakeTeamProvider) *TeamService {
	return NewTeamService(TeamServiceConfig{
		Provider: p,
		Now:      func() time.Time { return testNow },
	})
}

func TestTeamService_Rankings(t *testing.T) {
	t.Parallel()

	provider := &fakeTeamProvider{rankings: []team.Ranking{{TeamID: 1}}}
	svc := newTeamService(provider)
	got, err := svc.Rankings(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("got %+v err %v", got, err)
	}

	provider = &fakeTeamProvider{rankingsErr: &fetch.StatusError{StatusCode: 503}}
	svc = newTeamService(provider)
	if _, err := svc.Rankings(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestTeamService_Profile(t *testing.T) {
	t.Parallel()

	provider := &fakeTeamProvider{
		teamRaw: json.RawMessage(`{"team_id": 42, "name": "Spirit", "rating": 1450.5}`),
		matchesRaw: []json.RawMessage{
			json.RawMessage(`{"match_id": 1, "radiant_win": true}`),
			json.RawMessage(`{"match_id": 2}`),
		},
	}
	svc := newTeamService(provider)

	got, err := svc.Profile(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Team.ID == nil || *got.Team.ID != 42 {
		t.Fatalf("team = %+v", got.Team)
	}
	if len(got.RecentMatches) != 2 || got.RecentMatches[0].MatchID != 1 {
		t.Fatalf("recent matches = %+v", got.RecentMatches)
	}
	if provider.gotLimit != profileHistoryLimit {
		t.Fatalf("history limit = %d", provider.gotLimit)
	}
}

func TestTeamService_ProfileWithoutID(t *testing.T) {
	t.Parallel()

	svc := newTeamService(&fakeTeamProvider{})
	if _, err := svc.Profile(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestTeamService_ProfileTeamFailureSurfaces(t *testing.T) {
	t.Parallel()

	provider := &fakeTeamProvider{teamErr: &fetch.StatusError{StatusCode: 502}}
	svc := newTeamService(provider)
	if _, err := svc.Profile(context.Background(), "42"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestTeamService_ProfileHistoryFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &fakeTeamProvider{
		teamRaw:    json.RawMessage(`{"team_id": 42}`),
		matchesErr: errors.New("history down"),
	}
	svc := newTeamService(provider)
	got, err := svc.Profile(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.RecentMatches) != 0 {
		t.Fatalf("recent matches = %+v", got.RecentMatches)
	}
}

func TestTeamService_SnapshotBestEffort(t *testing.T) {
	t.Parallel()

	t.Run("both succeed", func(t *testing.T) {
		provider := &fakeTeamProvider{
			teamRaw: json.RawMessage(`{"team_id": 42}`),
			matchesRaw: []json.RawMessage{
				json.RawMessage(`{"match_id": 1}`), json.RawMessage(`{"match_id": 2}`),
				json.RawMessage(`{"match_id": 3}`), json.RawMessage(`{"match_id": 4}`),
				json.RawMessage(`{"match_id": 5}`), json.RawMessage(`{"match_id": 6}`),
			},
		}
		svc := newTeamService(provider)
		got, err := svc.Snapshot(context.Background(), "42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.RecentMatches) != snapshotHistoryLimit {
			t.Fatalf("recent matches = %d, want cap of %d", len(got.RecentMatches), snapshotHistoryLimit)
		}
		if got.FetchedAt != testNow.UnixMilli() {
			t.Fatalf("fetchedAt = %d", got.FetchedAt)
		}
	})

	t.Run("total outage still renders", func(t *testing.T) {
		provider := &fakeTeamProvider{
			teamErr:    errors.New("down"),
			matchesErr: errors.New("down"),
		}
		svc := newTeamService(provider)
		got, err := svc.Snapshot(context.Background(), "42")
		if err != nil {
			t.Fatalf("snapshot must never error: %v", err)
		}
		if got.Team != nil {
			t.Fatal("team must be null on failure")
		}
		if got.RecentMatches == nil || len(got.RecentMatches) != 0 {
			t.Fatalf("recent matches = %v, want empty list", got.RecentMatches)
		}
	})
}
