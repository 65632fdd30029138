package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/nikdesigns/esports-track/internal/domain/hero"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
)

type fakeHeroProvider struct {
	heroes     []hero.Meta
	heroesErr  error
	heroCalls  int
	stats      []hero.Stat
	statsErr   error
	statsCalls int
}

func (f *fakeHeroProvider) ListHeroes(context.Context) ([]hero.Meta, error) {
	f.heroCalls++
	return f.heroes, f.heroesErr
}

func (f *fakeHeroProvider) ListHeroStats(context.Context) ([]hero.Stat, error) {
	f.statsCalls++
	return f.stats, f.statsErr
}

func metaRow(id int64, name, imgFull string) hero.Meta {
	return hero.Meta{ID: id, Name: &name, ImgFull: &imgFull}
}

func TestHeroService_ListHeroesCaches(t *testing.T) {
	t.Parallel()

	provider := &fakeHeroProvider{heroes: []hero.Meta{metaRow(1, "medusa", "http://img/1")}}
	svc := NewHeroService(HeroServiceConfig{Provider: provider})

	for i := 0; i < 3; i++ {
		heroes, err := svc.ListHeroes(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(heroes) != 1 {
			t.Fatalf("len = %d", len(heroes))
		}
	}
	if provider.heroCalls != 1 {
		t.Fatalf("provider calls = %d", provider.heroCalls)
	}
}

func TestHeroService_ListHeroesUpstreamErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-OK response", func(t *testing.T) {
		provider := &fakeHeroProvider{heroesErr: &fetch.StatusError{StatusCode: 503, Body: "down"}}
		svc := NewHeroService(HeroServiceConfig{Provider: provider})
		_, err := svc.ListHeroes(context.Background())
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		provider := &fakeHeroProvider{heroesErr: context.DeadlineExceeded}
		svc := NewHeroService(HeroServiceConfig{Provider: provider})
		_, err := svc.ListHeroes(context.Background())
		if !errors.Is(err, ErrUpstreamTimeout) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestHeroService_ListHeroStatsJoinsMeta(t *testing.T) {
	t.Parallel()

	id2 := int64(2)
	axe := "axe"
	provider := &fakeHeroProvider{
		heroes: []hero.Meta{
			metaRow(1, "medusa", "http://img/medusa"),
			metaRow(2, "axe", "http://img/axe"),
		},
		stats: []hero.Stat{
			{Name: &axe, Pick: 10, Win: 5, WinRate: 50},            // joined by name, no id
			{ID: &id2, Pick: 100, Win: 55, WinRate: 55},            // joined by id
			{Pick: 1, Win: 1, WinRate: 100},                        // no join key
		},
	}
	svc := NewHeroService(HeroServiceConfig{Provider: provider})

	stats, err := svc.ListHeroStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("len = %d", len(stats))
	}
	if stats[0].Pick != 100 {
		t.Fatalf("expected pick-desc order, got pick=%d first", stats[0].Pick)
	}
	if stats[0].ImgFull == nil || *stats[0].ImgFull != "http://img/axe" {
		t.Fatalf("id join failed: %v", stats[0].ImgFull)
	}
	if stats[1].ImgFull == nil || *stats[1].ImgFull != "http://img/axe" {
		t.Fatalf("name join failed: %v", stats[1].ImgFull)
	}
	if stats[2].ImgFull != nil {
		t.Fatal("unjoinable row must keep nil imagery")
	}
}

func TestHeroService_StatsSurviveMetaFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeHeroProvider{
		heroesErr: &fetch.StatusError{StatusCode: 500},
		stats:     []hero.Stat{{Pick: 100, Win: 55, WinRate: 55}},
	}
	svc := NewHeroService(HeroServiceConfig{Provider: provider})

	stats, err := svc.ListHeroStats(context.Background())
	if err != nil {
		t.Fatalf("catalogue failure must not fail the stats request: %v", err)
	}
	if len(stats) != 1 || stats[0].WinRate != 55 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestHeroService_StatsFailureSurfaces(t *testing.T) {
	t.Parallel()

	provider := &fakeHeroProvider{statsErr: &fetch.StatusError{StatusCode: 502}}
	svc := NewHeroService(HeroServiceConfig{Provider: provider})
	_, err := svc.ListHeroStats(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if provider.statsCalls != 1 {
		t.Fatalf("stats calls = %d", provider.statsCalls)
	}

	// failures are not cached; a retry reaches the provider again
	svc.ListHeroStats(context.Background())
	if provider.statsCalls != 2 {
		t.Fatalf("stats calls = %d, failures must not be cached", provider.statsCalls)
	}
}
