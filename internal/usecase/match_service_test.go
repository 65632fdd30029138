package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nikdesigns/esports-track/external/pandascore"
	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type fakeCommercial struct {
	configured bool
	matches    []match.Summary
	err        error
	listCalls  int
	getErr     error
	getMatch   match.Summary
}

func (f *fakeCommercial) Configured() bool { return f.configured }

func (f *fakeCommercial) ListMatches(_ context.Context, _ pandascore.ListParams) ([]match.Summary, error) {
	f.listCalls++
	return f.matches, f.err
}

func (f *fakeCommercial) GetMatch(_ context.Context, _, _ string) (match.Summary, error) {
	return f.getMatch, f.getErr
}

type fakeGraphQL struct {
	configured bool
	matches    []match.Summary
	err        error
	listCalls  int
}

func (f *fakeGraphQL) Configured() bool { return f.configured }

func (f *fakeGraphQL) ListMatches(_ context.Context, _, _ int) ([]match.Summary, error) {
	f.listCalls++
	return f.matches, f.err
}

type fakeFallback struct {
	matches   []match.Summary
	err       error
	gotLimits []int
	listCalls int
}

func (f *fakeFallback) ListProMatches(_ context.Context, limit int) ([]match.Summary, error) {
	f.listCalls++
	f.gotLimits = append(f.gotLimits, limit)
	return f.matches, f.err
}

func upcoming(id int64, at time.Time) match.Summary {
	return match.Summary{ID: id, Status: match.StatusNotStarted, ScheduledAt: &at}
}

func newService(c *fakeCommercial, g *fakeGraphQL, f *fakeFallback) *MatchService {
	return NewMatchService(MatchServiceConfig{
		Commercial: c,
		GraphQL:    g,
		Fallback:   f,
		Now:        func() time.Time { return testNow },
	})
}

func TestMatchService_CommercialShortCircuits(t *testing.T) {
	t.Parallel()

	commercial := &fakeCommercial{configured: true, matches: []match.Summary{{ID: 1, Status: match.StatusRunning}}}
	graphql := &fakeGraphQL{configured: true}
	fallback := &fakeFallback{}
	svc := newService(commercial, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("got %+v", got)
	}
	if graphql.listCalls != 0 || fallback.listCalls != 0 {
		t.Fatal("lower priority providers must not run after a non-empty commercial result")
	}
}

func TestMatchService_CommercialFailureFallsThrough(t *testing.T) {
	t.Parallel()

	commercial := &fakeCommercial{configured: true, err: fmt.Errorf("boom")}
	graphql := &fakeGraphQL{configured: true, matches: []match.Summary{{ID: 2, Status: match.StatusRunning, BeginAt: &testNow}}}
	fallback := &fakeFallback{}
	svc := newService(commercial, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestMatchService_CombinesUpcomingAcrossProviders(t *testing.T) {
	t.Parallel()

	soon := testNow.Add(time.Hour)
	later := testNow.Add(3 * time.Hour)
	between := testNow.Add(2 * time.Hour)

	graphql := &fakeGraphQL{configured: true, matches: []match.Summary{
		upcoming(101, later),
		upcoming(102, soon),
	}}
	fallback := &fakeFallback{matches: []match.Summary{
		upcoming(103, between),
		upcoming(102, soon), // duplicate of a higher priority entry
	}}
	svc := newService(&fakeCommercial{}, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{Status: match.StatusNotStarted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantOrder := []int64{102, 103, 101}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("order = %v at %d, want %v", got[i].ID, i, wantOrder)
		}
		if got[i].Status != match.StatusNotStarted {
			t.Fatalf("status = %q", got[i].Status)
		}
	}
}

func TestMatchService_OversizedFallbackLimit(t *testing.T) {
	t.Parallel()

	t.Run("upcoming floor", func(t *testing.T) {
		fallback := &fakeFallback{}
		svc := newService(&fakeCommercial{}, &fakeGraphQL{}, fallback)
		svc.List(context.Background(), ListMatchesInput{Page: 1, PerPage: 12, Status: match.StatusNotStarted})
		if len(fallback.gotLimits) != 1 || fallback.gotLimits[0] != 80 {
			t.Fatalf("limits = %v, want the floor of 80 for upcoming", fallback.gotLimits)
		}
	})

	t.Run("upcoming deep page", func(t *testing.T) {
		fallback := &fakeFallback{}
		svc := newService(&fakeCommercial{}, &fakeGraphQL{}, fallback)
		svc.List(context.Background(), ListMatchesInput{Page: 5, PerPage: 12, Status: match.StatusNotStarted})
		if len(fallback.gotLimits) != 1 || fallback.gotLimits[0] != 240 {
			t.Fatalf("limits = %v, want page*perPage*4", fallback.gotLimits)
		}
	})

	t.Run("combined enrichment then recent window", func(t *testing.T) {
		fallback := &fakeFallback{}
		svc := newService(&fakeCommercial{}, &fakeGraphQL{}, fallback)
		svc.List(context.Background(), ListMatchesInput{Page: 1, PerPage: 12})
		want := []int{40, 12}
		if len(fallback.gotLimits) != 2 || fallback.gotLimits[0] != want[0] || fallback.gotLimits[1] != want[1] {
			t.Fatalf("limits = %v, want %v", fallback.gotLimits, want)
		}
	})
}

func TestMatchService_CombinedListingExcludesRecentResults(t *testing.T) {
	t.Parallel()

	began := testNow.Add(-2 * time.Hour)
	graphql := &fakeGraphQL{configured: true, matches: []match.Summary{
		{ID: 21, Status: match.StatusRunning, BeginAt: &testNow},
	}}
	fallback := &fakeFallback{matches: []match.Summary{
		{ID: 31, Status: match.StatusFinished, BeginAt: &began},
		upcoming(32, testNow.Add(time.Hour)),
	}}
	svc := newService(&fakeCommercial{}, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []int64{32, 21}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %+v, the public feed may only enrich with upcoming rows", got)
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("order = %v at %d, want %v", got[i].ID, i, wantOrder)
		}
	}
	if fallback.listCalls != 1 {
		t.Fatalf("fallback calls = %d, no recent-window pass when the feed is non-empty", fallback.listCalls)
	}
}

func TestMatchService_EmptyCombinedFallsBackToRecentWindow(t *testing.T) {
	t.Parallel()

	earlier := testNow.Add(-4 * time.Hour)
	later := testNow.Add(-1 * time.Hour)
	graphql := &fakeGraphQL{configured: true}
	fallback := &fakeFallback{matches: []match.Summary{
		{ID: 41, Status: match.StatusFinished, BeginAt: &earlier},
		{ID: 42, Status: match.StatusFinished, BeginAt: &later},
	}}
	svc := newService(&fakeCommercial{}, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []int64{42, 41}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %+v, want the recent window when nothing else contributes", got)
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("order = %v at %d, want %v", got[i].ID, i, wantOrder)
		}
	}
	if fallback.listCalls != 2 {
		t.Fatalf("fallback calls = %d, want enrichment plus recent-window pass", fallback.listCalls)
	}
}

func TestMatchService_UnconfiguredGraphQLIsSkipped(t *testing.T) {
	t.Parallel()

	graphql := &fakeGraphQL{configured: false, matches: []match.Summary{upcoming(61, testNow.Add(time.Hour))}}
	fallback := &fakeFallback{matches: []match.Summary{upcoming(62, testNow.Add(time.Hour))}}
	svc := newService(&fakeCommercial{}, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{Status: match.StatusNotStarted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graphql.listCalls != 0 {
		t.Fatal("an unconfigured GraphQL feed must never be queried")
	}
	if len(got) != 1 || got[0].ID != 62 {
		t.Fatalf("got %+v", got)
	}
}

func TestMatchService_AllProvidersFailReturnsEmpty(t *testing.T) {
	t.Parallel()

	commercial := &fakeCommercial{configured: true, err: fmt.Errorf("down")}
	graphql := &fakeGraphQL{configured: true, err: fmt.Errorf("down")}
	fallback := &fakeFallback{err: fmt.Errorf("down")}
	svc := newService(commercial, graphql, fallback)

	got, err := svc.List(context.Background(), ListMatchesInput{})
	if err != nil {
		t.Fatalf("a full outage must not surface an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %+v", got)
	}

	// the empty outage result must not be served from cache; each listing
	// attempts both the enrichment and the recent-window pass
	svc.List(context.Background(), ListMatchesInput{})
	if fallback.listCalls != 4 {
		t.Fatalf("fallback calls = %d, outage results must not be cached", fallback.listCalls)
	}
}

func TestMatchService_SuccessfulPageIsCached(t *testing.T) {
	t.Parallel()

	fallback := &fakeFallback{matches: []match.Summary{upcoming(5, testNow.Add(time.Hour))}}
	svc := newService(&fakeCommercial{}, &fakeGraphQL{}, fallback)

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background(), ListMatchesInput{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fallback.listCalls != 1 {
		t.Fatalf("fallback calls = %d, want 1 cached read", fallback.listCalls)
	}
}

func TestMatchService_Get(t *testing.T) {
	t.Parallel()

	t.Run("missing key", func(t *testing.T) {
		svc := newService(&fakeCommercial{}, &fakeGraphQL{}, &fakeFallback{})
		_, err := svc.Get(context.Background(), "1", "")
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newService(&fakeCommercial{configured: true}, &fakeGraphQL{}, &fakeFallback{})
		_, err := svc.Get(context.Background(), "", "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("upstream 404", func(t *testing.T) {
		commercial := &fakeCommercial{configured: true, getErr: &fetch.StatusError{StatusCode: 404}}
		svc := newService(commercial, &fakeGraphQL{}, &fakeFallback{})
		_, err := svc.Get(context.Background(), "9", "")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("upstream 500", func(t *testing.T) {
		commercial := &fakeCommercial{configured: true, getErr: &fetch.StatusError{StatusCode: 500}}
		svc := newService(commercial, &fakeGraphQL{}, &fakeFallback{})
		_, err := svc.Get(context.Background(), "9", "")
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		commercial := &fakeCommercial{configured: true, getMatch: match.Summary{ID: 77}}
		svc := newService(commercial, &fakeGraphQL{}, &fakeFallback{})
		got, err := svc.Get(context.Background(), "77", "opponents")
		if err != nil || got.ID != 77 {
			t.Fatalf("got %+v err %v", got, err)
		}
	})
}
