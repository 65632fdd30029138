package pandascore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/match"
)

func TestClient_ListMatches_QueryTranslation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("per_page") != "12" || q.Get("page") != "2" {
			t.Errorf("pagination not translated: %v", q)
		}
		if q.Get("filter[status]") != "not_started" {
			t.Errorf("status filter = %q", q.Get("filter[status]"))
		}
		if q.Get("filter[videogame]") != "dota2" {
			t.Errorf("videogame filter = %q", q.Get("filter[videogame]"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[{"id": 7, "status": "not_started", "scheduled_at": "2026-08-21T10:00:00Z"}]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret", BackoffBase: time.Millisecond})
	got, err := client.ListMatches(context.Background(), ListParams{Page: 2, PerPage: 12, Status: match.StatusNotStarted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 || got[0].Status != match.StatusNotStarted {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestClient_GetMatch_ForwardsInclude(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/555" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("include") != "opponents,games" {
			t.Errorf("include = %q", r.URL.Query().Get("include"))
		}
		w.Write([]byte(`{"id": 555, "status": "finished"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret", BackoffBase: time.Millisecond})
	got, err := client.GetMatch(context.Background(), "555", "opponents,games")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 555 {
		t.Fatalf("id = %d", got.ID)
	}
}

func TestClient_ListVideogames_SlugFallsBackToName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sort") != "name" || q.Get("per_page") != "200" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[
			{"id": 2, "name": "LoL", "slug": "league-of-legends"},
			{"id": 1, "name": "Dota 2"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "secret", BackoffBase: time.Millisecond})
	games, err := client.ListVideogames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len = %d", len(games))
	}
	if games[0].Name != "Dota 2" || games[0].Slug != "Dota 2" {
		t.Fatalf("expected name-sorted list with slug fallback, got %+v", games[0])
	}
}

func TestClient_Configured(t *testing.T) {
	t.Parallel()

	if NewClient(ClientConfig{Token: "  "}).Configured() {
		t.Fatal("blank token must not count as configured")
	}
	if !NewClient(ClientConfig{Token: "k"}).Configured() {
		t.Fatal("token present must count as configured")
	}
}
