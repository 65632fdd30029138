package stratz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

const recentMatchesQuery = `
query RecentMatches($limit: Int!, $offset: Int!) {
  matches(limit: $limit, offset: $offset, videogameSlug: "dota2") {
    id
    name
    startAt
    scheduledAt
    status
    league { id name imageUrl }
    teams { id name acronym logoUrl }
    scoreA
    scoreB
    draft { picks bans }
    maps { mapName results { teamAScore teamBScore } }
    duration
  }
}`

type ClientConfig struct {
	HTTPClient     *http.Client
	APIURL         string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client queries the GraphQL feed. A client without an API URL is treated
// as not configured and skipped by callers.
type Client struct {
	fetch  *fetch.Client
	apiURL string
	token  string
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		fetch: fetch.NewClient(fetch.ClientConfig{
			HTTPClient:     cfg.HTTPClient,
			Timeout:        timeout,
			MaxRetries:     cfg.MaxRetries,
			BackoffBase:    cfg.BackoffBase,
			Logger:         cfg.Logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
		apiURL: strings.TrimSpace(cfg.APIURL),
		token:  strings.TrimSpace(cfg.Token),
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.apiURL != ""
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type matchesEnvelope struct {
	Data struct {
		Matches []json.RawMessage `json:"matches"`
	} `json:"data"`
	Matches []json.RawMessage `json:"matches"`
}

// ListMatches fetches one window of recent matches. Offset is computed by
// the caller as (page-1)*perPage.
func (c *Client) ListMatches(ctx context.Context, limit, offset int) ([]match.Summary, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	body := graphQLRequest{
		Query:     recentMatchesQuery,
		Variables: map[string]any{"limit": limit, "offset": offset},
	}

	var envelope matchesEnvelope
	if _, err := c.fetch.PostJSON(ctx, c.apiURL, header, body, &envelope); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	nodes := envelope.Data.Matches
	if nodes == nil {
		nodes = envelope.Matches
	}

	out := make([]match.Summary, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, NormalizeMatch(node, time.Now()))
	}
	return out, nil
}
