package pandascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/domain/videogame"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

const defaultBaseURL = "https://api.pandascore.co"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client wraps the commercial match feed. All calls require a token;
// Configured reports whether one is present.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	token   string
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
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
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

type ListParams struct {
	Page    int
	PerPage int
	Status  match.Status
}

// ListMatches queries the provider with its native pagination and status
// filter, scoped to the supported title.
func (c *Client) ListMatches(ctx context.Context, params ListParams) ([]match.Summary, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("page", strconv.Itoa(params.Page))
	if params.Status != "" {
		query.Set("filter[status]", string(params.Status))
	}
	query.Set("filter[videogame]", match.VideogameSlug)

	var items []json.RawMessage
	endpoint := c.baseURL + "/matches?" + query.Encode()
	if _, err := c.fetch.GetJSON(ctx, endpoint, c.header(), &items); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Summary, 0, len(items))
	for _, item := range items {
		out = append(out, NormalizeMatch(item, time.Now()))
	}
	return out, nil
}

// GetMatch fetches one match by id, forwarding an optional include
// expansion list untouched.
func (c *Client) GetMatch(ctx context.Context, id string, include string) (match.Summary, error) {
	endpoint := c.baseURL + "/matches/" + url.PathEscape(id)
	if include != "" {
		endpoint += "?include=" + url.QueryEscape(include)
	}

	var item json.RawMessage
	if _, err := c.fetch.GetJSON(ctx, endpoint, c.header(), &item); err != nil {
		return match.Summary{}, fmt.Errorf("get match id=%s: %w", id, err)
	}
	return NormalizeMatch(item, time.Now()), nil
}

// ListVideogames returns every title the provider knows, sorted by name.
func (c *Client) ListVideogames(ctx context.Context) ([]videogame.Game, error) {
	endpoint := c.baseURL + "/videogames?" + url.Values{
		"sort":     {"name"},
		"per_page": {"200"},
	}.Encode()

	var items []struct {
		ID   int64   `json:"id"`
		Name *string `json:"name"`
		Slug *string `json:"slug"`
	}
	if _, err := c.fetch.GetJSON(ctx, endpoint, c.header(), &items); err != nil {
		return nil, fmt.Errorf("list videogames: %w", err)
	}

	games := make([]videogame.Game, 0, len(items))
	for _, item := range items {
		game := videogame.Game{ID: item.ID}
		if item.Name != nil {
			game.Name = *item.Name
		}
		switch {
		case item.Slug != nil:
			game.Slug = *item.Slug
		case item.Name != nil:
			game.Slug = *item.Name
		}
		games = append(games, game)
	}
	videogame.SortByName(games)
	return games, nil
}

func (c *Client) header() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)
	return header
}
