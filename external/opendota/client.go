package opendota

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikdesigns/esports-track/internal/domain/hero"
	"github.com/nikdesigns/esports-track/internal/domain/match"
	"github.com/nikdesigns/esports-track/internal/domain/team"
	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

const defaultBaseURL = "https://api.opendota.com/api"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client wraps the public fallback feed. No authentication is required.
type Client struct {
	fetch   *fetch.Client
	baseURL string

	// assetBase prefixes the relative hero image paths the feed returns.
	assetBase string
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
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
		baseURL:   baseURL,
		assetBase: strings.TrimSuffix(baseURL, "/api"),
	}
}

// ListProMatches fetches up to limit recent professional matches.
func (c *Client) ListProMatches(ctx context.Context, limit int) ([]match.Summary, error) {
	endpoint := c.baseURL + "/proMatches?limit=" + strconv.Itoa(limit)

	var items []json.RawMessage
	if _, err := c.fetch.GetJSON(ctx, endpoint, nil, &items); err != nil {
		return nil, fmt.Errorf("list pro matches: %w", err)
	}

	out := make([]match.Summary, 0, len(items))
	for _, item := range items {
		out = append(out, NormalizeProMatch(item, time.Now()))
	}
	return out, nil
}

type heroPayload struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name"`
	LocalizedName *string `json:"localized_name"`
	Img           *string `json:"img"`
	Icon          *string `json:"icon"`
}

// ListHeroes returns the hero catalogue with absolute image URLs.
func (c *Client) ListHeroes(ctx context.Context) ([]hero.Meta, error) {
	var items []heroPayload
	if _, err := c.fetch.GetJSON(ctx, c.baseURL+"/heroes", nil, &items); err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}

	out := make([]hero.Meta, 0, len(items))
	for _, item := range items {
		out = append(out, hero.Meta{
			ID:            item.ID,
			Name:          item.Name,
			LocalizedName: item.LocalizedName,
			Img:           item.Img,
			Icon:          item.Icon,
			ImgFull:       c.absoluteAsset(item.Img),
			IconFull:      c.absoluteAsset(item.Icon),
		})
	}
	return out, nil
}

// ListHeroStats returns per-hero pick/win aggregates without imagery; the
// caller joins catalogue metadata.
func (c *Client) ListHeroStats(ctx context.Context) ([]hero.Stat, error) {
	var items []json.RawMessage
	if _, err := c.fetch.GetJSON(ctx, c.baseURL+"/heroStats", nil, &items); err != nil {
		return nil, fmt.Errorf("list hero stats: %w", err)
	}

	out := make([]hero.Stat, 0, len(items))
	for _, item := range items {
		out = append(out, NormalizeHeroStat(item))
	}
	return out, nil
}

// ListTeams returns the team rating table, highest rated first as the feed
// orders it.
func (c *Client) ListTeams(ctx context.Context) ([]team.Ranking, error) {
	var items []team.Ranking
	if _, err := c.fetch.GetJSON(ctx, c.baseURL+"/teams", nil, &items); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

// GetTeam fetches one team's raw profile payload.
func (c *Client) GetTeam(ctx context.Context, id string) (json.RawMessage, error) {
	endpoint := c.baseURL + "/teams/" + url.PathEscape(id)

	var raw json.RawMessage
	if _, err := c.fetch.GetJSON(ctx, endpoint, nil, &raw); err != nil {
		return nil, fmt.Errorf("get team id=%s: %w", id, err)
	}
	return raw, nil
}

// ListTeamMatches fetches a team's recent match rows, raw.
func (c *Client) ListTeamMatches(ctx context.Context, id string, limit int) ([]json.RawMessage, error) {
	endpoint := c.baseURL + "/teams/" + url.PathEscape(id) + "/matches?limit=" + strconv.Itoa(limit)

	var items []json.RawMessage
	if _, err := c.fetch.GetJSON(ctx, endpoint, nil, &items); err != nil {
		return nil, fmt.Errorf("list team matches id=%s: %w", id, err)
	}
	return items, nil
}

func (c *Client) absoluteAsset(path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	full := c.assetBase + *path
	return &full
}
