package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

// ErrTransient marks outcomes worth retrying: network errors, timeouts,
// 5xx and 429 responses. Everything else is terminal on first sight.
var ErrTransient = crerr.New("transient upstream failure")

const maxResponseBytes = 6 << 20

// StatusError is a terminal non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d body=%s", e.StatusCode, e.Body)
}

// AsStatusError unwraps a StatusError from err if one is present.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if crerr.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// IsTransient reports whether err only ever produced retryable outcomes.
func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient)
}

// IsTimeout reports whether err ended in a deadline/cancellation.
func IsTimeout(err error) bool {
	return crerr.Is(err, context.DeadlineExceeded)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client issues timed, retried JSON requests against one upstream
// provider. Retries apply only to transient outcomes with exponential
// backoff; a breaker rejects calls while the provider is misbehaving and
// a singleflight collapses identical concurrent GETs.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	backoffBase    time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		backoffBase:    backoffBase,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// GetJSON fetches url and decodes the response body into target, returning
// the raw payload. Identical concurrent GETs share one upstream request.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, target any) ([]byte, error) {
	out, err, _ := c.flight.Do(url, func() (any, error) {
		return c.execute(ctx, http.MethodGet, url, header, nil)
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, decodeInto(raw, target)
}

// PostJSON sends payload as a JSON body and decodes the response into
// target. POSTs are never deduplicated.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, payload any, target any) ([]byte, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	raw, err := c.execute(ctx, http.MethodPost, url, header, body)
	if err != nil {
		return nil, err
	}
	return raw, decodeInto(raw, target)
}

func (c *Client) execute(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected upstream request", "url", url, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: provider is temporarily unavailable", ErrTransient)
		}
	}

	raw, err := c.attemptLoop(ctx, method, url, header, body)
	if c.circuitEnabled {
		if err != nil && IsTransient(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) attemptLoop(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		raw, retryable, attemptErr := c.attempt(req)
		if attemptErr == nil {
			return raw, nil
		}
		lastErr = attemptErr
		c.logger.WarnContext(ctx, "upstream attempt failed",
			"url", url,
			"attempt", attempt,
			"retryable", retryable,
			"error", attemptErr,
		)
		if !retryable || attempt == c.maxRetries+1 {
			break
		}

		backoff := c.backoffBase * (1 << (attempt - 1))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTransient, ctx.Err())
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("upstream request failed")
	}
	return nil, lastErr
}

func (c *Client) attempt(req *http.Request) (raw []byte, retryable bool, err error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, true, fmt.Errorf("%w: %w", ErrTransient, req.Context().Err())
		}
		return nil, true, fmt.Errorf("%w: send request: %w", ErrTransient, err)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, true, fmt.Errorf("%w: read response body: %v", ErrTransient, readErr)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, false, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
	if isRetryableStatus(resp.StatusCode) {
		return nil, true, fmt.Errorf("%w: %w", ErrTransient, statusErr)
	}
	return nil, false, statusErr
}

func decodeInto(raw []byte, target any) error {
	if target == nil {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func isRetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

const maxBodyInError = 512

func abbreviateBody(raw []byte) string {
	if len(raw) <= maxBodyInError {
		return string(raw)
	}
	return string(raw[:maxBodyInError]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
