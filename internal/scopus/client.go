// Package scopus is a small client for the Elsevier Scopus Search API used
// by the abstract harvester.
package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

const (
	// DefaultBaseURL is the Elsevier content API root.
	DefaultBaseURL = "https://api.elsevier.com/content"

	// DefaultRateLimit keeps well under the text mining key quota.
	DefaultRateLimit = 5.0

	DefaultBurstSize  = 5
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultPageSize   = 25

	apiKeyHeader = "X-ELS-APIKey"

	// accessProbePath is a full-text article only readable from a subscriber network.
	accessProbePath = "/article/doi/10.1016/j.actamat.2018.01.057"
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64
	BurstSize  int
	MaxRetries int
	RetryDelay time.Duration
	PageSize   int

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
}

// APIError is a non-success response from the Elsevier API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scopus: status %d", e.StatusCode)
	}
	return fmt.Sprintf("scopus: status %d: %s", e.StatusCode, e.Body)
}

// Client is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// New returns a client, or internalerr.ErrMissingAPIKey without a key.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scopus: %w", internalerr.ErrMissingAPIKey)
	}
	cfg.applyDefaults()

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstSize),
		log:     logging.OrNop(cfg.Logger),
	}, nil
}

// do sends a GET with the API key, waiting on the rate limiter and retrying
// 429 and 5xx responses.
func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt < c.cfg.MaxRetries {
				if err := sleep(ctx, c.cfg.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}

		delay := c.retryDelay(resp)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = &APIError{StatusCode: resp.StatusCode}

		if attempt < c.cfg.MaxRetries {
			c.log.Debug("retrying scopus request",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("max retries exhausted after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// retryDelay honours Retry-After given in seconds or as an HTTP date.
func (c *Client) retryDelay(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return c.cfg.RetryDelay
	}
	if secs, err := strconv.ParseInt(ra, 10, 64); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return c.cfg.RetryDelay
	}
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return c.cfg.RetryDelay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// VerifyAccess downloads a full-text article and fails with
// internalerr.ErrNoAccess when the caller is not on a subscriber network.
func (c *Client) VerifyAccess(ctx context.Context) error {
	resp, err := c.do(ctx, c.cfg.BaseURL+accessProbePath+"?view=FULL", "application/xml")
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrNoAccess, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: cannot retrieve full document from Elsevier API, "+
			"confirm you are connected to a network or VPN with full access to Scopus content: %v",
			internalerr.ErrNoAccess, readAPIError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Search fetches one page of results. Pass "*" as cursor to start.
func (c *Client) Search(ctx context.Context, query, cur string) (Page, error) {
	if cur == "" {
		cur = "*"
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("view", "COMPLETE")
	q.Set("cursor", cur)
	q.Set("count", strconv.Itoa(c.cfg.PageSize))

	resp, err := c.do(ctx, c.cfg.BaseURL+"/search/scopus?"+q.Encode(), "application/json")
	if err != nil {
		return Page{}, fmt.Errorf("scopus search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("scopus search: %w", readAPIError(resp))
	}

	var payload searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&payload); err != nil {
		return Page{}, fmt.Errorf("decoding search response: %w", err)
	}

	page := Page{}
	page.Total, _ = strconv.Atoi(payload.SearchResults.TotalResults)
	for _, e := range payload.SearchResults.Entries {
		if e.Error != "" || e.EID == "" {
			continue
		}
		page.Entries = append(page.Entries, e)
	}
	next := payload.SearchResults.Cursor.Next
	if len(page.Entries) > 0 && next != "" && next != payload.SearchResults.Cursor.Current {
		page.NextCursor = next
	}
	return page, nil
}

// SearchAll follows the cursor until the result set is exhausted.
func (c *Client) SearchAll(ctx context.Context, query string) ([]Entry, error) {
	var out []Entry
	cur := "*"
	for {
		page, err := c.Search(ctx, query, cur)
		if err != nil {
			return out, err
		}
		out = append(out, page.Entries...)
		if page.NextCursor == "" || (page.Total > 0 && len(out) >= page.Total) {
			break
		}
		cur = page.NextCursor
	}
	c.log.Debug("scopus search complete", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

// BlockQuery is the Search API query for one journal year.
func BlockQuery(issn string, year int) string {
	return fmt.Sprintf("ISSN(%s) AND PUBYEAR IS %d", issn, year)
}
