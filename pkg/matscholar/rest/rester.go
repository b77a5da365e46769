// Package rest is a client for the Materials Scholar REST API: word
// embeddings, materials search and entity search over the processed corpus.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// Environment variables consulted when New is given empty values.
const (
	EnvAPIKey   = "MATERIALS_SCHOLAR_API_KEY"
	EnvEndpoint = "MATERIALS_SCHOLAR_ENDPOINT"
)

const defaultTimeout = 30 * time.Second

// RestError is returned for invalid responses and unexpected status codes.
type RestError struct {
	StatusCode int
	Message    string
}

func (e *RestError) Error() string {
	if e.StatusCode == 0 {
		return "matscholar rest: " + e.Message
	}
	return fmt.Sprintf("matscholar rest (status %d): %s", e.StatusCode, e.Message)
}

// Rester talks to one API endpoint. It is safe for concurrent use.
type Rester struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// Option customises a Rester.
type Option func(*Rester)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Rester) { r.http = c }
}

// WithLogger sets the logger used for server warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rester) { r.log = logging.OrNop(l) }
}

// New returns a Rester. Empty apiKey or endpoint fall back to
// MATERIALS_SCHOLAR_API_KEY and MATERIALS_SCHOLAR_ENDPOINT.
func New(apiKey, endpoint string, opts ...Option) (*Rester, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if endpoint == "" {
		endpoint = os.Getenv(EnvEndpoint)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("set %s or pass an api key: %w", EnvAPIKey, internalerr.ErrMissingAPIKey)
	}
	if endpoint == "" {
		return nil, fmt.Errorf("set %s or pass an endpoint: %w", EnvEndpoint, internalerr.ErrInvalidConfig)
	}

	r := &Rester{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type envelope struct {
	ValidResponse bool            `json:"valid_response"`
	Response      json.RawMessage `json:"response"`
	Error         string          `json:"error"`
	Warning       string          `json:"warning"`
}

// request sends a GET with query params or a POST with a JSON body and
// decodes the envelope's response into out.
func (r *Rester) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := r.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RestError{Message: err.Error()}
	}
	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return &RestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return &RestError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return &RestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("REST query returned with error status code %d. Content: %s", resp.StatusCode, content),
		}
	}

	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return &RestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%v. Content: %s", err, content)}
	}
	if !env.ValidResponse {
		return &RestError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if env.Warning != "" {
		r.log.Warn("matscholar api warning", zap.String("path", path), zap.String("warning", env.Warning))
	}
	if out == nil || len(env.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return &RestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

// formBool renders booleans the way the API's query parser expects.
func formBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func searchQuery(negative []string, ignoreMissing bool, topK int) url.Values {
	q := url.Values{}
	q.Set("top_k", strconv.Itoa(topK))
	if len(negative) > 0 {
		q.Set("negative", strings.Join(negative, ","))
	}
	q.Set("ignore_missing", formBool(ignoreMissing))
	return q
}

func wordPath(prefix string, words []string) string {
	return prefix + url.PathEscape(strings.Join(words, ","))
}
