// ABOUTME: Resty client for the hosted PostgREST-style remote store.
// ABOUTME: Carries the shared credential headers and the error taxonomy.
package remote

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrNotFound marks an empty filtered select for a single row.
	ErrNotFound = errors.New("remote: row not found")
	// ErrParticipantExists marks a uniqueness conflict on participant insert.
	// Day-level uploads treat it as success; setup surfaces it to the user.
	ErrParticipantExists = errors.New("remote: participant already exists")
)

// StatusError reports a non-2xx response from the remote store.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Body)
}

// Config holds connection settings for the remote store. The API key is a
// single shared credential sent as both the apikey header and the bearer
// token; per-user authorization happens at the application query layer.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the remote store's REST resources.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// NewClient builds a Client for the given remote store.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &Client{http: httpClient, log: logger}
}

// statusError converts a response into the error taxonomy. Conflicts on
// unique keys map to conflictErr when provided.
func statusError(resp *resty.Response, conflictErr error) error {
	if !resp.IsError() {
		return nil
	}
	if conflictErr != nil && resp.StatusCode() == http.StatusConflict {
		return conflictErr
	}
	return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
}

// eq builds a PostgREST equality filter value.
func eq(value string) string {
	return "eq." + value
}
