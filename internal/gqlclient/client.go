// Package gqlclient executes serialized query documents against the upstream
// GraphQL endpoint.
package gqlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gridiron-data/gridiron/internal/query"
)

// GraphQLError is a failed execution: either a non-2xx HTTP response or a
// GraphQL errors array in an otherwise successful response.
type GraphQLError struct {
	Messages   []string
	StatusCode int
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("graphql errors: %s", strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("graphql request failed with HTTP %d", e.StatusCode)
}

// Config holds client configuration.
type Config struct {
	// Endpoint is the upstream GraphQL URL.
	Endpoint string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of attempts for retryable failures.
	MaxRetries int
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// Client posts query documents to the upstream endpoint with retry and
// exponential backoff. Client errors (4xx) and GraphQL-level errors are not
// retried; server errors and transport failures are.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger

	// backoff is replaceable in tests.
	backoff func(attempt int) time.Duration
}

// New creates a client from the given configuration.
func New(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
		backoff:    defaultBackoff,
	}
}

// defaultBackoff doubles per attempt, capped at 60 seconds.
func defaultBackoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > 60*time.Second {
		d = 60 * time.Second
	}
	return d
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute runs the document against the upstream endpoint and returns the raw
// data payload.
func (c *Client) Execute(ctx context.Context, doc *query.Document) (json.RawMessage, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying query",
				zap.String("operation", doc.OperationName),
				zap.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		data, retryable, err := c.attempt(ctx, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.Warn("query attempt failed",
			zap.String("operation", doc.OperationName),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, payload []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode != http.StatusOK {
		// Server errors may be transient; client errors will not improve on retry.
		retryable := resp.StatusCode >= 500
		return nil, retryable, &GraphQLError{StatusCode: resp.StatusCode}
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			messages = append(messages, e.Message)
		}
		return nil, false, &GraphQLError{Messages: messages, StatusCode: resp.StatusCode}
	}

	return parsed.Data, false, nil
}
