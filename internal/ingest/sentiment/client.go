// Package sentiment calls an external scoring model over HTTP to classify
// comment sentiment.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
)

const (
	maxResponseBody = 4 * 1024 * 1024

	fetchSource = "sentiment"

	statusOK    = "ok"
	statusError = "error"
)

// ErrNotConfigured indicates no scoring endpoint was configured.
var ErrNotConfigured = errors.New("sentiment endpoint not configured")

// Client posts comment batches to the scoring endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *zerolog.Logger
}

func New(url string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger,
	}
}

// Enabled reports whether a scoring endpoint is configured.
func (c *Client) Enabled() bool { return c.url != "" }

type scoreRequest struct {
	Comments []string `json:"comments"`
}

type scoreResponse struct {
	Sentiments []string `json:"sentiments"`
}

// Score classifies each comment, returning one label per input in order.
func (c *Client) Score(ctx context.Context, comments []string) ([]string, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	if len(comments) == 0 {
		return []string{}, nil
	}

	body, err := json.Marshal(scoreRequest{Comments: comments})
	if err != nil {
		return nil, fmt.Errorf("marshal sentiment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sentiment request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: sentiment request: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: sentiment request: HTTP %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var scored scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&scored); err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: decode sentiment response: %w", domain.ErrUpstreamFailure, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	return scored.Sentiments, nil
}
