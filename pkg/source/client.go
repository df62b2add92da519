// Package source reads tracker records from a remote tracker backend and
// from CSV exports.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/raykavin/vitaltrend/pkg/medication"
)

const (
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second

	// maxErrorBody bounds the response body kept in a StatusError
	maxErrorBody = 512
)

// Client fetches records from the tracker HTTP API
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	maxRetries int
	minBackoff time.Duration
	maxBackoff time.Duration
	log        logger.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// WithMaxRetries sets how many times a failed request is retried
func WithMaxRetries(retries int) ClientOption {
	return func(c *Client) {
		c.maxRetries = max(0, retries)
	}
}

// WithBackoff sets the wait bounds between retries
func WithBackoff(minWait, maxWait time.Duration) ClientOption {
	return func(c *Client) {
		c.minBackoff = minWait
		c.maxBackoff = maxWait
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the tracker served at baseURL
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid tracker url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid tracker url %q: scheme must be http or https", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		http:       &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		minBackoff: 100 * time.Millisecond,
		maxBackoff: 2 * time.Second,
		log:        logger.Nop(),
	}
	for _, option := range options {
		option(client)
	}

	return client, nil
}

// Logs fetches every log entry
func (c *Client) Logs(ctx context.Context) ([]core.LogEntry, error) {
	var records []logRecord
	if err := c.get(ctx, "/api/logs", &records); err != nil {
		return nil, err
	}
	return convertAll(records, logRecord.entry)
}

// Jabs fetches every jab
func (c *Client) Jabs(ctx context.Context) ([]core.Jab, error) {
	var records []jabRecord
	if err := c.get(ctx, "/api/jabs", &records); err != nil {
		return nil, err
	}
	return convertAll(records, jabRecord.jab)
}

// Measurements fetches every body measurement
func (c *Client) Measurements(ctx context.Context) ([]core.BodyMeasurement, error) {
	var records []measurementRecord
	if err := c.get(ctx, "/api/body-measurements", &records); err != nil {
		return nil, err
	}
	return convertAll(records, measurementRecord.measurement)
}

// MedicationLevels fetches the levels computed by the backend
func (c *Client) MedicationLevels(ctx context.Context) ([]medication.Level, error) {
	var levels []medication.Level
	if err := c.get(ctx, "/api/medication-levels", &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// get decodes the JSON body of path into target, retrying transport
// failures and temporary statuses
func (c *Client) get(ctx context.Context, path string, target any) error {
	endpoint := c.baseURL.JoinPath(path).String()
	log := c.log.WithField("url", endpoint)

	wait := &backoff.Backoff{
		Min:    c.minBackoff,
		Max:    c.maxBackoff,
		Factor: 2,
	}

	for attempt := 0; ; attempt++ {
		body, err := c.fetch(ctx, endpoint)
		if err == nil {
			defer body.Close()
			if err := json.NewDecoder(body).Decode(target); err != nil {
				return fmt.Errorf("%w: decoding %s: %v", ErrInvalidRecord, endpoint, err)
			}
			return nil
		}

		if !retryable(err) || attempt >= c.maxRetries {
			return err
		}

		delay := wait.Duration()
		log.WithError(err).Warnf("request failed, retrying in %s (%d/%d)", delay, attempt+1, c.maxRetries)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) fetch(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		defer response.Body.Close()
		content, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return nil, &StatusError{Code: response.StatusCode, URL: endpoint, Body: string(content)}
	}

	return response.Body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	// transport failure
	return true
}
