// Package netflow provides a client for the delivery platform's network-flow
// report API, which returns the DNS domains observed from an ephemeral
// environment during a test window.
package netflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/berth-dev/berth/pkg/client/netretry"
	"github.com/siderolabs/go-retry/retry"
)

const (
	defaultRequestTimeout = 30 * time.Second
	retryDeadline         = 60 * time.Second
	retryInterval         = 5 * time.Second
)

// ErrEnvironmentIDEmpty is returned when no environment ID is provided.
var ErrEnvironmentIDEmpty = errors.New("environment id is empty")

// Client calls the network-flow report API.
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	retryDeadline time.Duration
	retryInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the deadline and interval used when retrying
// transient request failures.
func WithRetryPolicy(deadline, interval time.Duration) Option {
	return func(c *Client) {
		c.retryDeadline = deadline
		c.retryInterval = interval
	}
}

// NewClient creates a flow-report client. token authenticates against the
// platform API.
func NewClient(baseURL, token string, opts ...Option) *Client {
	client := &Client{
		baseURL:       baseURL,
		token:         token,
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
		retryDeadline: retryDeadline,
		retryInterval: retryInterval,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// report mirrors the API response body.
type report struct {
	Domains []string `json:"domains"`
}

// ObservedDomains returns the DNS domains observed from the environment
// during the report window. Transient failures are retried on a fixed
// interval until the retry deadline.
func (c *Client) ObservedDomains(ctx context.Context, environmentID string) ([]string, error) {
	if environmentID == "" {
		return nil, ErrEnvironmentIDEmpty
	}

	url := fmt.Sprintf("%s/v1/environments/%s/network-report", c.baseURL, environmentID)

	var domains []string

	err := retry.Constant(c.retryDeadline, retry.WithUnits(c.retryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			fetched, fetchErr := c.fetchReport(ctx, url)
			if fetchErr != nil {
				if netretry.IsRetryable(fetchErr) {
					return retry.ExpectedError(fetchErr)
				}

				return fetchErr
			}

			domains = fetched

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("fetch network report: %w", err)
	}

	return domains, nil
}

func (c *Client) fetchReport(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed report

	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return parsed.Domains, nil
}
