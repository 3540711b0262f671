// Package license provides a client for the delivery platform's license API,
// which exchanges a customer license ID for pull credentials to the private
// proxy registry.
package license

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

var (
	// ErrLicenseIDEmpty is returned when no license ID is provided.
	ErrLicenseIDEmpty = errors.New("license id is empty")

	// ErrLicenseRejected is returned when the platform rejects the license,
	// either because it is unknown, expired, or revoked.
	ErrLicenseRejected = errors.New("license rejected")
)

// Credentials are registry pull credentials issued against a license.
type Credentials struct {
	Registry string `json:"registry"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client calls the license API.
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

// NewClient creates a license client. token authenticates against the
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

// RegistryCredentials exchanges a license ID for proxy-registry pull
// credentials. Transient failures are retried on a fixed interval until the
// retry deadline; a rejected license fails immediately with
// ErrLicenseRejected.
func (c *Client) RegistryCredentials(
	ctx context.Context,
	licenseID string,
) (Credentials, error) {
	if licenseID == "" {
		return Credentials{}, ErrLicenseIDEmpty
	}

	url := fmt.Sprintf("%s/v1/licenses/%s/registry-credentials", c.baseURL, licenseID)

	var credentials Credentials

	err := retry.Constant(c.retryDeadline, retry.WithUnits(c.retryInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			fetched, fetchErr := c.fetchCredentials(ctx, url)
			if fetchErr != nil {
				if netretry.IsRetryable(fetchErr) {
					return retry.ExpectedError(fetchErr)
				}

				return fetchErr
			}

			credentials = fetched

			return nil
		})
	if err != nil {
		return Credentials{}, fmt.Errorf("fetch registry credentials: %w", err)
	}

	return credentials, nil
}

func (c *Client) fetchCredentials(ctx context.Context, url string) (Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return Credentials{}, fmt.Errorf("%w: status %d", ErrLicenseRejected, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return Credentials{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var credentials Credentials

	err = json.NewDecoder(resp.Body).Decode(&credentials)
	if err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}

	return credentials, nil
}
