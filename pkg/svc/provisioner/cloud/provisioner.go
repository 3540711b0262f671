// Package cloudprovisioner provisions ephemeral test environments through
// the delivery platform's environment API.
package cloudprovisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/netretry"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	"github.com/siderolabs/go-retry/retry"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultCreateDeadline = 15 * time.Minute
	defaultPollInterval   = 10 * time.Second

	statusRunning = "running"
	statusFailed  = "failed"
)

// ErrEnvironmentFailed is returned when the platform reports the environment
// entered a terminal failed state.
var ErrEnvironmentFailed = errors.New("environment provisioning failed")

// Provisioner drives the platform environment API.
type Provisioner struct {
	baseURL    string
	token      string
	env        v1alpha1.Environment
	httpClient *http.Client

	createDeadline time.Duration
	pollInterval   time.Duration
}

var _ provisioner.EnvironmentProvisioner = (*Provisioner)(nil)

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithPollPolicy overrides the deadline and interval used while waiting for
// an environment to reach the running state.
func WithPollPolicy(deadline, interval time.Duration) Option {
	return func(p *Provisioner) {
		p.createDeadline = deadline
		p.pollInterval = interval
	}
}

// NewProvisioner creates a cloud provisioner. env carries the distribution,
// version, and TTL the platform should provision.
func NewProvisioner(
	baseURL, token string,
	env v1alpha1.Environment,
	opts ...Option,
) *Provisioner {
	prov := &Provisioner{
		baseURL:        baseURL,
		token:          token,
		env:            env,
		httpClient:     &http.Client{Timeout: defaultRequestTimeout},
		createDeadline: defaultCreateDeadline,
		pollInterval:   defaultPollInterval,
	}

	for _, opt := range opts {
		opt(prov)
	}

	return prov
}

type createRequest struct {
	Name         string `json:"name"`
	Distribution string `json:"distribution,omitempty"`
	Version      string `json:"version,omitempty"`
	TTL          string `json:"ttl,omitempty"`
}

type environmentStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Create requests an environment and blocks until the platform reports it
// running. A terminal failed status aborts the wait.
func (p *Provisioner) Create(ctx context.Context, name string) error {
	request := createRequest{
		Name:         name,
		Distribution: p.env.Distribution,
		Version:      p.env.Version,
		TTL:          p.env.TTL.Duration.String(),
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal create request: %w", err)
	}

	resp, err := p.do(ctx, http.MethodPost, "/v1/environments", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create environment %q: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create environment %q: %s", name, responseError(resp))
	}

	return p.waitRunning(ctx, name)
}

// waitRunning polls the environment status until it is running.
func (p *Provisioner) waitRunning(ctx context.Context, name string) error {
	err := retry.Constant(p.createDeadline, retry.WithUnits(p.pollInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			status, statusErr := p.status(ctx, name)
			if statusErr != nil {
				if netretry.IsRetryable(statusErr) {
					return retry.ExpectedError(statusErr)
				}

				return statusErr
			}

			switch status.Status {
			case statusRunning:
				return nil
			case statusFailed:
				return fmt.Errorf("%w: %s", ErrEnvironmentFailed, name)
			default:
				return retry.ExpectedErrorf("environment %s is %s", name, status.Status)
			}
		})
	if err != nil {
		return fmt.Errorf("wait for environment %q: %w", name, err)
	}

	return nil
}

// Delete destroys the environment.
func (p *Provisioner) Delete(ctx context.Context, name string) error {
	resp, err := p.do(ctx, http.MethodDelete, "/v1/environments/"+name, nil)
	if err != nil {
		return fmt.Errorf("delete environment %q: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", provisioner.ErrEnvironmentNotFound, name)
	default:
		return fmt.Errorf("delete environment %q: %s", name, responseError(resp))
	}
}

// Exists reports whether the environment exists.
func (p *Provisioner) Exists(ctx context.Context, name string) (bool, error) {
	_, err := p.status(ctx, name)
	if err != nil {
		if errors.Is(err, provisioner.ErrEnvironmentNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Kubeconfig fetches the environment's kubeconfig content.
func (p *Provisioner) Kubeconfig(ctx context.Context, name string) (string, error) {
	resp, err := p.do(ctx, http.MethodGet, "/v1/environments/"+name+"/kubeconfig", nil)
	if err != nil {
		return "", fmt.Errorf("fetch kubeconfig for %q: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", provisioner.ErrEnvironmentNotFound, name)
	default:
		return "", fmt.Errorf("fetch kubeconfig for %q: %s", name, responseError(resp))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read kubeconfig for %q: %w", name, err)
	}

	return string(content), nil
}

// Endpoint returns the environment's public endpoint.
func (p *Provisioner) Endpoint(ctx context.Context, name string) (string, error) {
	status, err := p.status(ctx, name)
	if err != nil {
		return "", err
	}

	return status.Endpoint, nil
}

func (p *Provisioner) status(ctx context.Context, name string) (environmentStatus, error) {
	resp, err := p.do(ctx, http.MethodGet, "/v1/environments/"+name, nil)
	if err != nil {
		return environmentStatus{}, fmt.Errorf("fetch environment %q: %w", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return environmentStatus{}, fmt.Errorf(
			"%w: %s", provisioner.ErrEnvironmentNotFound, name)
	default:
		return environmentStatus{}, fmt.Errorf(
			"fetch environment %q: %s", name, responseError(resp))
	}

	var status environmentStatus

	err = json.NewDecoder(resp.Body).Decode(&status)
	if err != nil {
		return environmentStatus{}, fmt.Errorf("decode environment %q: %w", name, err)
	}

	return status, nil
}

func (p *Provisioner) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", p.token)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	return resp, nil
}

func responseError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))
}
