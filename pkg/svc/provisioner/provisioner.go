// Package provisioner manages the ephemeral environments installation tests
// run against. The cloud backend drives the delivery platform's environment
// API; the kind backend provisions a local cluster for development runs.
package provisioner

import (
	"context"
	"errors"
)

var (
	// ErrEnvironmentNotFound is returned when the named environment does
	// not exist.
	ErrEnvironmentNotFound = errors.New("environment not found")

	// ErrUnknownProvider is returned when the config names a provider no
	// backend exists for.
	ErrUnknownProvider = errors.New("unknown provider")
)

// EnvironmentProvisioner manages ephemeral test environments.
type EnvironmentProvisioner interface {
	// Create provisions an environment and blocks until it is usable.
	Create(ctx context.Context, name string) error

	// Delete tears the environment down. Returns ErrEnvironmentNotFound
	// when it does not exist.
	Delete(ctx context.Context, name string) error

	// Exists reports whether the environment exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Kubeconfig returns the kubeconfig content for the environment.
	Kubeconfig(ctx context.Context, name string) (string, error)

	// Endpoint returns the environment's public endpoint.
	Endpoint(ctx context.Context, name string) (string, error)
}
