// Package kindprovisioner provisions local kind clusters for development
// runs of the installation tests.
package kindprovisioner

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/berth-dev/berth/pkg/svc/provisioner"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
	"sigs.k8s.io/yaml"
)

// KindProvider is the subset of kind's cluster provider used here.
type KindProvider interface {
	Create(name string, opts ...cluster.CreateOption) error
	Delete(name, kubeconfigPath string) error
	List() ([]string, error)
	KubeConfig(name string, internal bool) (string, error)
}

// Provisioner provisions kind clusters through the kind SDK.
type Provisioner struct {
	kindProvider KindProvider
	config       *v1alpha4.Cluster
}

var _ provisioner.EnvironmentProvisioner = (*Provisioner)(nil)

// NewProvisioner creates a kind provisioner. config may be nil to use kind's
// defaults.
func NewProvisioner(kindProvider KindProvider, config *v1alpha4.Cluster) *Provisioner {
	return &Provisioner{kindProvider: kindProvider, config: config}
}

// NewDefaultProvisioner creates a kind provisioner backed by the real kind
// SDK, streaming kind's output to stdout.
func NewDefaultProvisioner(config *v1alpha4.Cluster) *Provisioner {
	kindProvider := cluster.NewProvider(
		cluster.ProviderWithLogger(&streamLogger{writer: os.Stdout}),
	)

	return NewProvisioner(kindProvider, config)
}

// Create creates the kind cluster and blocks until its node is ready.
func (p *Provisioner) Create(ctx context.Context, name string) error {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("create aborted: %w", ctxErr)
	}

	opts := []cluster.CreateOption{}

	if p.config != nil {
		rawConfig, err := yaml.Marshal(p.config)
		if err != nil {
			return fmt.Errorf("marshal kind config: %w", err)
		}

		opts = append(opts, cluster.CreateWithRawConfig(rawConfig))
	}

	err := p.kindProvider.Create(name, opts...)
	if err != nil {
		return fmt.Errorf("create kind cluster %q: %w", name, err)
	}

	return nil
}

// Delete deletes the kind cluster.
func (p *Provisioner) Delete(ctx context.Context, name string) error {
	exists, err := p.Exists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", provisioner.ErrEnvironmentNotFound, name)
	}

	err = p.kindProvider.Delete(name, "")
	if err != nil {
		return fmt.Errorf("delete kind cluster %q: %w", name, err)
	}

	return nil
}

// Exists reports whether the kind cluster exists.
func (p *Provisioner) Exists(ctx context.Context, name string) (bool, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return false, fmt.Errorf("exists aborted: %w", ctxErr)
	}

	clusters, err := p.kindProvider.List()
	if err != nil {
		return false, fmt.Errorf("list kind clusters: %w", err)
	}

	return slices.Contains(clusters, name), nil
}

// Kubeconfig returns the cluster's kubeconfig content.
func (p *Provisioner) Kubeconfig(ctx context.Context, name string) (string, error) {
	exists, err := p.Exists(ctx, name)
	if err != nil {
		return "", err
	}

	if !exists {
		return "", fmt.Errorf("%w: %s", provisioner.ErrEnvironmentNotFound, name)
	}

	kubeconfig, err := p.kindProvider.KubeConfig(name, false)
	if err != nil {
		return "", fmt.Errorf("get kubeconfig for %q: %w", name, err)
	}

	return kubeconfig, nil
}

// Endpoint returns the cluster's API server endpoint from its kubeconfig.
func (p *Provisioner) Endpoint(ctx context.Context, name string) (string, error) {
	kubeconfig, err := p.Kubeconfig(ctx, name)
	if err != nil {
		return "", err
	}

	config, err := clientcmd.Load([]byte(kubeconfig))
	if err != nil {
		return "", fmt.Errorf("parse kubeconfig for %q: %w", name, err)
	}

	for _, clusterConfig := range config.Clusters {
		if clusterConfig.Server != "" {
			return clusterConfig.Server, nil
		}
	}

	return "", fmt.Errorf("no server endpoint in kubeconfig for %q", name)
}
