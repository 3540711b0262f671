// Package ingressnginxinstaller installs ingress-nginx via Helm. The
// controller terminates edge traffic for the registry's UI and API.
package ingressnginxinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
)

// Installer installs or upgrades ingress-nginx.
type Installer struct {
	client  helm.Interface
	chart   v1alpha1.Chart
	timeout time.Duration
}

// NewInstaller creates an ingress-nginx installer from the chart entry in
// the distribution config.
func NewInstaller(
	client helm.Interface,
	chart v1alpha1.Chart,
	timeout time.Duration,
) *Installer {
	return &Installer{client: client, chart: chart, timeout: timeout}
}

// Install installs or upgrades the ingress-nginx chart.
func (i *Installer) Install(ctx context.Context) error {
	entry := &helm.RepositoryEntry{Name: i.chart.Name, URL: i.chart.RepoURL}

	err := i.client.AddRepository(ctx, entry)
	if err != nil {
		return fmt.Errorf("add ingress-nginx repository: %w", err)
	}

	spec := &helm.ChartSpec{
		ReleaseName:     i.chart.Release,
		ChartName:       i.chart.Name + "/ingress-nginx",
		Namespace:       i.chart.Namespace,
		Version:         i.chart.Version,
		RepoURL:         i.chart.RepoURL,
		CreateNamespace: true,
		Wait:            true,
		Timeout:         i.timeout,
		SetValues: map[string]string{
			"controller.admissionWebhooks.enabled": "true",
		},
	}

	_, err = i.client.InstallOrUpgradeChart(ctx, spec)
	if err != nil {
		return fmt.Errorf("install ingress-nginx chart: %w", err)
	}

	return nil
}

// Uninstall removes the ingress-nginx release.
func (i *Installer) Uninstall(ctx context.Context) error {
	err := i.client.UninstallRelease(ctx, i.chart.Release, i.chart.Namespace)
	if err != nil {
		return fmt.Errorf("uninstall ingress-nginx release: %w", err)
	}

	return nil
}
