// Package harborinstaller installs the Harbor registry via Helm. Image
// references in the chart are rewritten to the private proxy registry by
// the overlay before installation, so the values YAML produced there is
// passed through verbatim.
package harborinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
)

const clusterIssuer = "berth-selfsigned"

// Installer installs or upgrades Harbor.
type Installer struct {
	client      helm.Interface
	chart       v1alpha1.Chart
	valuesYAML  string
	externalURL string
	timeout     time.Duration
}

// NewInstaller creates a Harbor installer. valuesYAML is the overlay output
// carrying the rewritten image references and is merged on top of the
// chart's defaults.
func NewInstaller(
	client helm.Interface,
	chart v1alpha1.Chart,
	valuesYAML, externalURL string,
	timeout time.Duration,
) *Installer {
	return &Installer{
		client:      client,
		chart:       chart,
		valuesYAML:  valuesYAML,
		externalURL: externalURL,
		timeout:     timeout,
	}
}

// Install installs or upgrades the Harbor chart.
func (i *Installer) Install(ctx context.Context) error {
	entry := &helm.RepositoryEntry{Name: i.chart.Name, URL: i.chart.RepoURL}

	err := i.client.AddRepository(ctx, entry)
	if err != nil {
		return fmt.Errorf("add harbor repository: %w", err)
	}

	spec := &helm.ChartSpec{
		ReleaseName:     i.chart.Release,
		ChartName:       i.chart.Name + "/harbor",
		Namespace:       i.chart.Namespace,
		Version:         i.chart.Version,
		RepoURL:         i.chart.RepoURL,
		CreateNamespace: true,
		Wait:            true,
		Timeout:         i.timeout,
		ValuesYAML:      i.valuesYAML,
		SetValues:       i.setValues(),
	}

	if i.chart.ValuesFile != "" {
		spec.ValueFiles = []string{i.chart.ValuesFile}
	}

	_, err = i.client.InstallOrUpgradeChart(ctx, spec)
	if err != nil {
		return fmt.Errorf("install harbor chart: %w", err)
	}

	return nil
}

// Uninstall removes the Harbor release.
func (i *Installer) Uninstall(ctx context.Context) error {
	err := i.client.UninstallRelease(ctx, i.chart.Release, i.chart.Namespace)
	if err != nil {
		return fmt.Errorf("uninstall harbor release: %w", err)
	}

	return nil
}

// setValues wires the ingress to the cluster issuer so cert-manager mints
// the harbor-tls certificate the verifier later waits on.
func (i *Installer) setValues() map[string]string {
	values := map[string]string{
		"expose.type":                  "ingress",
		"expose.tls.enabled":           "true",
		"expose.tls.certSource":        "secret",
		"expose.tls.secret.secretName": "harbor-tls",
		"expose.ingress.annotations.cert-manager\\.io/cluster-issuer": clusterIssuer,
	}

	if i.externalURL != "" {
		values["externalURL"] = i.externalURL
	}

	return values
}
