// Package certmanagerinstaller installs cert-manager via Helm and creates
// the self-signed cluster issuer the distribution's certificates are minted
// from.
package certmanagerinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
	"github.com/berth-dev/berth/pkg/k8s"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const issuerName = "berth-selfsigned"

// Installer installs or upgrades cert-manager.
type Installer struct {
	client      helm.Interface
	chart       v1alpha1.Chart
	kubeconfig  string
	kubeContext string
	timeout     time.Duration
}

// NewInstaller creates a cert-manager installer from the chart entry in the
// distribution config.
func NewInstaller(
	client helm.Interface,
	chart v1alpha1.Chart,
	kubeconfig, kubeContext string,
	timeout time.Duration,
) *Installer {
	return &Installer{
		client:      client,
		chart:       chart,
		kubeconfig:  kubeconfig,
		kubeContext: kubeContext,
		timeout:     timeout,
	}
}

// Install installs or upgrades cert-manager and creates the self-signed
// cluster issuer.
func (i *Installer) Install(ctx context.Context) error {
	err := i.installChart(ctx)
	if err != nil {
		return fmt.Errorf("install cert-manager: %w", err)
	}

	err = i.createSelfSignedIssuer(ctx)
	if err != nil {
		return fmt.Errorf("configure cert-manager issuer: %w", err)
	}

	return nil
}

// Uninstall removes the cert-manager release.
func (i *Installer) Uninstall(ctx context.Context) error {
	err := i.client.UninstallRelease(ctx, i.chart.Release, i.chart.Namespace)
	if err != nil {
		return fmt.Errorf("uninstall cert-manager release: %w", err)
	}

	return nil
}

func (i *Installer) installChart(ctx context.Context) error {
	entry := &helm.RepositoryEntry{Name: i.chart.Name, URL: i.chart.RepoURL}

	err := i.client.AddRepository(ctx, entry)
	if err != nil {
		return fmt.Errorf("add cert-manager repository: %w", err)
	}

	spec := &helm.ChartSpec{
		ReleaseName:     i.chart.Release,
		ChartName:       i.chart.Name + "/cert-manager",
		Namespace:       i.chart.Namespace,
		Version:         i.chart.Version,
		RepoURL:         i.chart.RepoURL,
		CreateNamespace: true,
		Wait:            true,
		Timeout:         i.timeout,
		SetValues: map[string]string{
			"crds.enabled": "true",
		},
	}

	_, err = i.client.InstallOrUpgradeChart(ctx, spec)
	if err != nil {
		return fmt.Errorf("install cert-manager chart: %w", err)
	}

	return nil
}

// createSelfSignedIssuer creates the ClusterIssuer used for the
// distribution's TLS certificates. Creation is idempotent.
func (i *Installer) createSelfSignedIssuer(ctx context.Context) error {
	dynamicClient, err := k8s.NewDynamicClient(i.kubeconfig, i.kubeContext)
	if err != nil {
		return fmt.Errorf("create dynamic client: %w", err)
	}

	issuerGVR := schema.GroupVersionResource{
		Group:    "cert-manager.io",
		Version:  "v1",
		Resource: "clusterissuers",
	}

	issuer := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "cert-manager.io/v1",
			"kind":       "ClusterIssuer",
			"metadata": map[string]interface{}{
				"name": issuerName,
			},
			"spec": map[string]interface{}{
				"selfSigned": map[string]interface{}{},
			},
		},
	}

	_, err = dynamicClient.Resource(issuerGVR).Create(ctx, issuer, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("create cluster issuer: %w", err)
	}

	return nil
}
