package installer_test

import (
	"context"
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
	"github.com/berth-dev/berth/pkg/svc/installer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type noopHelm struct{}

func (noopHelm) InstallChart(context.Context, *helm.ChartSpec) (*helm.ReleaseInfo, error) {
	return nil, nil
}

func (noopHelm) InstallOrUpgradeChart(
	context.Context, *helm.ChartSpec,
) (*helm.ReleaseInfo, error) {
	return nil, nil
}

func (noopHelm) UninstallRelease(context.Context, string, string) error { return nil }

func (noopHelm) AddRepository(context.Context, *helm.RepositoryEntry) error { return nil }

func TestInstallersFor_DefaultChartsInOrder(t *testing.T) {
	t.Parallel()

	factory := installer.NewFactory(noopHelm{}, "/tmp/kubeconfig", "", 5*time.Minute)
	distribution := v1alpha1.NewDistribution()

	components, err := factory.InstallersFor(distribution, "", "https://harbor.local")

	require.NoError(t, err)
	require.Len(t, components, 3)
	assert.Equal(t, "cert-manager", components[0].Name)
	assert.Equal(t, "ingress-nginx", components[1].Name)
	assert.Equal(t, "harbor", components[2].Name)

	for _, component := range components {
		assert.NotNil(t, component.Installer)
	}
}

func TestInstallersFor_UnknownChart(t *testing.T) {
	t.Parallel()

	factory := installer.NewFactory(noopHelm{}, "/tmp/kubeconfig", "", 5*time.Minute)
	distribution := v1alpha1.NewDistribution()
	distribution.Spec.Charts = append(distribution.Spec.Charts, v1alpha1.Chart{
		Name: "postgres-operator",
	})

	_, err := factory.InstallersFor(distribution, "", "")

	require.ErrorIs(t, err, installer.ErrUnknownChart)
	assert.Contains(t, err.Error(), "postgres-operator")
}

func TestInstallTimeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, installer.DefaultInstallTimeout, installer.InstallTimeout(nil))

	distribution := v1alpha1.NewDistribution()
	assert.Equal(t, installer.DefaultInstallTimeout, installer.InstallTimeout(distribution))

	distribution.Spec.Environment.Connection.Timeout = metav1.Duration{
		Duration: 10 * time.Minute,
	}
	assert.Equal(t, 10*time.Minute, installer.InstallTimeout(distribution))
}
