package installer

import (
	"errors"
	"fmt"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
	certmanagerinstaller "github.com/berth-dev/berth/pkg/svc/installer/certmanager"
	harborinstaller "github.com/berth-dev/berth/pkg/svc/installer/harbor"
	ingressnginxinstaller "github.com/berth-dev/berth/pkg/svc/installer/ingressnginx"
)

// ErrUnknownChart is returned when the distribution config names a chart no
// installer exists for.
var ErrUnknownChart = errors.New("unknown chart")

// Component pairs an installer with the chart name it installs.
type Component struct {
	Name      string
	Installer Installer
}

// Factory creates installers from the distribution config. It holds the
// shared dependencies installers need.
type Factory struct {
	helmClient  helm.Interface
	kubeconfig  string
	kubeContext string
	timeout     time.Duration
}

// NewFactory creates an installer factory.
func NewFactory(
	helmClient helm.Interface,
	kubeconfig, kubeContext string,
	timeout time.Duration,
) *Factory {
	return &Factory{
		helmClient:  helmClient,
		kubeconfig:  kubeconfig,
		kubeContext: kubeContext,
		timeout:     timeout,
	}
}

// InstallersFor returns one installer per configured chart, in the order the
// config declares them. harborValuesYAML carries the overlay output with the
// rewritten image references; externalURL is the registry's public URL.
func (f *Factory) InstallersFor(
	distribution *v1alpha1.Distribution,
	harborValuesYAML, externalURL string,
) ([]Component, error) {
	components := make([]Component, 0, len(distribution.Spec.Charts))

	for _, chart := range distribution.Spec.Charts {
		component, err := f.componentFor(chart, harborValuesYAML, externalURL)
		if err != nil {
			return nil, err
		}

		components = append(components, component)
	}

	return components, nil
}

func (f *Factory) componentFor(
	chart v1alpha1.Chart,
	harborValuesYAML, externalURL string,
) (Component, error) {
	switch chart.Name {
	case "cert-manager":
		return Component{
			Name: chart.Name,
			Installer: certmanagerinstaller.NewInstaller(
				f.helmClient, chart, f.kubeconfig, f.kubeContext, f.timeout),
		}, nil
	case "ingress-nginx":
		return Component{
			Name:      chart.Name,
			Installer: ingressnginxinstaller.NewInstaller(f.helmClient, chart, f.timeout),
		}, nil
	case "harbor":
		return Component{
			Name: chart.Name,
			Installer: harborinstaller.NewInstaller(
				f.helmClient, chart, harborValuesYAML, externalURL, f.timeout),
		}, nil
	default:
		return Component{}, fmt.Errorf("%w: %s", ErrUnknownChart, chart.Name)
	}
}
