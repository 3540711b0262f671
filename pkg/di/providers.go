package di

import (
	"fmt"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	cloudprovisioner "github.com/berth-dev/berth/pkg/svc/provisioner/cloud"
	kindprovisioner "github.com/berth-dev/berth/pkg/svc/provisioner/kind"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/samber/do/v2"
)

// ProvisionerFactory creates the environment provisioner backend the config
// selects.
type ProvisionerFactory func(
	distribution *v1alpha1.Distribution,
	platformURL, platformToken string,
) (provisioner.EnvironmentProvisioner, error)

// NewRuntime constructs the shared runtime container used by the root
// command and tests.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideProvisionerFactory,
	)
}

func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

func provideProvisionerFactory(i Injector) error {
	do.Provide(i, func(Injector) (ProvisionerFactory, error) {
		return defaultProvisionerFactory, nil
	})

	return nil
}

// defaultProvisionerFactory selects the backend from the configured
// provider.
func defaultProvisionerFactory(
	distribution *v1alpha1.Distribution,
	platformURL, platformToken string,
) (provisioner.EnvironmentProvisioner, error) {
	switch distribution.Spec.Environment.Provider {
	case v1alpha1.ProviderKind:
		return kindprovisioner.NewDefaultProvisioner(nil), nil
	case v1alpha1.ProviderCloud:
		return cloudprovisioner.NewProvisioner(
			platformURL, platformToken, distribution.Spec.Environment), nil
	default:
		return nil, fmt.Errorf(
			"%w: %s", provisioner.ErrUnknownProvider, distribution.Spec.Environment.Provider)
	}
}
