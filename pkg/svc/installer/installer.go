package installer

import (
	"context"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
)

// DefaultInstallTimeout is the default timeout for chart installation.
const DefaultInstallTimeout = 5 * time.Minute

// Installer installs or removes one component of the distribution.
type Installer interface {
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

// InstallTimeout determines the timeout for component installation. The
// environment's connection timeout wins when configured.
func InstallTimeout(distribution *v1alpha1.Distribution) time.Duration {
	if distribution == nil {
		return DefaultInstallTimeout
	}

	if distribution.Spec.Environment.Connection.Timeout.Duration > 0 {
		return distribution.Spec.Environment.Connection.Timeout.Duration
	}

	return DefaultInstallTimeout
}
