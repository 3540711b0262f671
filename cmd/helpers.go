package cmd

import (
	"errors"
	"time"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/fsutil"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Flag names shared across subcommands.
const (
	kubeconfigFlagName      = "kubeconfig"
	contextFlagName         = "context"
	timeoutFlagName         = "timeout"
	platformURLFlagName     = "platform-url"
	platformTokenFlagName   = "platform-token"
	netflowURLFlagName      = "netflow-url"
	netflowTokenFlagName    = "netflow-token"
	licenseURLFlagName      = "license-url"
	licenseTokenFlagName    = "license-token"
	licenseIDFlagName       = "license-id"
	chartsDirFlagName       = "charts-dir"
	validateFlagName        = "validate"
	externalURLFlagName     = "external-url"
	writeKubeconfigFlagName = "write-kubeconfig"
)

// Viper keys for the platform collaborator endpoints. The BERTH_ environment
// prefix applies, so BERTH_PLATFORM_URL overrides platform.url and so on.
const (
	platformURLKey   = "platform.url"
	platformTokenKey = "platform.token"
	netflowURLKey    = "netflow.url"
	netflowTokenKey  = "netflow.token"
	licenseURLKey    = "license.url"
	licenseTokenKey  = "license.token"
)

var (
	errPlatformURLRequired = errors.New(
		"provisioning API URL required (set --platform-url or BERTH_PLATFORM_URL)")
	errNetflowURLRequired = errors.New(
		"flow report API URL required (set --netflow-url or BERTH_NETFLOW_URL)")
	errLicenseURLRequired = errors.New(
		"license service URL required (set --license-url or BERTH_LICENSE_URL)")
)

// newConfigManager creates a config manager for the command and binds the
// shared connection flags.
func newConfigManager(cmd *cobra.Command) *configmanager.ConfigManager {
	manager := configmanager.NewConfigManager(cmd.OutOrStdout())

	flags := cmd.Flags()
	flags.String(kubeconfigFlagName, "", "path to the environment kubeconfig")
	flags.String(contextFlagName, "", "kubeconfig context; empty uses the current context")
	flags.Duration(timeoutFlagName, 0, "readiness wait timeout per resource")

	_ = manager.BindPFlag(
		"spec.environment.connection.kubeconfig", flags.Lookup(kubeconfigFlagName))
	_ = manager.BindPFlag(
		"spec.environment.connection.context", flags.Lookup(contextFlagName))

	return manager
}

func bindPlatformFlags(cmd *cobra.Command, manager *configmanager.ConfigManager) {
	flags := cmd.Flags()
	flags.String(platformURLFlagName, "", "environment provisioning API base URL")
	flags.String(platformTokenFlagName, "", "environment provisioning API token")

	_ = manager.BindPFlag(platformURLKey, flags.Lookup(platformURLFlagName))
	_ = manager.BindPFlag(platformTokenKey, flags.Lookup(platformTokenFlagName))
}

func bindNetflowFlags(cmd *cobra.Command, manager *configmanager.ConfigManager) {
	flags := cmd.Flags()
	flags.String(netflowURLFlagName, "", "flow report API base URL")
	flags.String(netflowTokenFlagName, "", "flow report API token")

	_ = manager.BindPFlag(netflowURLKey, flags.Lookup(netflowURLFlagName))
	_ = manager.BindPFlag(netflowTokenKey, flags.Lookup(netflowTokenFlagName))
}

func bindLicenseFlags(cmd *cobra.Command, manager *configmanager.ConfigManager) {
	flags := cmd.Flags()
	flags.String(licenseURLFlagName, "", "license service base URL")
	flags.String(licenseTokenFlagName, "", "license service token")
	flags.String(licenseIDFlagName, "", "license to fetch proxy registry credentials for")

	_ = manager.BindPFlag(licenseURLKey, flags.Lookup(licenseURLFlagName))
	_ = manager.BindPFlag(licenseTokenKey, flags.Lookup(licenseTokenFlagName))
}

// loadDistribution loads the config and applies the timeout flag override.
// The timeout flag is applied after unmarshalling because its zero value
// must not clobber the configured default.
func loadDistribution(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	tmr timer.Timer,
) (*v1alpha1.Distribution, error) {
	manager.Writer = cmd.OutOrStdout()

	cfg, err := manager.LoadConfig(tmr)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(timeoutFlagName) {
		value, err := cmd.Flags().GetDuration(timeoutFlagName)
		if err == nil {
			cfg.Spec.Environment.Connection.Timeout = metav1.Duration{Duration: value}
		}
	}

	return cfg, nil
}

// environmentName derives the test environment name from the release
// channel.
func environmentName(cfg *v1alpha1.Distribution) string {
	return k8s.SanitizeToDNSLabel("berth-" + cfg.Spec.Channel)
}

// connectionDetails resolves the kubeconfig path and context for reaching
// the environment.
func connectionDetails(cfg *v1alpha1.Distribution) (string, string) {
	kubeconfig := cfg.Spec.Environment.Connection.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = k8s.DefaultKubeconfigPath()
	}

	expanded, err := fsutil.ExpandHomePath(kubeconfig)
	if err == nil {
		kubeconfig = expanded
	}

	return kubeconfig, cfg.Spec.Environment.Connection.Context
}

// waitTimeout resolves the per-resource readiness timeout.
func waitTimeout(cfg *v1alpha1.Distribution) time.Duration {
	if cfg.Spec.Environment.Connection.Timeout.Duration > 0 {
		return cfg.Spec.Environment.Connection.Timeout.Duration
	}

	return v1alpha1.DefaultWaitTimeout
}

// resolveProvisioner creates the environment provisioner backend for the
// configured provider. The cloud backend requires the provisioning API URL.
func resolveProvisioner(
	injector runtime.Injector,
	manager *configmanager.ConfigManager,
	cfg *v1alpha1.Distribution,
) (provisioner.EnvironmentProvisioner, error) {
	factory, err := runtime.ResolveProvisionerFactory(injector)
	if err != nil {
		return nil, err
	}

	platformURL := manager.Viper.GetString(platformURLKey)
	platformToken := manager.Viper.GetString(platformTokenKey)

	if cfg.Spec.Environment.Provider == v1alpha1.ProviderCloud && platformURL == "" {
		return nil, errPlatformURLRequired
	}

	return factory(cfg, platformURL, platformToken)
}

// newRunE adapts a timer-aware handler into a cobra RunE backed by the
// shared runtime container.
func newRunE(
	runtimeContainer *runtime.Runtime,
	handler func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error,
) func(*cobra.Command, []string) error {
	decorated := runtime.WithTimer(handler)

	return func(cmd *cobra.Command, _ []string) error {
		return runtimeContainer.Invoke(func(injector runtime.Injector) error {
			return decorated(cmd, injector)
		})
	}
}
