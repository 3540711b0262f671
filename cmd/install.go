package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/client/helm"
	"github.com/berth-dev/berth/pkg/client/license"
	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/berth-dev/berth/pkg/overlay"
	"github.com/berth-dev/berth/pkg/svc/installer"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	"sigs.k8s.io/yaml"
)

// pullSecretName is the dockerconfigjson secret holding the proxy registry
// credentials fetched from the license service.
const pullSecretName = "berth-proxy-pull"

// NewInstallCmd creates the install command.
func NewInstallCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the distribution charts",
		Long: "Install the distribution's charts in dependency order. When a " +
			"chart directory is given, its image references are rewritten to " +
			"the proxy registry and the resulting overlay values are applied.",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)
	bindLicenseFlags(cmd, manager)
	addInstallFlags(cmd)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runInstall(cmd, manager, injector, tmr)
		})

	return cmd
}

func addInstallFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String(chartsDirFlagName, "",
		"path to the unpacked Harbor chart used to build overlay values")
	flags.Bool(validateFlagName, false,
		"render the overlay chart and validate the manifests before installing")
	flags.String(externalURLFlagName, "",
		"public URL the installed registry is reachable on")
}

func runInstall(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	_ runtime.Injector,
	tmr timer.Timer,
) error {
	tmr.Start()

	cfg, err := loadDistribution(cmd, manager, tmr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "📦", "Install distribution...")

	harborValues, err := buildOverlayValues(cmd, cfg)
	if err != nil {
		return err
	}

	harborValues, err = applyLicense(cmd, manager, cfg, harborValues)
	if err != nil {
		return err
	}

	kubeconfig, kubeContext := connectionDetails(cfg)

	helmClient, err := helm.NewClient(kubeconfig, kubeContext)
	if err != nil {
		return fmt.Errorf("create helm client: %w", err)
	}

	externalURL, _ := cmd.Flags().GetString(externalURLFlagName)

	factory := installer.NewFactory(
		helmClient, kubeconfig, kubeContext, installer.InstallTimeout(cfg))

	components, err := factory.InstallersFor(cfg, harborValues, externalURL)
	if err != nil {
		return err
	}

	for _, component := range components {
		notify.Activityf(out, "installing %s", component.Name)
		tmr.NewStage()

		err = component.Installer.Install(cmd.Context())
		if err != nil {
			return fmt.Errorf("install %s: %w", component.Name, err)
		}

		notify.SuccessWithTimerf(out, tmr, "%s installed", component.Name)
	}

	notify.Successf(out, "distribution installed")

	return nil
}

// buildOverlayValues loads the chart under --charts-dir, rewrites its image
// references to the proxy registry and returns the overlay values. With
// --validate the rewritten chart is rendered and its manifests checked.
func buildOverlayValues(cmd *cobra.Command, cfg *v1alpha1.Distribution) (string, error) {
	chartsDir, err := cmd.Flags().GetString(chartsDirFlagName)
	if err != nil || chartsDir == "" {
		return "", nil
	}

	out := cmd.OutOrStdout()
	notify.Activityf(out, "building overlay values from %s", chartsDir)

	chart, err := overlay.LoadChart(chartsDir)
	if err != nil {
		return "", err
	}

	rewriter := overlay.New(cfg.Spec.ProxyRegistry)

	valuesYAML, err := rewriter.ValuesYAML(chart)
	if err != nil {
		return "", err
	}

	validate, _ := cmd.Flags().GetBool(validateFlagName)
	if validate {
		err = validateOverlay(cmd.Context(), out, rewriter, chart)
		if err != nil {
			return "", err
		}
	}

	return valuesYAML, nil
}

// validateOverlay renders the chart with the rewritten values and checks
// every manifest against the Kubernetes schemas.
func validateOverlay(
	ctx context.Context,
	out io.Writer,
	rewriter *overlay.Overlay,
	chart *chartv2.Chart,
) error {
	manifests, err := rewriter.Render(chart)
	if err != nil {
		return err
	}

	validator, err := overlay.NewValidator(nil)
	if err != nil {
		return err
	}

	err = validator.ValidateManifests(ctx, manifests)
	if err != nil {
		return err
	}

	notify.Activityf(out, "validated %d rendered manifests", len(manifests))

	return nil
}

// applyLicense fetches proxy registry credentials for --license-id, stores
// them in a pull secret and references the secret from the overlay values.
func applyLicense(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	cfg *v1alpha1.Distribution,
	harborValues string,
) (string, error) {
	licenseID, err := cmd.Flags().GetString(licenseIDFlagName)
	if err != nil || licenseID == "" {
		return harborValues, nil
	}

	licenseURL := manager.Viper.GetString(licenseURLKey)
	if licenseURL == "" {
		return "", errLicenseURLRequired
	}

	out := cmd.OutOrStdout()
	notify.Activityf(out, "fetching registry credentials for license %s", licenseID)

	client := license.NewClient(licenseURL, manager.Viper.GetString(licenseTokenKey))

	credentials, err := client.RegistryCredentials(cmd.Context(), licenseID)
	if err != nil {
		return "", err
	}

	namespace := harborNamespace(cfg)
	kubeconfig, kubeContext := connectionDetails(cfg)

	clientset, err := k8s.NewClientset(kubeconfig, kubeContext)
	if err != nil {
		return "", fmt.Errorf("create kubernetes client: %w", err)
	}

	err = k8s.EnsurePullSecret(
		cmd.Context(), clientset, namespace, pullSecretName,
		credentials.Registry, credentials.Username, credentials.Password)
	if err != nil {
		return "", err
	}

	return appendImagePullSecret(harborValues, pullSecretName)
}

func harborNamespace(cfg *v1alpha1.Distribution) string {
	for _, chart := range cfg.Spec.Charts {
		if chart.RewriteImages {
			return chart.Namespace
		}
	}

	return v1alpha1.HarborNamespace
}

// appendImagePullSecret merges an imagePullSecrets entry into the overlay
// values.
func appendImagePullSecret(valuesYAML, secretName string) (string, error) {
	values := map[string]any{}

	if valuesYAML != "" {
		err := yaml.Unmarshal([]byte(valuesYAML), &values)
		if err != nil {
			return "", fmt.Errorf("parse overlay values: %w", err)
		}
	}

	values["imagePullSecrets"] = []any{map[string]any{"name": secretName}}

	merged, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal overlay values: %w", err)
	}

	return string(merged), nil
}
