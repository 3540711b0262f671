package cmd

import (
	"errors"
	"fmt"
	"os"

	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewEnvCmd creates the env command group.
func NewEnvCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage ephemeral test environments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Help output cannot fail at runtime.
			_ = cmd.Help()

			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewEnvCreateCmd(runtimeContainer))
	cmd.AddCommand(NewEnvDeleteCmd(runtimeContainer))

	return cmd
}

// NewEnvCreateCmd creates the env create command.
func NewEnvCreateCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "create",
		Short:        "Create the test environment",
		Long:         "Create the ephemeral environment the installation test runs against.",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)
	bindPlatformFlags(cmd, manager)
	addEnvCreateFlags(cmd)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runEnvCreate(cmd, manager, injector, tmr)
		})

	return cmd
}

// NewEnvDeleteCmd creates the env delete command.
func NewEnvDeleteCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "delete",
		Short:        "Delete the test environment",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)
	bindPlatformFlags(cmd, manager)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runEnvDelete(cmd, manager, injector, tmr)
		})

	return cmd
}

func addEnvCreateFlags(cmd *cobra.Command) {
	cmd.Flags().String(writeKubeconfigFlagName, "",
		"write the environment kubeconfig to this path after creation")
}

func runEnvCreate(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	injector runtime.Injector,
	tmr timer.Timer,
) error {
	tmr.Start()

	cfg, err := loadDistribution(cmd, manager, tmr)
	if err != nil {
		return err
	}

	prov, err := resolveProvisioner(injector, manager, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := environmentName(cfg)

	notify.Titlef(out, "🚀", "Create environment...")
	notify.Activityf(out, "creating environment %q", name)
	tmr.NewStage()

	err = prov.Create(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("create environment %q: %w", name, err)
	}

	err = persistKubeconfig(cmd, manager, prov, name)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, tmr, "environment %q created", name)

	return nil
}

// persistKubeconfig writes the environment kubeconfig to the path given by
// --write-kubeconfig and points the loaded config at it, so later stages in
// the same process reach the new environment.
func persistKubeconfig(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	prov provisioner.EnvironmentProvisioner,
	name string,
) error {
	path, err := cmd.Flags().GetString(writeKubeconfigFlagName)
	if err != nil || path == "" {
		return nil
	}

	kubeconfig, err := prov.Kubeconfig(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("fetch kubeconfig for %q: %w", name, err)
	}

	err = os.WriteFile(path, []byte(kubeconfig), 0o600)
	if err != nil {
		return fmt.Errorf("write kubeconfig: %w", err)
	}

	manager.Config.Spec.Environment.Connection.Kubeconfig = path
	notify.Activityf(cmd.OutOrStdout(), "kubeconfig written to %s", path)

	return nil
}

func runEnvDelete(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	injector runtime.Injector,
	tmr timer.Timer,
) error {
	tmr.Start()

	cfg, err := loadDistribution(cmd, manager, tmr)
	if err != nil {
		return err
	}

	prov, err := resolveProvisioner(injector, manager, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	name := environmentName(cfg)

	notify.Titlef(out, "🔥", "Delete environment...")
	notify.Activityf(out, "deleting environment %q", name)
	tmr.NewStage()

	err = prov.Delete(cmd.Context(), name)
	if errors.Is(err, provisioner.ErrEnvironmentNotFound) {
		notify.Warningf(out, "environment %q not found", name)

		return nil
	}

	if err != nil {
		return fmt.Errorf("delete environment %q: %w", name, err)
	}

	notify.SuccessWithTimerf(out, tmr, "environment %q deleted", name)

	return nil
}
