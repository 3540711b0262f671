package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command chaining the full installation test.
func NewRunCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full installation test",
		Long: "Run the installation test end to end: create the environment, " +
			"install the charts, verify readiness and endpoints, check the " +
			"network report, and delete the environment. The environment is " +
			"torn down even when a stage fails.",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)
	bindPlatformFlags(cmd, manager)
	bindNetflowFlags(cmd, manager)
	bindLicenseFlags(cmd, manager)
	addEnvCreateFlags(cmd)
	addInstallFlags(cmd)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runAll(cmd, manager, injector, tmr)
		})

	return cmd
}

type stageFunc func(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	injector runtime.Injector,
	tmr timer.Timer,
) error

func runAll(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	injector runtime.Injector,
	tmr timer.Timer,
) error {
	cfg, err := loadDistribution(cmd, manager, tmr)
	if err != nil {
		return err
	}

	// Later stages reach the environment through the kubeconfig the create
	// stage writes, so a path is always set.
	if !cmd.Flags().Changed(writeKubeconfigFlagName) {
		path := filepath.Join(os.TempDir(), environmentName(cfg)+"-kubeconfig.yaml")
		_ = cmd.Flags().Set(writeKubeconfigFlagName, path)
	}

	err = runEnvCreate(cmd, manager, injector, tmr)
	if err != nil {
		return fmt.Errorf("create stage: %w", err)
	}

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{"install", runInstall},
		{"verify", runVerify},
		{"netcheck", runNetcheck},
	}

	var stageErr error

	for _, stage := range stages {
		stageErr = stage.fn(cmd, manager, injector, tmr)
		if stageErr != nil {
			stageErr = fmt.Errorf("%s stage: %w", stage.name, stageErr)
			notify.Warningf(cmd.ErrOrStderr(), "%s stage failed, tearing the environment down", stage.name)

			break
		}
	}

	deleteErr := runEnvDelete(cmd, manager, injector, tmr)

	if stageErr != nil {
		return stageErr
	}

	if deleteErr != nil {
		return fmt.Errorf("delete stage: %w", deleteErr)
	}

	notify.Successf(cmd.OutOrStdout(), "installation test passed")

	return nil
}
