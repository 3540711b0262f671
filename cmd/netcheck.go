package cmd

import (
	"fmt"
	"strings"

	"github.com/berth-dev/berth/pkg/client/netflow"
	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/netcheck"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewNetcheckCmd creates the netcheck command.
func NewNetcheckCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netcheck",
		Short: "Check observed network traffic against the allowlist",
		Long: "Fetch the domains the environment reached during the test " +
			"window and fail when any of them is absent from the configured " +
			"allowlist.",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)
	bindNetflowFlags(cmd, manager)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runNetcheck(cmd, manager, injector, tmr)
		})

	return cmd
}

func runNetcheck(
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

	netflowURL := manager.Viper.GetString(netflowURLKey)
	if netflowURL == "" {
		return errNetflowURLRequired
	}

	out := cmd.OutOrStdout()
	name := environmentName(cfg)

	notify.Titlef(out, "🌐", "Check network traffic...")
	notify.Activityf(out, "fetching network report for %q", name)
	tmr.NewStage()

	client := netflow.NewClient(netflowURL, manager.Viper.GetString(netflowTokenKey))

	observed, err := client.ObservedDomains(cmd.Context(), name)
	if err != nil {
		return err
	}

	result := netcheck.Check(observed, cfg.Spec.Network.Allowlist)

	if result.Observed == 0 {
		notify.Warningf(out, "no network traffic observed for %q", name)
		notify.Successf(out, "network check passed (empty report)")

		return nil
	}

	if !result.OK() {
		return fmt.Errorf("observed domains outside the allowlist: %s",
			strings.Join(result.Disallowed, ", "))
	}

	notify.SuccessWithTimerf(out, tmr,
		"network traffic within allowlist (%d observed domains)", result.Observed)

	return nil
}
