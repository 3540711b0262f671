package cmd

import (
	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/scaffolder"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
)

const (
	outputFlagName = "output"
	forceFlagName  = "force"
)

// NewInitCmd creates the init command.
func NewInitCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Generate a starter berth.yaml",
		Long:         "Generate a berth.yaml with the packaged Harbor defaults.",
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.String(outputFlagName, "berth.yaml", "path the config is written to")
	flags.Bool(forceFlagName, false, "overwrite an existing config file")

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return runInit(cmd, tmr)
		})

	return cmd
}

func runInit(cmd *cobra.Command, tmr timer.Timer) error {
	tmr.Start()

	output, err := cmd.Flags().GetString(outputFlagName)
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool(forceFlagName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "⛵", "Initialize config...")

	err = scaffolder.NewScaffolder(out).Scaffold(output, force)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, tmr, "config initialized")

	return nil
}
