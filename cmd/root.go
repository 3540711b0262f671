package cmd

import (
	"fmt"

	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := runtime.NewRuntime()

	cmd := &cobra.Command{
		Use:   "berth",
		Short: "berth packages and installation-tests a Harbor distribution",
		Long: "berth drives the installation test flow for a packaged Harbor " +
			"distribution: provision an ephemeral environment, install the " +
			"charts with proxied image references, verify readiness and " +
			"endpoints, and check observed network traffic against the " +
			"allowlist.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.AddCommand(NewInitCmd(runtimeContainer))
	cmd.AddCommand(NewEnvCmd(runtimeContainer))
	cmd.AddCommand(NewInstallCmd(runtimeContainer))
	cmd.AddCommand(NewVerifyCmd(runtimeContainer))
	cmd.AddCommand(NewNetcheckCmd(runtimeContainer))
	cmd.AddCommand(NewRunCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// Help output cannot fail at runtime.
	_ = cmd.Help()

	return nil
}
