package cmd

import (
	"fmt"

	runtime "github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/io/configmanager"
	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/berth-dev/berth/pkg/svc/verifier"
	"github.com/berth-dev/berth/pkg/ui/notify"
	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the installed distribution is ready",
		Long: "Verify the installation tier by tier: wait for every declared " +
			"resource to become ready in order, then check that every declared " +
			"service has live endpoints.",
		SilenceUsage: true,
	}

	manager := newConfigManager(cmd)

	cmd.RunE = newRunE(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return runVerify(cmd, manager, injector, tmr)
		})

	return cmd
}

func runVerify(
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

	kubeconfig, kubeContext := connectionDetails(cfg)

	clientset, err := k8s.NewClientset(kubeconfig, kubeContext)
	if err != nil {
		return fmt.Errorf("create kubernetes client: %w", err)
	}

	dynamicClient, err := k8s.NewDynamicClient(kubeconfig, kubeContext)
	if err != nil {
		return fmt.Errorf("create dynamic client: %w", err)
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "🔍", "Verify installation...")
	tmr.NewStage()

	clients := verifier.Clients{Kubernetes: clientset, Dynamic: dynamicClient}

	err = verifier.New(clients, waitTimeout(cfg), out).Run(cmd.Context(), cfg.Spec.Verify)
	if err != nil {
		return fmt.Errorf("verify installation: %w", err)
	}

	notify.SuccessWithTimerf(out, tmr, "installation verified")

	return nil
}
