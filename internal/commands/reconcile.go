package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Roll forward stalled onboarding attempts",
		Long:  `Scans for onboarding attempts that consumed their invitation but never finished (crashed process, abandoned request, failed downstream write) and resumes them from their last completed stage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			finished, err := app.reconciler.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Completed %d stalled attempt(s)\n", finished)
			return nil
		},
	}
}
