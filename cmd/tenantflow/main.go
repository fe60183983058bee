package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/tenantflow/internal/commands"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tenantflow",
		Short: "Tenant invitation and onboarding service",
	}

	rootCmd.AddCommand(
		commands.ServeCmd(),
		commands.MigrateCmd(),
		commands.InviteCmd(),
		commands.ReconcileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
