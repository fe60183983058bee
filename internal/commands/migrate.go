package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/tenantflow/internal/config"
	"github.com/beesaferoot/tenantflow/internal/migrate"
	"github.com/beesaferoot/tenantflow/internal/store"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateStatusCmd(), migrateValidateCmd())
	return cmd
}

func getMigrator() (*migrate.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return migrate.NewMigrator(db), nil
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := getMigrator()
			if err != nil {
				return err
			}
			if err := migrator.Up(); err != nil {
				return fmt.Errorf("failed to apply migrations: %v", err)
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := getMigrator()
			if err != nil {
				return err
			}
			if err := migrator.Down(); err != nil {
				return fmt.Errorf("failed to revert migration: %v", err)
			}
			fmt.Println("Last migration reverted")
			return nil
		},
	}
}

func migrateValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every registered model has a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := getMigrator()
			if err != nil {
				return err
			}

			missing := migrator.MissingTables()
			if len(missing) == 0 {
				fmt.Println("Schema covers all registered models")
				return nil
			}
			for _, name := range missing {
				fmt.Printf("Missing table for model: %s\n", name)
			}
			return fmt.Errorf("%d model(s) have no table; run 'migrate up'", len(missing))
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := getMigrator()
			if err != nil {
				return err
			}

			applied, err := migrator.GetAppliedVersions()
			if err != nil {
				return fmt.Errorf("failed to get applied migrations: %v", err)
			}

			fmt.Printf("%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, m := range migrator.Migrations() {
				status := "Pending"
				if applied[m.Version] {
					status = "Applied"
				}
				fmt.Printf("%-16s  %-30s  %-8s\n", m.Version, m.Name, status)
			}
			return nil
		},
	}
}
