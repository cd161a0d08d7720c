package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/transporteur/marketplace/internal/infrastructure/db/sqlstore"
)

// MigrateCmd groups the schema migration subcommands.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the relational schema",
		Long: `Apply or roll back the embedded migrations of the configured store
(STORE_DRIVER=sqlite or postgres).

Examples:
  marketplace migrate up
  marketplace migrate version
  marketplace migrate down`,
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", (*sqlstore.Store).MigrateUp))
	cmd.AddCommand(migrateStep("down", "Roll back all migrations", (*sqlstore.Store).MigrateDown))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			version, dirty, err := store.MigrationVersion()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dirty {
				fmt.Fprintf(out, "%s schema version %d (dirty)\n", warnMark, version)
				return nil
			}
			fmt.Fprintf(out, "schema version %d\n", version)
			return nil
		},
	})

	return cmd
}

func migrateStep(use, short string, step func(*sqlstore.Store) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := step(store); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			version, _, err := store.MigrationVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s migrate %s (%s): schema version %d\n",
				okMark, use, color.New(color.FgCyan).Sprint(store.Dialect()), version)
			return nil
		},
	}
}

func openConfiguredStore(cmd *cobra.Command) (*sqlstore.Store, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return openStore(cmd.Context(), cfg)
}
