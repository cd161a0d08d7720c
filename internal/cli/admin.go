package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transporteur/marketplace/internal/core/service"
	"github.com/transporteur/marketplace/internal/infrastructure/db/sqlstore"
)

// CreateAdminCmd provisions an administrator account. Administrators cannot
// self-register through the API.
func CreateAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create an ADMIN account directly in the store.

Examples:
  marketplace create-admin --email root@example.com --password 's3cret!'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			store, err := openConfiguredStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			auth := service.NewAuthService(sqlstore.NewAccountRepository(store), nil, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
			account, err := auth.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s created (id %d)\n", okMark, account.Email, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password (at least 6 characters)")

	return cmd
}
