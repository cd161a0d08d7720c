package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/transporteur/marketplace/internal/pkg/config"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// NewRootCmd assembles the marketplace command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "marketplace",
		Short:   "Transport brokerage marketplace",
		Version: version,
		Long: `marketplace connects clients with carriers: missions are booked, priced,
paid and tracked through an HTTP API.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(ServeCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(CreateAdminCmd())
	root.AddCommand(DoctorCmd())

	return root
}

// loadConfig is swapped in tests.
var loadConfig = func(ctx context.Context) (*config.Config, error) {
	return config.Load(ctx)
}
