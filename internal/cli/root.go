package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/commands"
	"github.com/genlink-dev/genlink/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "genlink",
	Short: "GenLink - tech help for seniors, from volunteers",
	Long: `GenLink CLI - Volunteer tooling for the GenLink portal.

GenLink connects senior citizens who need help with everyday technology
to volunteers nearby. Sign in, browse open help requests, take one on,
and mark it resolved when you are done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	},
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("genlink version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewReportsCmd())
	rootCmd.AddCommand(commands.NewAvailabilityCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewVolunteersCmd())
	rootCmd.AddCommand(commands.NewTypesCmd())
	rootCmd.AddCommand(commands.NewConfigCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
