package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Set the API endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userconfig.SetAPIURL(args[0]); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Printf("API endpoint set to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			url := cfg.APIURL
			if url == "" {
				url = defaultAPIURL + " (default)"
			}
			fmt.Printf("API endpoint: %s\n", url)
			if cfg.DefaultCity != "" {
				fmt.Printf("Default city: %s\n", cfg.DefaultCity)
			}
			return nil
		},
	})

	return cmd
}
