package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "shootout",
		Short: "CLI tool for the shootout API",
		Long: `shootout is a CLI tool for interacting with the shootout JSON API.

It covers what the chat adapter does: registering players, viewing
inventories, granting equipment, arming vests, and resolving shoot and
revive actions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SHOOTOUT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "API token (env: SHOOTOUT_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newGrantCmd())
	rootCmd.AddCommand(newVestCmd())
	rootCmd.AddCommand(newShootCmd())
	rootCmd.AddCommand(newReviveCmd())
	rootCmd.AddCommand(newMarkerFailureCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
