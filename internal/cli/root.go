package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vaultgate",
	Short: "CPI authorization engine for custodial vaults",
	Long: "Previews, registers, revokes, and executes admin-approved cross-program\n" +
		"calls on a vault's behalf. A call executes only if its live bytes and\n" +
		"accounts reproduce a digest the admin registered in advance.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML (default ~/.vaultgate/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
