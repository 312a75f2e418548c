package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "samplefit",
	Short: "Sample allocation service",
	Long: `samplefit assigns incoming sample codes to regional capacity pools.

Available subcommands:
  serve   - Run the HTTP API
  migrate - Apply database migrations
  seed    - Create the configured region pools
  export  - Write the ledger to a protected spreadsheet`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
