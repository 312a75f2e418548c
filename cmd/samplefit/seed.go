package main

import (
	"fmt"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/config"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured region pools",
	Long: `Create one pool per configured region. Existing pools are left untouched,
so running seed again never resets counters.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		if rt.cfg.Store == config.StoreMemory {
			return fmt.Errorf("seed needs STORE=%s", config.StorePostgres)
		}
		if err := rt.openStore(cmd.Context(), true); err != nil {
			return err
		}
		if err := rt.seed(cmd.Context()); err != nil {
			return err
		}

		pools, err := rt.store.ListPools(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range pools {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %4d/%d\n", p.Name, p.Allocated, p.Total)
		}
		return nil
	},
}
