package main

import (
	"fmt"

	"github.com/Sparsh-Bhaskar/Sample-Fit/migrations"
	"github.com/spf13/cobra"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		pool, err := rt.connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if !migrateStatus {
			if err := migrations.Apply(cmd.Context(), pool); err != nil {
				return err
			}
		}
		status, err := migrations.Status(cmd.Context(), pool)
		if err != nil {
			return err
		}
		for _, m := range status {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", state, m.Name)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "only list migrations and their state")
}
