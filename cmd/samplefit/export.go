package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/config"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var exportFlags struct {
	out    string
	pool   string
	action string
	date   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger to a protected spreadsheet",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.out, "out", "o", report.Filename, "output file")
	f.StringVar(&exportFlags.pool, "pool", "", "only entries for this pool id")
	f.StringVar(&exportFlags.action, "action", "", "only entries with this action")
	f.StringVar(&exportFlags.date, "date", "", "only entries on this UTC day (YYYY-MM-DD)")
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.Store == config.StoreMemory {
		return fmt.Errorf("export needs STORE=%s", config.StorePostgres)
	}

	filter := domain.LedgerFilter{PoolID: exportFlags.pool, Action: domain.LedgerAction(exportFlags.action)}
	if exportFlags.date != "" {
		d, err := time.Parse(time.DateOnly, exportFlags.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		filter.Date = &d
	}

	if err := rt.openStore(cmd.Context(), false); err != nil {
		return err
	}
	entries, err := app.NewLedgerService(rt.store, rt.store).ListLedger(cmd.Context(), filter)
	if err != nil {
		return err
	}

	file, err := os.Create(exportFlags.out)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, file.Close()) }()

	if err := report.WriteLedger(file, entries, report.Options{Password: rt.cfg.ExportPassword}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(entries), exportFlags.out)
	return nil
}
