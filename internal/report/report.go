// Package report renders ledger history as a protected spreadsheet.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// Filename is the attachment name offered for downloads.
	Filename    = "protected_logs.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timestampLayout = "2006-01-02 15:04:05"
)

var Headers = []string{"Timestamp", "Block", "Action", "Sample Code or Quantity"}

type Options struct {
	// Password protects the sheet against edits. Empty leaves it unprotected.
	Password string
	// Location for timestamps; UTC when nil.
	Location *time.Location
}

// Rows converts entries to spreadsheet rows in the given order.
func Rows(entries []domain.LedgerEntry, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.In(loc).Format(timestampLayout),
			e.PoolName,
			e.Action.Label(),
			detail(e),
		})
	}
	return rows
}

// detail shows sample codes for allocations and the quantity for everything else.
func detail(e domain.LedgerEntry) string {
	if e.Action == domain.ActionAllocate {
		return strings.Join(e.SampleCodes, ", ")
	}
	if e.Quantity != nil {
		return strconv.Itoa(*e.Quantity)
	}
	return ""
}

// WriteLedger writes an xlsx workbook with one sheet of ledger rows to w.
func WriteLedger(w io.Writer, entries []domain.LedgerEntry, opts Options) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, Headers); err != nil {
		return err
	}
	for i, row := range Rows(entries, opts.Location) {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if opts.Password != "" {
		if err := f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			Password:            opts.Password,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		}); err != nil {
			return fmt.Errorf("protect sheet: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("set row %d: %w", rowNum, err)
	}
	return nil
}
