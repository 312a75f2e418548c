package http

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/report"
)

// LedgerLister is the minimal interface needed to read the ledger.
type LedgerLister interface {
	ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)
}

// HandleListLedger returns an HTTP handler for GET /ledger.
func HandleListLedger(svc LedgerLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		filter, ok := parseLedgerFilter(w, r.URL.Query())
		if !ok {
			return
		}
		entries, err := svc.ListLedger(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLedgerResponses(entries))
	}
}

// HandleExportLedger returns an HTTP handler for GET /ledger/export that
// streams the filtered ledger as a protected workbook.
func HandleExportLedger(svc LedgerLister, password string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		filter, ok := parseLedgerFilter(w, r.URL.Query())
		if !ok {
			return
		}
		entries, err := svc.ListLedger(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := report.WriteLedger(&buf, entries, report.Options{Password: password}); err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		w.Header().Set("Content-Type", report.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// parseLedgerFilter reads pool, action, date and limit. Empty and "None"
// values are ignored. It writes the error response itself on failure.
func parseLedgerFilter(w http.ResponseWriter, q url.Values) (domain.LedgerFilter, bool) {
	var f domain.LedgerFilter
	f.PoolID = queryValue(q, "pool")
	f.Action = domain.LedgerAction(queryValue(q, "action"))

	if raw := queryValue(q, "date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "date must be YYYY-MM-DD")
			return domain.LedgerFilter{}, false
		}
		f.Date = &d
	}
	if raw := queryValue(q, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be a non-negative integer")
			return domain.LedgerFilter{}, false
		}
		f.Limit = n
	}
	return f, true
}

func queryValue(q url.Values, key string) string {
	v := strings.TrimSpace(q.Get(key))
	if v == "None" {
		return ""
	}
	return v
}

type ledgerEntryResponse struct {
	ID          string    `json:"id"`
	PoolID      string    `json:"pool_id"`
	PoolName    string    `json:"pool_name"`
	Action      string    `json:"action"`
	ActionLabel string    `json:"action_label"`
	Quantity    *int      `json:"quantity,omitempty"`
	SampleCodes []string  `json:"sample_codes"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLedgerResponses(entries []domain.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		codes := e.SampleCodes
		if codes == nil {
			codes = []string{}
		}
		out = append(out, ledgerEntryResponse{
			ID:          e.ID,
			PoolID:      e.PoolID,
			PoolName:    e.PoolName,
			Action:      string(e.Action),
			ActionLabel: e.Action.Label(),
			Quantity:    e.Quantity,
			SampleCodes: codes,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
