package http

import (
	"context"
	"net/http"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
)

type DashboardReader interface {
	Dashboard(ctx context.Context) (app.Dashboard, error)
}

// HandleDashboard returns an HTTP handler for GET /dashboard.
func HandleDashboard(svc DashboardReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		d, err := svc.Dashboard(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboardResponse{
			Pools:  toPoolResponses(d.Pools),
			Recent: toLedgerResponses(d.Recent),
		})
	}
}

type dashboardResponse struct {
	Pools  []poolResponse        `json:"pools"`
	Recent []ledgerEntryResponse `json:"recent"`
}
