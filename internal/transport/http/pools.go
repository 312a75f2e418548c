package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
)

// PoolLister is the minimal interface needed to list pools.
type PoolLister interface {
	ListPools(ctx context.Context) ([]domain.Pool, error)
}

// PoolProcessor is the minimal interface needed for bulk processing.
type PoolProcessor interface {
	Process(ctx context.Context, in app.ProcessInput) (app.ProcessResult, error)
}

// HandleListPools returns an HTTP handler for GET /pools.
func HandleListPools(svc PoolLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		pools, err := svc.ListPools(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPoolResponses(pools))
	}
}

// HandleProcessPool returns an HTTP handler for POST /pools/{id}/process.
func HandleProcessPool(svc PoolProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID, ok := parseProcessPath(r.URL.Path)
		if !ok {
			NotFoundHandler().ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req processRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Process(r.Context(), app.ProcessInput{PoolID: poolID, Count: req.Count})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, processResponse{
			Pool:    toPoolResponse(res.Pool),
			EntryID: res.Entry.ID,
		})
	}
}

func parseProcessPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "pools" || parts[2] != "process" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type processRequest struct {
	Count int `json:"count"`
}

type processResponse struct {
	Pool    poolResponse `json:"pool"`
	EntryID string       `json:"entry_id"`
}

type poolResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Allocated int    `json:"allocated"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

func toPoolResponse(p domain.Pool) poolResponse {
	return poolResponse{
		ID:        p.ID,
		Name:      p.Name,
		Allocated: p.Allocated,
		Total:     p.Total,
		Remaining: p.Remaining(),
	}
}

func toPoolResponses(pools []domain.Pool) []poolResponse {
	out := make([]poolResponse, 0, len(pools))
	for _, p := range pools {
		out = append(out, toPoolResponse(p))
	}
	return out
}
