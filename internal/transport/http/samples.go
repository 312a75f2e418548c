package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
)

// SampleAllocator is the minimal interface needed to allocate a sample.
type SampleAllocator interface {
	Allocate(ctx context.Context, code string) (app.AllocationResult, error)
}

// HandleAllocateSample returns an HTTP handler for POST /samples.
func HandleAllocateSample(svc SampleAllocator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req allocateSampleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Allocate(r.Context(), req.Code)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, allocateSampleResponse{
			Code:      res.Sample.Code,
			PoolID:    res.Pool.ID,
			PoolName:  res.Pool.Name,
			Remaining: res.Pool.Remaining(),
			CreatedAt: res.Sample.CreatedAt,
		})
	}
}

type allocateSampleRequest struct {
	Code string `json:"code"`
}

type allocateSampleResponse struct {
	Code      string    `json:"code"`
	PoolID    string    `json:"pool_id"`
	PoolName  string    `json:"pool_name"`
	Remaining int       `json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
}
