package http

import (
	"context"
	"net/http"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/app"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
)

// CorrectionRequester is the minimal interface needed to start a correction.
type CorrectionRequester interface {
	RequestCorrection(ctx context.Context, in app.RequestCorrectionInput) (domain.CorrectionHandle, error)
}

// CorrectionVerifier is the minimal interface needed to complete a correction.
type CorrectionVerifier interface {
	VerifyCorrection(ctx context.Context, handle domain.CorrectionHandle, otp string) (app.CorrectionResult, error)
}

// HandleRequestCorrection returns an HTTP handler for POST /corrections.
func HandleRequestCorrection(svc CorrectionRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req requestCorrectionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		handle, err := svc.RequestCorrection(r.Context(), app.RequestCorrectionInput{
			OldCode: req.OldCode,
			NewCode: req.NewCode,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, correctionHandleResponse{
			ContactAddress: handle.ContactAddress,
			OldCode:        handle.OldCode,
			NewCode:        handle.NewCode,
		})
	}
}

// HandleVerifyCorrection returns an HTTP handler for POST /corrections/verify.
func HandleVerifyCorrection(svc CorrectionVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		var req verifyCorrectionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.VerifyCorrection(r.Context(), domain.CorrectionHandle{
			ContactAddress: req.ContactAddress,
			OldCode:        req.OldCode,
			NewCode:        req.NewCode,
		}, req.OTP)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, verifyCorrectionResponse{
			OldCode:     res.Removed.Code,
			OldPoolID:   res.Removed.PoolID,
			NewCode:     res.Allocation.Sample.Code,
			NewPoolID:   res.Allocation.Pool.ID,
			NewPoolName: res.Allocation.Pool.Name,
		})
	}
}

type requestCorrectionRequest struct {
	OldCode string `json:"old_code"`
	NewCode string `json:"new_code"`
}

type correctionHandleResponse struct {
	ContactAddress string `json:"contact_address"`
	OldCode        string `json:"old_code"`
	NewCode        string `json:"new_code"`
}

type verifyCorrectionRequest struct {
	ContactAddress string `json:"contact_address"`
	OldCode        string `json:"old_code"`
	NewCode        string `json:"new_code"`
	OTP            string `json:"otp"`
}

type verifyCorrectionResponse struct {
	OldCode     string `json:"old_code"`
	OldPoolID   string `json:"old_pool_id"`
	NewCode     string `json:"new_code"`
	NewPoolID   string `json:"new_pool_id"`
	NewPoolName string `json:"new_pool_name"`
}
