package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidDate        = "invalid_date"
	codeInvalidLimit       = "invalid_limit"
	codeForbidden          = "forbidden"
	codeUnavailable        = "unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps a service error to its HTTP status by kind.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	msg := de.Message
	// Partial and delivery failures carry useful detail from the cause.
	if de.Kind == domain.KindPartial || de.Kind == domain.KindDelivery {
		msg = err.Error()
	}
	writeError(w, statusForKind(de.Kind), de.Code, msg)
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindCapacity, domain.KindPartial:
		return http.StatusConflict
	case domain.KindOTP:
		return http.StatusUnauthorized
	case domain.KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
