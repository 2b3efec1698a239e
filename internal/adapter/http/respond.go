package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/qrdine/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   domain.Kind       `json:"kind,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindFailedPrecondition:
		return http.StatusUnprocessableEntity
	case domain.KindAlreadyExists, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeDomainError maps a classified error to a response. Internal
// details never reach the client.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	message := err.Error()
	if kind == domain.KindInternal {
		message = "internal server error"
	}
	writeJSON(w, statusForKind(kind), ErrorResponse{Error: message, Kind: kind})
}

func writeValidationErrors(w http.ResponseWriter, errs []ValidationError) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Kind:   domain.KindInvalidArgument,
		Errors: errs,
	})
}
