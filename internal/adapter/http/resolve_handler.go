package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/qrcode"
)

// ResolveHandler serves the two sides of the QR contract: decoding a
// scanned payload and producing the canonical printable form.
type ResolveHandler struct {
	baseURL string
	logger  logger.Logger
}

func NewResolveHandler(baseURL string, lgr logger.Logger) *ResolveHandler {
	return &ResolveHandler{baseURL: strings.TrimRight(baseURL, "/"), logger: lgr}
}

type ResolveResponse struct {
	VenueSlug string `json:"venue_slug"`
	TableCode string `json:"table_code"`
}

type GenerateResponse struct {
	CodeURL string `json:"code_url"`
}

// Resolve handles GET /resolve?code=...
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	code := r.URL.Query().Get("code")
	ref, err := qrcode.Resolve(code)
	if err != nil {
		if errors.Is(err, qrcode.ErrUnrecognized) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unrecognized code format"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{VenueSlug: ref.VenueSlug, TableCode: ref.TableCode})
}

// Generate handles GET /qr?venue=...&table=... and returns the
// canonical URL to encode into a printable QR image.
func (h *ResolveHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	venue := strings.TrimSpace(r.URL.Query().Get("venue"))
	table := strings.TrimSpace(r.URL.Query().Get("table"))

	var errs []ValidationError
	if venue == "" {
		errs = append(errs, ValidationError{Field: "venue", Message: "venue slug is required"})
	}
	if table == "" {
		errs = append(errs, ValidationError{Field: "table", Message: "table code is required"})
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{CodeURL: qrcode.Generate(h.baseURL, venue, table)})
}
