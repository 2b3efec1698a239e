package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
	"github.com/YelzhanWeb/qrdine/internal/qrcode"
)

type TableHandler struct {
	tables  interfaces.TableService
	venues  interfaces.VenueRepository
	auth    *Authenticator
	baseURL string
	logger  logger.Logger
}

func NewTableHandler(
	tables interfaces.TableService,
	venues interfaces.VenueRepository,
	auth *Authenticator,
	baseURL string,
	lgr logger.Logger,
) *TableHandler {
	return &TableHandler{tables: tables, venues: venues, auth: auth, baseURL: baseURL, logger: lgr}
}

type CreateTableRequest struct {
	Code string  `json:"code"`
	Name string  `json:"name,omitempty"`
	Zone *string `json:"zone,omitempty"`
}

type CreateTableResponse struct {
	TableID string `json:"table_id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	CodeURL string `json:"code_url"`
}

// CreateTable handles POST /tables for authenticated venue staff.
func (h *TableHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	principal, err := h.auth.Principal(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tbl, err := h.tables.CreateTable(r.Context(), interfaces.CreateTableCommand{
		Code:      req.Code,
		Name:      req.Name,
		Zone:      req.Zone,
		Principal: principal,
	})
	if err != nil {
		h.logger.Error("table_creation_failed", "Failed to create table", "", nil, err)
		writeDomainError(w, err)
		return
	}

	// The printable payload uses the venue slug, not the storage id.
	codeURL := ""
	if venue, err := h.venues.FindByID(r.Context(), tbl.VenueID); err == nil {
		codeURL = qrcode.Generate(h.baseURL, venue.Slug, tbl.Code)
	}

	writeJSON(w, http.StatusCreated, CreateTableResponse{
		TableID: tbl.ID,
		Code:    tbl.Code,
		Name:    tbl.Name,
		CodeURL: codeURL,
	})
}
