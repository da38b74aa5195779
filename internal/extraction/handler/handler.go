package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/service"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/errors"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/httputil"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

const maxRequestSize = 10 << 20 // 10MB of OCR text and party records

// Handler handles HTTP requests for license expiry extraction
type Handler struct {
	service *service.Service
	log     *logger.Logger
}

// NewHandler creates an extraction handler
func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		log:     log,
	}
}

type extractRequest struct {
	ClaimType    string              `json:"claim_type" validate:"omitempty,oneof=comprehensive third_party tp"`
	OCRText      string              `json:"ocr_text" validate:"required"`
	ClaimParties []domain.ClaimParty `json:"claim_parties" validate:"required,min=1"`
}

type extractResponse struct {
	RunID        string               `json:"run_id"`
	ClaimParties []domain.ClaimParty  `json:"claim_parties"`
	Matches      []domain.MatchResult `json:"matches"`
}

// Extract handles POST /claims/extract-license-expiry.
// The party records come back with License_Expiry_Date filled in; populated
// fields are never overwritten.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, errors.BadRequest("invalid JSON body"))
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	claimType := service.ParseClaimType(req.ClaimType)
	summary, matches, err := h.service.ResolveExpiry(r.Context(), claimType, req.OCRText, req.ClaimParties)
	if err != nil {
		h.log.Error().Err(err).Msg("extraction failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, extractResponse{
		RunID:        summary.RunID,
		ClaimParties: req.ClaimParties,
		Matches:      matches,
	})
}

// GetRun handles GET /claims/extractions/{runID}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		httputil.Error(w, errors.BadRequest("missing runID parameter"))
		return
	}

	run := h.service.GetRun(runID)
	if run == nil {
		httputil.Error(w, errors.NotFound("extraction run"))
		return
	}

	httputil.JSON(w, http.StatusOK, run)
}
