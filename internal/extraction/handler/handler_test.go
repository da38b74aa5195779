package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/engine"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/handler"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/service"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/storage"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

const sampleReport = "Party (1)\n" +
	"ID Number: 108366838\n" +
	"Expiry Date: 08/07/2028\n"

func newTestRouter() http.Handler {
	log := logger.Nop()
	eng := engine.New(engine.DefaultConfig(), log)
	svc := service.NewService(eng, storage.NewRunStore(time.Hour), log)
	h := handler.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/api/v1/claims/extract-license-expiry", h.Extract)
	r.Get("/api/v1/claims/extractions/{runID}", h.GetRun)
	return r
}

type extractEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		RunID        string               `json:"run_id"`
		ClaimParties []domain.ClaimParty  `json:"claim_parties"`
		Matches      []domain.MatchResult `json:"matches"`
	} `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func postExtract(t *testing.T, router http.Handler, body any) (*httptest.ResponseRecorder, extractEnvelope) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/extract-license-expiry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope extractEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestExtract_ResolvesParties(t *testing.T) {
	router := newTestRouter()

	rec, envelope := postExtract(t, router, map[string]any{
		"claim_type": "comprehensive",
		"ocr_text":   sampleReport,
		"claim_parties": []domain.ClaimParty{
			{PartyID: "108366838"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.RunID)
	require.Len(t, envelope.Data.ClaimParties, 1)
	assert.Equal(t, "08/07/2028", envelope.Data.ClaimParties[0].LicenseExpiryDate)
	require.Len(t, envelope.Data.Matches, 1)
	assert.Equal(t, domain.StrategySectionLabel, envelope.Data.Matches[0].Strategy)
}

func TestExtract_MissingOCRText(t *testing.T) {
	router := newTestRouter()

	rec, envelope := postExtract(t, router, map[string]any{
		"claim_parties": []domain.ClaimParty{{PartyID: "108366838"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestExtract_EmptyPartyList(t *testing.T) {
	router := newTestRouter()

	rec, envelope := postExtract(t, router, map[string]any{
		"ocr_text":      sampleReport,
		"claim_parties": []domain.ClaimParty{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestExtract_MalformedJSON(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/extract-license-expiry", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope extractEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "BAD_REQUEST", envelope.Error.Code)
}

func TestGetRun_RoundTrip(t *testing.T) {
	router := newTestRouter()
	_, envelope := postExtract(t, router, map[string]any{
		"ocr_text":      sampleReport,
		"claim_parties": []domain.ClaimParty{{PartyID: "108366838"}},
	})
	require.NotEmpty(t, envelope.Data.RunID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/extractions/"+envelope.Data.RunID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var runEnvelope struct {
		Success bool              `json:"success"`
		Data    domain.RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runEnvelope))
	assert.True(t, runEnvelope.Success)
	assert.Equal(t, envelope.Data.RunID, runEnvelope.Data.RunID)
	assert.Equal(t, 1, runEnvelope.Data.PartyCount)
}

func TestGetRun_Unknown(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/extractions/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var envelope extractEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
