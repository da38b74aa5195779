package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/engine"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/storage"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/errors"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

// Service orchestrates extraction runs: run IDs, timing, structured logging
// and run summaries around the pure engine. One service instance serves both
// the comprehensive and third-party claim pipelines; the engine is shared,
// only the claim-type label differs.
type Service struct {
	engine *engine.Engine
	store  *storage.RunStore
	log    *logger.Logger
}

// NewService creates an extraction service
func NewService(eng *engine.Engine, store *storage.RunStore, log *logger.Logger) *Service {
	return &Service{
		engine: eng,
		store:  store,
		log:    log,
	}
}

// ResolveExpiry runs the engine over one claim's OCR text and party records.
// Parties are mutated in place; the returned summary references the run ID
// under which debugging detail was recorded. The context is accepted for
// interface symmetry; the engine itself never blocks or suspends.
func (s *Service) ResolveExpiry(ctx context.Context, claimType domain.ClaimType, ocrText string, parties []domain.ClaimParty) (*domain.RunSummary, []domain.MatchResult, error) {
	runID := uuid.New().String()
	log := s.log.WithRunID(runID).WithClaimType(string(claimType))
	start := time.Now()

	log.Info().
		Int("party_count", len(parties)).
		Int("text_bytes", len(ocrText)).
		Msg("starting license expiry extraction")

	results, err := s.engine.ResolveExpiryDates(ocrText, parties)
	if err != nil {
		log.Error().Err(err).Msg("extraction aborted")
		return nil, nil, errors.Contract(err)
	}

	summary := &domain.RunSummary{
		RunID:      runID,
		ClaimType:  claimType,
		PartyCount: len(parties),
		Resolved:   make(map[string]domain.MatchStrategy, len(results)),
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now(),
	}
	for _, res := range results {
		summary.Resolved[res.PartyID] = res.Strategy
	}
	for _, p := range parties {
		if _, ok := summary.Resolved[p.PartyID]; !ok {
			summary.Skipped = append(summary.Skipped, p.PartyID)
		}
	}
	s.store.Store(summary)

	log.Info().
		Int("matched", len(results)).
		Int("unmatched", len(summary.Skipped)).
		Int64("duration_ms", summary.DurationMs).
		Msg("license expiry extraction completed")

	return summary, results, nil
}

// GetRun retrieves a run summary by ID
func (s *Service) GetRun(runID string) *domain.RunSummary {
	return s.store.Get(runID)
}

// ParseClaimType maps a request label onto a claim type, defaulting to
// comprehensive for unknown or empty input.
func ParseClaimType(raw string) domain.ClaimType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.ClaimTypeThirdParty), "tp":
		return domain.ClaimTypeThirdParty
	default:
		return domain.ClaimTypeComprehensive
	}
}
