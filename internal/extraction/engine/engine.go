package engine

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

// ErrNilParties signals a programming-contract violation: the caller handed
// over no party collection at all. Data-quality problems never produce
// errors; this does, loudly.
var ErrNilParties = errors.New("claim parties collection must not be nil")

// Config holds the engine tunables. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	ProximityWindow     int
	ContextWindow       int
	SimilarityThreshold float64
	MaxHammingDistance  int
	FuzzyScanCap        int
	SentinelDates       []string
}

// DefaultConfig returns the tunables the production OCR corpus was calibrated
// against.
func DefaultConfig() Config {
	return Config{
		ProximityWindow:     500,
		ContextWindow:       100,
		SimilarityThreshold: 0.85,
		MaxHammingDistance:  2,
		FuzzyScanCap:        8,
		SentinelDates:       []string{"19/11/2025"},
	}
}

// expiryPlaceholders are the "unknown" values upstream systems leave in the
// expiry field. Only parties carrying one of these (or an empty field) are
// ever mutated; populated fields are left untouched.
var expiryPlaceholders = map[string]struct{}{
	"":             {},
	"null":         {},
	"nan":          {},
	"not identify": {},
}

// noLicenseIndicators mark a party as holding no driving license at all
var noLicenseIndicators = []string{
	"لا يوجد رخصة",
	"لايوجد رخصة",
	"بدون رخصة",
	"no license",
	"without license",
}

// Engine associates claim parties with the license-expiry dates buried in
// bilingual OCR text. It is purely computational: no I/O, no network, no
// state shared across invocations. Callers must not share one party
// collection across concurrent invocations; the engine mutates it in place.
type Engine struct {
	cfg       Config
	validator *DateValidator
	extractor *Extractor
	matcher   *Matcher
	log       *logger.Logger
	now       func() time.Time
}

// New creates an extraction engine with an injected logger
func New(cfg Config, log *logger.Logger) *Engine {
	validator := NewDateValidator(cfg.SentinelDates)
	return &Engine{
		cfg:       cfg,
		validator: validator,
		extractor: NewExtractor(validator, cfg.ProximityWindow, cfg.ContextWindow),
		matcher:   NewMatcher(validator, cfg),
		log:       log,
		now:       time.Now,
	}
}

// ResolveExpiryDates fills in the LicenseExpiryDate of every party whose
// current value is empty or a known placeholder, and returns the match
// results for observability. The parties slice is mutated in place; no new
// collection is allocated. Re-running on an already-resolved collection
// changes nothing.
func (e *Engine) ResolveExpiryDates(ocrText string, parties []domain.ClaimParty) ([]domain.MatchResult, error) {
	if parties == nil {
		return nil, ErrNilParties
	}

	sections := SegmentSections(ocrText)
	extracts := make([]SectionExtract, 0, len(sections))
	for _, sec := range sections {
		extracts = append(extracts, e.extractor.ExtractSection(ocrText, sec))
	}

	sectionPairs := e.matcher.SectionPairs(extracts)
	docPairs := e.matcher.DocumentPairs(ocrText, e.cfg.FuzzyScanCap)
	datePool := discoveryOrderDates(extracts, docPairs)

	usedDates := make(map[int]bool)
	var results []domain.MatchResult

	for i := range parties {
		party := &parties[i]
		plog := e.log.With().Str("party_id", party.PartyID).Logger()

		if !needsExpiry(party.LicenseExpiryDate) {
			plog.Debug().
				Str("value", party.LicenseExpiryDate).
				Msg("license expiry already present, leaving untouched")
			continue
		}

		// 1. Section-level resolution, then the cross-document strategy chain.
		res := e.sectionMatch(party.PartyID, extracts)
		if res == nil {
			res = e.matcher.Match(party.PartyID, sectionPairs, docPairs, usedDates)
		}
		if res != nil {
			e.applyMatch(party, res, usedDates, &results)
			plog.Info().
				Str("strategy", string(res.Strategy)).
				Str("expiry", res.Date.Raw).
				Msg("license expiry resolved")
			continue
		}

		// 2. The party holds no license at all.
		if hasNoLicenseIndicator(party.LicenseTypeFromNajm) {
			party.LicenseExpiryDate = domain.NoExpiryLicense
			plog.Info().Msg("no-license indicator in license type, sentinel assigned")
			continue
		}

		// 3. Last textual attempt: uncapped rescan anchored on this party alone.
		if res := e.matcher.MatchDocument(ocrText, party.PartyID); res != nil {
			e.applyMatch(party, res, usedDates, &results)
			plog.Info().
				Str("strategy", string(res.Strategy)).
				Str("expiry", res.Date.Raw).
				Msg("license expiry resolved by document rescan")
			continue
		}

		// 4. No identifier evidence at all: hand out the next unused date in
		// document order. Low confidence; tagged so consumers can tell.
		if date := nextUnusedDate(datePool, usedDates); date != nil {
			party.LicenseExpiryDate = date.Raw
			usedDates[date.Position] = true
			results = append(results, domain.MatchResult{
				PartyID:  party.PartyID,
				Date:     *date,
				Strategy: domain.StrategyOrderAssignment,
			})
			plog.Warn().
				Str("expiry", date.Raw).
				Msg("order-based date assignment, no identifier evidence")
			continue
		}

		// 5. Nothing recoverable: deterministic sentinel, never an absent field.
		party.LicenseExpiryDate = domain.NoExpiryLicense
		plog.Info().Msg("license expiry unresolved, sentinel assigned")
	}

	return results, nil
}

// sectionMatch resolves a party directly from its own section: the section's
// extracted identifier must equal the party's full key. The strategy tag
// reflects how the date was located inside the section.
func (e *Engine) sectionMatch(partyID string, extracts []SectionExtract) *domain.MatchResult {
	full := NormalizeID(partyID)
	if full == "" {
		return nil
	}
	for _, ex := range extracts {
		if ex.Identifier == nil || ex.Date == nil || !ex.Date.Valid {
			continue
		}
		if ex.Identifier.Normalized == full {
			return &domain.MatchResult{PartyID: partyID, Date: *ex.Date, Strategy: ex.DateSource}
		}
	}
	return nil
}

// applyMatch writes a matched date and stamps the update timestamp. Only
// identifier-backed resolutions stamp; sentinel and order-based assignments
// do not.
func (e *Engine) applyMatch(party *domain.ClaimParty, res *domain.MatchResult, usedDates map[int]bool, results *[]domain.MatchResult) {
	party.LicenseExpiryDate = res.Date.Raw
	party.LicenseExpiryLastUpdated = e.now().UTC().Format(time.RFC3339)
	usedDates[res.Date.Position] = true
	*results = append(*results, *res)
}

// discoveryOrderDates pools every valid extracted date in document order,
// deduplicated by position. This feeds the order-based fallback assignment.
func discoveryOrderDates(extracts []SectionExtract, docPairs []CandidatePair) []domain.CandidateDate {
	seen := make(map[int]bool)
	var pool []domain.CandidateDate
	for _, ex := range extracts {
		if ex.Date != nil && ex.Date.Valid && !seen[ex.Date.Position] {
			seen[ex.Date.Position] = true
			pool = append(pool, *ex.Date)
		}
	}
	for _, pair := range docPairs {
		if !seen[pair.Date.Position] {
			seen[pair.Date.Position] = true
			pool = append(pool, pair.Date)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].Position < pool[j].Position })
	return pool
}

func nextUnusedDate(pool []domain.CandidateDate, usedDates map[int]bool) *domain.CandidateDate {
	for i := range pool {
		if !usedDates[pool[i].Position] {
			return &pool[i]
		}
	}
	return nil
}

func needsExpiry(value string) bool {
	_, placeholder := expiryPlaceholders[strings.ToLower(strings.TrimSpace(value))]
	return placeholder
}

func hasNoLicenseIndicator(licenseType string) bool {
	lower := strings.ToLower(licenseType)
	for _, indicator := range noLicenseIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
