package engine

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
)

// CandidatePair couples an identifier-shaped token with the first valid date
// token found within the proximity window after it.
type CandidatePair struct {
	ID   domain.CandidateIdentifier
	Date domain.CandidateDate
}

// Matcher reconciles known party identifiers with identifier/date pairs found
// in the document, trying a fixed strategy order and stopping at the first
// success. It never searches for a "better" later match.
type Matcher struct {
	validator           *DateValidator
	proximityWindow     int
	similarityThreshold float64
	maxHamming          int
	scanCap             int
}

// NewMatcher creates a cross-section matcher
func NewMatcher(validator *DateValidator, cfg Config) *Matcher {
	return &Matcher{
		validator:           validator,
		proximityWindow:     cfg.ProximityWindow,
		similarityThreshold: cfg.SimilarityThreshold,
		maxHamming:          cfg.MaxHammingDistance,
		scanCap:             cfg.FuzzyScanCap,
	}
}

// SectionPairs lifts the per-section extraction results into candidate pairs.
// Only extracts carrying both an identifier and a valid date contribute.
func (m *Matcher) SectionPairs(extracts []SectionExtract) []CandidatePair {
	var pairs []CandidatePair
	for _, ex := range extracts {
		if ex.Identifier == nil || ex.Date == nil || !ex.Date.Valid {
			continue
		}
		pairs = append(pairs, CandidatePair{ID: *ex.Identifier, Date: *ex.Date})
	}
	return pairs
}

// DocumentPairs scans the whole document for bare 9–10 digit runs and pairs
// each with the first valid date within the proximity window after it. The
// scan stops after the configured cap to bound work on dense OCR text; a
// negative limit scans everything.
func (m *Matcher) DocumentPairs(text string, limit int) []CandidatePair {
	var pairs []CandidatePair
	scanned := 0
	for _, mt := range digitRunRe.FindAllStringIndex(text, -1) {
		raw := text[mt[0]:mt[1]]
		normalized := NormalizeID(raw)
		if len(normalized) < 9 || len(normalized) > 10 {
			continue
		}
		if limit >= 0 && scanned >= limit {
			break
		}
		scanned++

		windowEnd := mt[1] + m.proximityWindow
		if windowEnd > len(text) {
			windowEnd = len(text)
		}

		var date *domain.CandidateDate
		for _, dm := range dateTokenRe.FindAllStringIndex(text[mt[1]:windowEnd], -1) {
			cand := m.validator.Validate(text[mt[1]+dm[0] : mt[1]+dm[1]])
			if cand.Valid {
				cand.Position = mt[1] + dm[0]
				date = &cand
				break
			}
		}
		if date == nil {
			continue
		}

		pairs = append(pairs, CandidatePair{
			ID: domain.CandidateIdentifier{
				Raw:        raw,
				Normalized: normalized,
				Position:   mt[0],
			},
			Date: *date,
		})
	}
	return pairs
}

// Match runs the full strategy chain for one party identifier: the five
// identifier-anchored strategies against the combined section-level and
// document-wide pairs, then the position-proximity pairing. usedDates guards
// positional pairing against handing one date to two parties.
func (m *Matcher) Match(partyID string, sectionPairs, docPairs []CandidatePair, usedDates map[int]bool) *domain.MatchResult {
	keys := KeysOf(NormalizeID(partyID))

	combined := make([]CandidatePair, 0, len(sectionPairs)+len(docPairs))
	combined = append(combined, sectionPairs...)
	combined = append(combined, docPairs...)

	if res := m.matchByKeys(partyID, keys, combined, m.scanCap); res != nil {
		return res
	}

	// Identity unknown but position trusted: hand over the first unused pair.
	for _, pair := range docPairs {
		if usedDates[pair.Date.Position] {
			continue
		}
		return &domain.MatchResult{
			PartyID:  partyID,
			Date:     pair.Date,
			Strategy: domain.StrategyPositionProximity,
		}
	}

	return nil
}

// MatchDocument re-runs the identifier-anchored strategies for a single
// party against a fresh, uncapped scan of the full document. This is the
// resolver's last textual attempt before order-based assignment; the
// positional strategy is deliberately absent here, and the fuzzy cap is
// lifted because a single identifier bounds the work on its own.
func (m *Matcher) MatchDocument(text, partyID string) *domain.MatchResult {
	keys := KeysOf(NormalizeID(partyID))
	return m.matchByKeys(partyID, keys, m.DocumentPairs(text, -1), -1)
}

// matchByKeys attempts the five ordered identifier strategies. Fuzzy
// strategies only look at the first limit candidates; a negative limit
// disables the cap.
func (m *Matcher) matchByKeys(partyID string, keys IDKeys, pairs []CandidatePair, limit int) *domain.MatchResult {
	if keys.Full == "" {
		return nil
	}

	fuzzy := pairs
	if limit >= 0 && len(fuzzy) > limit {
		fuzzy = fuzzy[:limit]
	}

	// 1. Exact key equality
	for _, pair := range pairs {
		if pair.ID.Normalized == keys.Full {
			return matchResult(partyID, pair, domain.StrategyExactKey)
		}
	}

	// 2. Suffix-fuzzy: last 9, then last 8 digits
	for _, pair := range fuzzy {
		ck := KeysOf(pair.ID.Normalized)
		if keys.Last9 != "" && keys.Last9 == ck.Last9 {
			return matchResult(partyID, pair, domain.StrategySuffixFuzzy)
		}
	}
	for _, pair := range fuzzy {
		ck := KeysOf(pair.ID.Normalized)
		if keys.Last8 != "" && keys.Last8 == ck.Last8 {
			return matchResult(partyID, pair, domain.StrategySuffixFuzzy)
		}
	}

	// 3. Containment either way
	for _, pair := range fuzzy {
		if pair.ID.Normalized == "" {
			continue
		}
		if strings.Contains(keys.Full, pair.ID.Normalized) || strings.Contains(pair.ID.Normalized, keys.Full) {
			return matchResult(partyID, pair, domain.StrategyContainment)
		}
	}

	// 4. Similarity ratio on equal or near-equal length
	for _, pair := range fuzzy {
		if absInt(len(pair.ID.Normalized)-len(keys.Full)) > 1 {
			continue
		}
		if similarityRatio(keys.Full, pair.ID.Normalized) >= m.similarityThreshold {
			return matchResult(partyID, pair, domain.StrategySimilarityRatio)
		}
	}

	// 5. Bounded Hamming distance on same-length strings. The result enum
	// carries no separate tag for this, so it reports as similarity_ratio.
	for _, pair := range fuzzy {
		if len(pair.ID.Normalized) != len(keys.Full) {
			continue
		}
		if hammingDistance(keys.Full, pair.ID.Normalized) <= m.maxHamming {
			return matchResult(partyID, pair, domain.StrategySimilarityRatio)
		}
	}

	return nil
}

func matchResult(partyID string, pair CandidatePair, strategy domain.MatchStrategy) *domain.MatchResult {
	return &domain.MatchResult{PartyID: partyID, Date: pair.Date, Strategy: strategy}
}

// similarityRatio is a normalized edit-distance similarity in [0,1]
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// hammingDistance counts differing positions; inputs must be equal length
func hammingDistance(a, b string) int {
	diff := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	return diff
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
