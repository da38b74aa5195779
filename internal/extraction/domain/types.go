package domain

import "time"

// ClaimType labels which claim pipeline invoked the engine. The extraction
// logic is identical for both; the label exists for logging and run summaries.
type ClaimType string

const (
	ClaimTypeComprehensive ClaimType = "comprehensive"
	ClaimTypeThirdParty    ClaimType = "third_party"
)

// Calendar identifies the calendar system of an extracted date.
// Saudi documents carry both; the year range disambiguates.
type Calendar string

const (
	CalendarGregorian Calendar = "gregorian"
	CalendarHijri     Calendar = "hijri"
)

// MatchStrategy records how a party identifier was paired with an expiry date
type MatchStrategy string

const (
	// Section-level strategies: the date was found inside the party's own section
	StrategySectionLabel     MatchStrategy = "section_label"
	StrategySectionProximity MatchStrategy = "section_proximity"
	StrategySectionFallback  MatchStrategy = "section_fallback"

	// Cross-document strategies, in attempt order
	StrategyExactKey          MatchStrategy = "exact_key"
	StrategySuffixFuzzy       MatchStrategy = "suffix_fuzzy"
	StrategyContainment       MatchStrategy = "containment"
	StrategySimilarityRatio   MatchStrategy = "similarity_ratio"
	StrategyPositionProximity MatchStrategy = "position_proximity"

	// Last-resort assignment of an unused date by document order
	StrategyOrderAssignment MatchStrategy = "order_assignment"
)

// NoExpiryLicense is the deterministic output for parties whose expiry date
// could not be recovered, or who hold no license at all.
const NoExpiryLicense = "no expiry license"

// PartySection is a half-open byte span of the OCR text belonging to one party.
// Sections never overlap; a document without markers yields a single section
// with ordinal 1 spanning the full text.
type PartySection struct {
	Ordinal int `json:"ordinal"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// CandidateIdentifier is a national-ID-shaped token found in the OCR text
type CandidateIdentifier struct {
	Raw        string        `json:"raw"`
	Normalized string        `json:"normalized"`
	Position   int           `json:"position"`
	Section    *PartySection `json:"section,omitempty"`
}

// CandidateDate is a date-shaped token classified by the validator
type CandidateDate struct {
	Raw      string   `json:"raw"`
	Day      int      `json:"day"`
	Month    int      `json:"month"`
	Year     int      `json:"year"`
	Calendar Calendar `json:"calendar,omitempty"`
	Valid    bool     `json:"valid"`
	Position int      `json:"position"`
}

// MatchResult pairs one party identifier with the expiry date chosen for it.
// At most one result exists per distinct party identifier.
type MatchResult struct {
	PartyID  string        `json:"party_id"`
	Date     CandidateDate `json:"date"`
	Strategy MatchStrategy `json:"strategy"`
}

// ClaimParty is the structured claim record whose expiry field this engine
// fills in. Field tags mirror the upstream claim-parsing payload.
type ClaimParty struct {
	PartyID                  string `json:"Party_ID"`
	LicenseExpiryDate        string `json:"License_Expiry_Date"`
	LicenseTypeFromNajm      string `json:"License_Type_From_Najm,omitempty"`
	LicenseExpiryLastUpdated string `json:"License_Expiry_Last_Updated,omitempty"`
}

// RunSummary is the non-authoritative debugging record of one engine
// invocation, kept in memory with a TTL and queryable over HTTP.
type RunSummary struct {
	RunID      string                   `json:"run_id"`
	ClaimType  ClaimType                `json:"claim_type"`
	PartyCount int                      `json:"party_count"`
	Resolved   map[string]MatchStrategy `json:"resolved"`
	Skipped    []string                 `json:"skipped,omitempty"`
	DurationMs int64                    `json:"duration_ms"`
	CreatedAt  time.Time                `json:"created_at"`
}
