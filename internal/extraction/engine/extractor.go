package engine

import (
	"regexp"
	"strings"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
)

// digitRunRe matches maximal digit runs; callers filter by length, so a
// 12-digit run is never mistaken for a 10-digit national ID plus noise.
var digitRunRe = regexp.MustCompile(digitCls + `+`)

// dateTokenExpr matches a date-shaped token with the 4-digit year leading or
// trailing. Classification is the validator's job; this only finds tokens.
var dateTokenExpr = digitCls + `{1,2}[/-]` + digitCls + `{1,2}[/-]` + digitCls + `{4}` +
	`|` + digitCls + `{4}[/-]` + digitCls + `{1,2}[/-]` + digitCls + `{1,2}`

// idTokenExpr matches 8–14 digits, tolerating single spaces or hyphens
// between digits (OCR splits long numbers freely).
var idTokenExpr = digitCls + `(?:[ -]?` + digitCls + `){7,13}`

var dateTokenRe = regexp.MustCompile(`(?:` + dateTokenExpr + `)`)

// identifierPatterns are tried in order; the first pattern yielding a match
// that normalizes to at least 8 digits wins. When no label matches, a bare
// 9–10 digit run serves as the fallback. Shorter digit runs are OCR noise.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`رقم\s*الهوي[ةه]\s*[:：#]?\s*(` + idTokenExpr + `)`),
	regexp.MustCompile(`(?i)ID\s*(?:Number|No\.?)\s*[:：#]?\s*(` + idTokenExpr + `)`),
	regexp.MustCompile(`(?i)Party\s*ID\s*[:：#]?\s*(` + idTokenExpr + `)`),
}

// expiryLabelPatterns anchor the date search on license-expiry labels,
// Arabic phrasings first, then English.
var expiryLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`تاريخ\s*(?:انتهاء|نهاية)\s*(?:ال)?رخصة(?:\s*القيادة)?\s*[:：]?\s*((?:` + dateTokenExpr + `))`),
	regexp.MustCompile(`انتهاء\s*(?:ال)?رخصة\s*[:：]?\s*((?:` + dateTokenExpr + `))`),
	regexp.MustCompile(`(?i)(?:licen[cs]e\s*)?expiry\s*date\s*[:：]?\s*((?:` + dateTokenExpr + `))`),
}

// licenseKeywords gate the unlabeled date fallback: a date token only counts
// when one of these appears shortly before it, so accident or print dates are
// not mistaken for expiries.
var licenseKeywords = []string{"رخصة", "انتهاء", "صلاحية", "license", "licence", "expiry"}

// SectionExtract is the outcome of scanning a single party section.
// DateSource records how the date was found and becomes the strategy tag
// when the section resolves a party directly.
type SectionExtract struct {
	Section    domain.PartySection
	Identifier *domain.CandidateIdentifier
	Date       *domain.CandidateDate
	DateSource domain.MatchStrategy
}

// Extractor pulls a candidate identifier and expiry date out of one section
type Extractor struct {
	validator       *DateValidator
	proximityWindow int
	contextWindow   int
}

// NewExtractor creates a section extractor
func NewExtractor(validator *DateValidator, proximityWindow, contextWindow int) *Extractor {
	return &Extractor{
		validator:       validator,
		proximityWindow: proximityWindow,
		contextWindow:   contextWindow,
	}
}

// ExtractSection scans one section of the document. text is the full OCR
// document; positions in the result are absolute offsets into it.
func (x *Extractor) ExtractSection(text string, sec domain.PartySection) SectionExtract {
	body := text[sec.Start:sec.End]
	extract := SectionExtract{Section: sec}

	identEnd := -1
	for _, pattern := range identifierPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(body, -1) {
			raw := body[m[2]:m[3]]
			normalized := NormalizeID(raw)
			if len(normalized) < 8 {
				continue
			}
			section := sec
			extract.Identifier = &domain.CandidateIdentifier{
				Raw:        raw,
				Normalized: normalized,
				Position:   sec.Start + m[2],
				Section:    &section,
			}
			identEnd = sec.Start + m[3]
			break
		}
		if extract.Identifier != nil {
			break
		}
	}
	if extract.Identifier == nil {
		for _, m := range digitRunRe.FindAllStringIndex(body, -1) {
			raw := body[m[0]:m[1]]
			normalized := NormalizeID(raw)
			if len(normalized) < 9 || len(normalized) > 10 {
				continue
			}
			section := sec
			extract.Identifier = &domain.CandidateIdentifier{
				Raw:        raw,
				Normalized: normalized,
				Position:   sec.Start + m[0],
				Section:    &section,
			}
			identEnd = sec.Start + m[1]
			break
		}
	}

	// Label-anchored date search; invalid candidates are skipped, not fatal.
	for _, pattern := range expiryLabelPatterns {
		if d := x.firstValidDate(pattern, body, sec.Start); d != nil {
			extract.Date = d
			extract.DateSource = domain.StrategySectionLabel
			break
		}
	}

	// No label: trust a date appearing shortly after the identifier.
	if extract.Date == nil && extract.Identifier != nil {
		windowEnd := identEnd + x.proximityWindow
		if windowEnd > sec.End {
			windowEnd = sec.End
		}
		if d := x.firstValidToken(text[identEnd:windowEnd], identEnd); d != nil {
			extract.Date = d
			extract.DateSource = domain.StrategySectionProximity
		}
	}

	// Last resort: any date token preceded by a license/expiry keyword.
	if extract.Date == nil {
		for _, m := range dateTokenRe.FindAllStringIndex(body, -1) {
			ctxStart := m[0] - x.contextWindow
			if ctxStart < 0 {
				ctxStart = 0
			}
			if !containsLicenseKeyword(body[ctxStart:m[0]]) {
				continue
			}
			cand := x.validator.Validate(body[m[0]:m[1]])
			if cand.Valid {
				cand.Position = sec.Start + m[0]
				extract.Date = &cand
				extract.DateSource = domain.StrategySectionFallback
				break
			}
		}
	}

	return extract
}

// firstValidDate returns the first label-anchored match that validates
func (x *Extractor) firstValidDate(pattern *regexp.Regexp, body string, offset int) *domain.CandidateDate {
	for _, m := range pattern.FindAllStringSubmatchIndex(body, -1) {
		cand := x.validator.Validate(body[m[2]:m[3]])
		if cand.Valid {
			cand.Position = offset + m[2]
			return &cand
		}
	}
	return nil
}

// firstValidToken returns the first bare date token in window that validates
func (x *Extractor) firstValidToken(window string, offset int) *domain.CandidateDate {
	for _, m := range dateTokenRe.FindAllStringIndex(window, -1) {
		cand := x.validator.Validate(window[m[0]:m[1]])
		if cand.Valid {
			cand.Position = offset + m[0]
			return &cand
		}
	}
	return nil
}

func containsLicenseKeyword(context string) bool {
	lower := strings.ToLower(context)
	for _, kw := range licenseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
