package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
)

// Hijri and Gregorian year ranges used to classify expiry dates.
// Years in [1900, 2010) are birth dates, never license expiries.
const (
	hijriYearMin     = 1400
	hijriYearMax     = 1600
	gregorianYearMin = 2010
	birthYearMin     = 1900
)

// DateValidator classifies raw date strings as plausible license-expiry
// dates. Malformed input never produces an error; it yields Valid=false.
type DateValidator struct {
	sentinels map[string]struct{}
}

// NewDateValidator creates a validator with the given sentinel dates.
// Sentinels are literal dates known to be OCR extraction artifacts
// (e.g. "19/11/2025"); they are rejected regardless of numeric plausibility
// and are matched after separator canonicalization, so "19-11-2025" is
// rejected as well.
func NewDateValidator(sentinelDates []string) *DateValidator {
	v := &DateValidator{sentinels: make(map[string]struct{}, len(sentinelDates))}
	for _, s := range sentinelDates {
		if day, month, year, ok := parseDateParts(s); ok {
			v.sentinels[canonicalDate(day, month, year)] = struct{}{}
		}
	}
	return v
}

// Validate parses a raw date token and classifies it. The token must carry
// two separators (/ or -) and a 4-digit year group, which may appear leading
// or trailing. Arabic digit scripts are folded before parsing.
func (v *DateValidator) Validate(raw string) domain.CandidateDate {
	cand := domain.CandidateDate{Raw: raw}

	day, month, year, ok := parseDateParts(raw)
	if !ok {
		return cand
	}
	cand.Day = day
	cand.Month = month
	cand.Year = year

	if _, sentinel := v.sentinels[canonicalDate(day, month, year)]; sentinel {
		return cand
	}

	switch {
	case year >= hijriYearMin && year <= hijriYearMax:
		cand.Calendar = domain.CalendarHijri
		cand.Valid = true
	case year >= gregorianYearMin:
		cand.Calendar = domain.CalendarGregorian
		cand.Valid = true
	}
	// Years in [1900,2010) fall through as birth dates; anything else is noise.

	return cand
}

// parseDateParts splits a raw token on / or - and locates the 4-digit year
// group positionally. Returns ok=false for anything that does not carry
// exactly three numeric groups with a single 4-digit year.
func parseDateParts(raw string) (day, month, year int, ok bool) {
	folded := strings.TrimSpace(FoldDigits(raw))
	folded = strings.ReplaceAll(folded, " ", "")

	parts := strings.FieldsFunc(folded, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return 0, 0, 0, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 4 {
			return 0, 0, 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}

	switch {
	case len(parts[2]) == 4:
		day, month, year = nums[0], nums[1], nums[2]
	case len(parts[0]) == 4:
		year, month, day = nums[0], nums[1], nums[2]
	default:
		return 0, 0, 0, false
	}
	if len(partsWithFourDigits(parts)) != 1 {
		return 0, 0, 0, false
	}
	return day, month, year, true
}

func partsWithFourDigits(parts []string) []string {
	var out []string
	for _, p := range parts {
		if len(p) == 4 {
			out = append(out, p)
		}
	}
	return out
}

func canonicalDate(day, month, year int) string {
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
}
