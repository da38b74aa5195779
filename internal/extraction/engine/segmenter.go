package engine

import (
	"regexp"
	"strconv"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
)

// digitCls matches one digit in any of the scripts OCR output uses.
const digitCls = `[0-9\x{0660}-\x{0669}\x{06F0}-\x{06F9}]`

// sectionMarkers are tried in order; the first pattern that matches anywhere
// in the document wins and the remaining patterns are ignored. A document
// mixing Arabic and English marker styles therefore only honours one style.
// This mirrors the behaviour the downstream claim pipeline was built against;
// see DESIGN.md before changing it.
var sectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`Party\s*\(\s*(` + digitCls + `+)\s*\)`),
	regexp.MustCompile(`الطرف\s*\(?\s*(` + digitCls + `+)\s*\)?`),
	regexp.MustCompile(`Party\s*(` + digitCls + `+)`),
}

// SegmentSections splits OCR text into per-party sections. Each marker's end
// offset opens a section; the next marker's start offset (or the end of the
// document) closes it. When no pattern matches at all, the whole document is
// returned as a single section with ordinal 1.
func SegmentSections(text string) []domain.PartySection {
	for _, marker := range sectionMarkers {
		matches := marker.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		sections := make([]domain.PartySection, 0, len(matches))
		for i, m := range matches {
			start := m[1]
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}

			ordinal := i + 1
			if m[2] >= 0 {
				if n, err := strconv.Atoi(FoldDigits(text[m[2]:m[3]])); err == nil {
					ordinal = n
				}
			}

			sections = append(sections, domain.PartySection{
				Ordinal: ordinal,
				Start:   start,
				End:     end,
			})
		}
		return sections
	}

	return []domain.PartySection{{Ordinal: 1, Start: 0, End: len(text)}}
}
