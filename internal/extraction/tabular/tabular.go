package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/engine"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

// Recognized column headers in the first sheet row
const (
	colPartyID     = "Party_ID"
	colExpiry      = "License_Expiry_Date"
	colLicenseType = "License_Type_From_Najm"
	colLastUpdated = "License_Expiry_Last_Updated"
)

// Processor applies the extraction engine to a row-oriented claim-party
// sheet. It shares the engine with the record entry point, so the matching
// semantics are identical; only the container shape differs.
type Processor struct {
	engine *engine.Engine
	log    *logger.Logger
}

// NewProcessor creates a tabular processor
func NewProcessor(eng *engine.Engine, log *logger.Logger) *Processor {
	return &Processor{
		engine: eng,
		log:    log,
	}
}

// ProcessSheet runs the engine against every party row of the given sheet,
// writing resolved expiry dates (and update timestamps, when that column
// exists) back into their cells. Returns how many rows changed.
func (p *Processor) ProcessSheet(f *excelize.File, sheet, ocrText string) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("sheet %q has no header row", sheet)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	idCol, ok := cols[colPartyID]
	if !ok {
		return 0, fmt.Errorf("sheet %q is missing the %s column", sheet, colPartyID)
	}
	expiryCol, ok := cols[colExpiry]
	if !ok {
		return 0, fmt.Errorf("sheet %q is missing the %s column", sheet, colExpiry)
	}
	typeCol, hasType := cols[colLicenseType]
	updatedCol, hasUpdated := cols[colLastUpdated]

	parties := make([]domain.ClaimParty, 0, len(rows)-1)
	for _, row := range rows[1:] {
		party := domain.ClaimParty{
			PartyID:           cellAt(row, idCol),
			LicenseExpiryDate: cellAt(row, expiryCol),
		}
		if hasType {
			party.LicenseTypeFromNajm = cellAt(row, typeCol)
		}
		parties = append(parties, party)
	}

	if _, err := p.engine.ResolveExpiryDates(ocrText, parties); err != nil {
		return 0, err
	}

	updated := 0
	for i, party := range parties {
		original := cellAt(rows[i+1], expiryCol)
		if party.LicenseExpiryDate == original {
			continue
		}

		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(expiryCol+1, rowNum)
		if err != nil {
			return updated, err
		}
		if err := f.SetCellValue(sheet, cell, party.LicenseExpiryDate); err != nil {
			return updated, err
		}
		if hasUpdated && party.LicenseExpiryLastUpdated != "" {
			cell, err := excelize.CoordinatesToCellName(updatedCol+1, rowNum)
			if err != nil {
				return updated, err
			}
			if err := f.SetCellValue(sheet, cell, party.LicenseExpiryLastUpdated); err != nil {
				return updated, err
			}
		}
		updated++
	}

	p.log.Info().
		Str("sheet", sheet).
		Int("rows", len(parties)).
		Int("updated", updated).
		Msg("tabular license expiry extraction completed")

	return updated, nil
}

// cellAt tolerates ragged rows; excelize trims trailing empty cells
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}
