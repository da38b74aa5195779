package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/engine"
	"github.com/tech920/motor-claim-decision-api-sub001/pkg/logger"
)

func newTestEngine() *engine.Engine {
	return engine.New(engine.DefaultConfig(), logger.Nop())
}

// sampleReport mimics a bilingual Najm accident report with two party
// sections, each carrying a labeled identifier and expiry date.
const sampleReport = "Accident Report 2024/18821\n" +
	"Party (1)\n" +
	"Name: Khalid\n" +
	"ID Number: 2000000001\n" +
	"Expiry Date: 15/06/2030\n" +
	"Party (2)\n" +
	"Name: Ahmed\n" +
	"رقم الهوية: 108366838\n" +
	"تاريخ انتهاء الرخصة: 08/07/2028\n"

func TestResolveExpiryDates_NilParties(t *testing.T) {
	_, err := newTestEngine().ResolveExpiryDates(sampleReport, nil)

	if !errors.Is(err, engine.ErrNilParties) {
		t.Fatalf("err = %v, want ErrNilParties", err)
	}
}

func TestResolveExpiryDates_SectionLabel(t *testing.T) {
	parties := []domain.ClaimParty{
		{PartyID: "2000000001", LicenseExpiryDate: "null"},
		{PartyID: "108366838", LicenseExpiryDate: ""},
	}

	results, err := newTestEngine().ResolveExpiryDates(sampleReport, parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if parties[0].LicenseExpiryDate != "15/06/2030" {
		t.Errorf("party 1 expiry = %q, want 15/06/2030", parties[0].LicenseExpiryDate)
	}
	if parties[1].LicenseExpiryDate != "08/07/2028" {
		t.Errorf("party 2 expiry = %q, want 08/07/2028", parties[1].LicenseExpiryDate)
	}
	for i, p := range parties {
		if p.LicenseExpiryLastUpdated == "" {
			t.Errorf("party %d: update timestamp missing", i+1)
			continue
		}
		if _, err := time.Parse(time.RFC3339, p.LicenseExpiryLastUpdated); err != nil {
			t.Errorf("party %d: timestamp %q is not RFC3339: %v", i+1, p.LicenseExpiryLastUpdated, err)
		}
	}
	for _, res := range results {
		if res.Strategy != domain.StrategySectionLabel {
			t.Errorf("party %s strategy = %q, want %q", res.PartyID, res.Strategy, domain.StrategySectionLabel)
		}
	}
}

func TestResolveExpiryDates_SimilarityFallback(t *testing.T) {
	// The claim record carries a 10-digit identifier; OCR dropped one digit
	// mid-string, so only the similarity strategy can associate them.
	parties := []domain.ClaimParty{
		{PartyID: "1083668838", LicenseExpiryDate: ""},
	}

	results, err := newTestEngine().ResolveExpiryDates(sampleReport, parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Strategy != domain.StrategySimilarityRatio {
		t.Errorf("Strategy = %q, want %q", results[0].Strategy, domain.StrategySimilarityRatio)
	}
	if parties[0].LicenseExpiryDate != "08/07/2028" {
		t.Errorf("expiry = %q, want 08/07/2028", parties[0].LicenseExpiryDate)
	}
	if parties[0].LicenseExpiryLastUpdated == "" {
		t.Error("update timestamp missing for identifier-backed resolution")
	}
}

func TestResolveExpiryDates_NoLicenseIndicator(t *testing.T) {
	parties := []domain.ClaimParty{
		{PartyID: "9999999999", LicenseExpiryDate: "", LicenseTypeFromNajm: "لا يوجد رخصة"},
	}

	results, err := newTestEngine().ResolveExpiryDates("empty report", parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("got %d results, want 0 (sentinel assignments carry no result)", len(results))
	}
	if parties[0].LicenseExpiryDate != domain.NoExpiryLicense {
		t.Errorf("expiry = %q, want %q", parties[0].LicenseExpiryDate, domain.NoExpiryLicense)
	}
	if parties[0].LicenseExpiryLastUpdated != "" {
		t.Errorf("timestamp = %q, want empty for sentinel assignment", parties[0].LicenseExpiryLastUpdated)
	}
}

func TestResolveExpiryDates_SentinelDateRejected(t *testing.T) {
	// The only date in the document is the OCR-template artifact; the party
	// must end up with the sentinel value, not the artifact.
	text := "ID Number: 108366838 some noise 19-11-2025 more noise"
	parties := []domain.ClaimParty{
		{PartyID: "108366838", LicenseExpiryDate: ""},
	}

	results, err := newTestEngine().ResolveExpiryDates(text, parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	if parties[0].LicenseExpiryDate != domain.NoExpiryLicense {
		t.Errorf("expiry = %q, want %q", parties[0].LicenseExpiryDate, domain.NoExpiryLicense)
	}
}

func TestResolveExpiryDates_OrderAssignment(t *testing.T) {
	// A labeled expiry date exists but the document carries no identifier
	// tokens at all, so the date is handed out by discovery order without a
	// timestamp stamp.
	text := "تقرير الحادث\nتاريخ انتهاء الرخصة: 08/07/2028\n"
	parties := []domain.ClaimParty{
		{PartyID: "1234567890", LicenseExpiryDate: ""},
	}

	results, err := newTestEngine().ResolveExpiryDates(text, parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Strategy != domain.StrategyOrderAssignment {
		t.Errorf("Strategy = %q, want %q", results[0].Strategy, domain.StrategyOrderAssignment)
	}
	if parties[0].LicenseExpiryDate != "08/07/2028" {
		t.Errorf("expiry = %q, want 08/07/2028", parties[0].LicenseExpiryDate)
	}
	if parties[0].LicenseExpiryLastUpdated != "" {
		t.Errorf("timestamp = %q, want empty for order-based assignment", parties[0].LicenseExpiryLastUpdated)
	}
}

func TestResolveExpiryDates_PopulatedFieldUntouched(t *testing.T) {
	parties := []domain.ClaimParty{
		{PartyID: "108366838", LicenseExpiryDate: "01/01/2027"},
	}

	results, err := newTestEngine().ResolveExpiryDates(sampleReport, parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("got %d results, want 0 for an already-populated party", len(results))
	}
	if parties[0].LicenseExpiryDate != "01/01/2027" {
		t.Errorf("expiry = %q, want the pre-existing 01/01/2027", parties[0].LicenseExpiryDate)
	}
	if parties[0].LicenseExpiryLastUpdated != "" {
		t.Errorf("timestamp = %q, want empty when nothing changed", parties[0].LicenseExpiryLastUpdated)
	}
}

func TestResolveExpiryDates_PlaceholderOverwritten(t *testing.T) {
	// Placeholder matching is case-insensitive.
	parties := []domain.ClaimParty{
		{PartyID: "108366838", LicenseExpiryDate: "Not Identify"},
	}

	if _, err := newTestEngine().ResolveExpiryDates(sampleReport, parties); err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if parties[0].LicenseExpiryDate != "08/07/2028" {
		t.Errorf("expiry = %q, want the placeholder replaced with 08/07/2028", parties[0].LicenseExpiryDate)
	}
}

func TestResolveExpiryDates_Idempotent(t *testing.T) {
	parties := []domain.ClaimParty{
		{PartyID: "2000000001", LicenseExpiryDate: ""},
		{PartyID: "108366838", LicenseExpiryDate: ""},
	}
	eng := newTestEngine()

	if _, err := eng.ResolveExpiryDates(sampleReport, parties); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	snapshot := make([]domain.ClaimParty, len(parties))
	copy(snapshot, parties)

	results, err := eng.ResolveExpiryDates(sampleReport, parties)
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("second run produced %d results, want 0", len(results))
	}
	for i := range parties {
		if parties[i] != snapshot[i] {
			t.Errorf("party %d changed on second run: %+v vs %+v", i, parties[i], snapshot[i])
		}
	}
}

func TestResolveExpiryDates_UnresolvableGetsSentinel(t *testing.T) {
	parties := []domain.ClaimParty{
		{PartyID: "108366838", LicenseExpiryDate: ""},
	}

	results, err := newTestEngine().ResolveExpiryDates("no identifiers, no dates", parties)
	if err != nil {
		t.Fatalf("ResolveExpiryDates returned error: %v", err)
	}

	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	if parties[0].LicenseExpiryDate != domain.NoExpiryLicense {
		t.Errorf("expiry = %q, want %q", parties[0].LicenseExpiryDate, domain.NoExpiryLicense)
	}
}
