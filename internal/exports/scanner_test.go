package exports

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/pkg/errors"
)

// Test fixtures mimic the ledger export: a 4-line banner, then blocks of a
// tab-delimited header line plus detail rows, each block closed by a blank
// line.

func headerLine(amount string) string {
	fields := make([]string, 16)
	fields[0] = "Konto"
	fields[15] = amount
	return strings.Join(fields, "\t")
}

func detailLine(code, party, agreement, amount string) string {
	fields := make([]string, 23)
	fields[6] = party
	fields[11] = agreement
	fields[13] = amount
	fields[22] = code
	return strings.Join(fields, "\t")
}

func buildExport(blocks ...[]string) string {
	lines := []string{
		"Ledger account report",
		"Account: 91407001",
		"",
		"--------",
	}
	for _, block := range blocks {
		lines = append(lines, block...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	scanner, err := NewScanner(nil)
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	return scanner
}

func TestFindPostingsExtractsMatchingRows(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP1", "A1", "600,00"),
			detailLine("BRUT", "FP2", "A2", "9.999,00"),
			detailLine("NETT", "FP3", "A3", "400,00"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}

	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[0].Party != "FP1" || postings[0].Agreement != "A1" {
		t.Errorf("unexpected first posting: %v", postings[0])
	}
	if !postings[0].Amount.Equal(decimal.RequireFromString("600")) {
		t.Errorf("first posting amount = %s, want 600", postings[0].Amount)
	}
	if postings[1].Party != "FP3" {
		t.Errorf("postings not in file order: %v", postings)
	}
}

func TestFindPostingsNegativeTarget(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("-8.540,00"),
			detailLine("NETT", "FP1", "A1", "8.540,00-"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("-8540"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if !postings[0].Amount.Equal(decimal.RequireFromString("-8540")) {
		t.Errorf("posting amount = %s, want -8540", postings[0].Amount)
	}
}

func TestFindPostingsSkipsNonMatchingBlock(t *testing.T) {
	// The first block carries rows with the requested code but its header
	// amount differs; none of its rows may leak into the result.
	export := buildExport(
		[]string{
			headerLine("2.000,00"),
			detailLine("NETT", "WRONG", "WRONG", "2.000,00"),
		},
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP1", "A1", "1.000,00"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Party != "FP1" {
		t.Errorf("posting from skipped block leaked into result: %v", postings[0])
	}
}

func TestFindPostingsRetriesAfterEmptyMatch(t *testing.T) {
	// Duplicate header amounts are possible and a zero-row match is not
	// conclusive; the scanner must keep searching.
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("BRUT", "FP1", "A1", "1.000,00"),
		},
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP2", "A2", "1.000,00"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting from the second block, got %d", len(postings))
	}
	if postings[0].Party != "FP2" {
		t.Errorf("expected posting from second block, got %v", postings[0])
	}
}

func TestFindPostingsNotFound(t *testing.T) {
	export := buildExport()

	scanner := newTestScanner(t)
	_, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err == nil {
		t.Fatal("expected postings-not-found error, got none")
	}
	if !errors.HasCode(err, errors.CodePostingsNotFound) {
		t.Errorf("error code = %v, want postings_not_found", err)
	}
}

func TestFindPostingsAllMatchesEmpty(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("BRUT", "FP1", "A1", "1.000,00"),
		},
	)

	scanner := newTestScanner(t)
	_, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if !errors.HasCode(err, errors.CodePostingsNotFound) {
		t.Errorf("expected postings_not_found after exhausting empty matches, got %v", err)
	}
}

func TestFindPostingsShortHeaderLine(t *testing.T) {
	// A candidate header with fewer than 16 fields is non-matching, never
	// an index error.
	export := buildExport(
		[]string{
			"short\tline",
			detailLine("NETT", "WRONG", "WRONG", "1.000,00"),
		},
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP1", "A1", "1.000,00"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}
	if len(postings) != 1 || postings[0].Party != "FP1" {
		t.Errorf("unexpected postings: %v", postings)
	}
}

func TestFindPostingsFiltersIncompleteRows(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "", "A1", "250,00"),
			detailLine("NETT", "FP2", "", "250,00"),
			"too\tfew\tfields",
			detailLine("NETT", "FP3", "A3", "1.000,00"),
		},
	)

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Party != "FP3" {
		t.Errorf("unexpected posting kept: %v", postings[0])
	}
}

func TestFindPostingsMalformedAmountIsFatal(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP1", "A1", "not-an-amount"),
		},
	)

	scanner := newTestScanner(t)
	_, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err == nil {
		t.Fatal("expected malformed amount error, got none")
	}
	if !errors.HasCode(err, errors.CodeMalformedAmount) {
		t.Errorf("error code = %v, want malformed_amount", err)
	}
}

func TestFindPostingsCRLFLines(t *testing.T) {
	export := buildExport(
		[]string{
			headerLine("1.000,00"),
			detailLine("NETT", "FP1", "A1", "1.000,00"),
		},
	)
	export = strings.ReplaceAll(export, "\n", "\r\n")

	scanner := newTestScanner(t)
	postings, err := scanner.FindPostings(strings.NewReader(export), decimal.RequireFromString("1000"), models.CodeNet)
	if err != nil {
		t.Fatalf("FindPostings returned error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestNewScannerRejectsInvalidLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.DetailMinFields = layout.TypeCodeColumn // too small

	if _, err := NewScanner(layout); err == nil {
		t.Fatal("expected layout validation error, got none")
	}
}
