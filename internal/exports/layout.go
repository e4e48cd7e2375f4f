package exports

import (
	"voucher-reconciliation-service/pkg/errors"
)

// Layout describes the fixed positional format of a ledger export file: a
// banner preamble, then blocks consisting of a tab-delimited header line
// followed by tab-delimited detail rows, terminated by a blank line.
//
// All column indices are 0-based tab positions.
type Layout struct {
	// PreambleLines is the number of banner lines before the first block.
	PreambleLines int

	// HeaderAmountColumn is the column carrying the block's total amount in
	// header encoding. Header candidates with fewer than HeaderMinFields
	// fields are treated as non-matching.
	HeaderAmountColumn int
	HeaderMinFields    int

	// Detail row columns. Rows with fewer than DetailMinFields fields are
	// skipped as malformed.
	TypeCodeColumn  int
	PartyColumn     int
	AgreementColumn int
	AmountColumn    int
	DetailMinFields int
}

// DefaultLayout returns the layout of the ledger's standard export.
func DefaultLayout() *Layout {
	return &Layout{
		PreambleLines:      4,
		HeaderAmountColumn: 15,
		HeaderMinFields:    16,
		TypeCodeColumn:     22,
		PartyColumn:        6,
		AgreementColumn:    11,
		AmountColumn:       13,
		DetailMinFields:    23,
	}
}

// Validate checks the layout for internally inconsistent values.
func (l *Layout) Validate() error {
	if l.PreambleLines < 0 {
		return errors.ConfigurationError("preamble_lines", l.PreambleLines, nil)
	}

	if l.HeaderAmountColumn < 0 || l.HeaderMinFields <= l.HeaderAmountColumn {
		return errors.ConfigurationError("header_amount_column", l.HeaderAmountColumn, nil).
			WithSuggestion("header_min_fields must exceed the header amount column index")
	}

	maxDetail := l.TypeCodeColumn
	for _, col := range []int{l.PartyColumn, l.AgreementColumn, l.AmountColumn} {
		if col < 0 {
			return errors.ConfigurationError("detail_columns", col, nil)
		}
		if col > maxDetail {
			maxDetail = col
		}
	}
	if l.DetailMinFields <= maxDetail {
		return errors.ConfigurationError("detail_min_fields", l.DetailMinFields, nil).
			WithSuggestion("detail_min_fields must exceed every detail column index")
	}

	return nil
}
