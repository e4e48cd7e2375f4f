// Package models defines the core records exchanged between the voucher
// intake, the export scanner and the reconciliation service.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCode filters which detail rows of a ledger export are relevant
// for a voucher class ("iart" in the ledger's terminology).
type TransactionCode string

const (
	// CodeNet selects net amount postings.
	CodeNet TransactionCode = "NETT"
	// CodeGross selects gross amount postings.
	CodeGross TransactionCode = "BRUT"
	// CodeKYTB selects KYTB postings.
	CodeKYTB TransactionCode = "KYTB"
)

// String returns the string representation of the transaction code.
func (c TransactionCode) String() string {
	return string(c)
}

// IsKnown reports whether the code is one of the three codes the ledger is
// known to emit. Unknown codes are passed through unvalidated; the filter
// simply yields no rows for them.
func (c TransactionCode) IsKnown() bool {
	return c == CodeNet || c == CodeGross || c == CodeKYTB
}

// Bilag represents one voucher to be reconciled against the ledger.
// Its Sum is the expected net total of all postings belonging to it.
type Bilag struct {
	Sum          decimal.Decimal `json:"sum"`
	Text         string          `json:"text"`
	Bilagsart    string          `json:"bilagsart"`
	Bilagsnummer string          `json:"bilagsnummer"`
	Date         time.Time       `json:"date"`
}

// NewBilag creates a new Bilag instance.
func NewBilag(sum decimal.Decimal, text, bilagsart, bilagsnummer string, date time.Time) *Bilag {
	return &Bilag{
		Sum:          sum,
		Text:         text,
		Bilagsart:    bilagsart,
		Bilagsnummer: bilagsnummer,
		Date:         date,
	}
}

// Validate performs basic validation on the Bilag.
func (b *Bilag) Validate() error {
	if strings.TrimSpace(b.Bilagsnummer) == "" {
		return fmt.Errorf("bilagsnummer cannot be empty")
	}

	if strings.TrimSpace(b.Bilagsart) == "" {
		return fmt.Errorf("bilagsart cannot be empty")
	}

	if b.Date.IsZero() {
		return fmt.Errorf("bilag date cannot be zero")
	}

	return nil
}

// String returns a string representation of the Bilag.
func (b *Bilag) String() string {
	return fmt.Sprintf("Bilag{Nummer: %s, Art: %s, Sum: %s, Date: %s}",
		b.Bilagsnummer, b.Bilagsart, b.Sum.StringFixed(2), b.Date.Format("2006-01-02"))
}

// Posting is one extracted ledger line item contributing to a voucher's
// total. Postings are values: created once per detail row, never mutated.
type Posting struct {
	// Party is the business partner reference (forretningspartner).
	Party string `json:"party"`
	// Agreement is the agreement reference (aftale).
	Agreement string          `json:"agreement"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPosting creates a new Posting instance.
func NewPosting(party, agreement string, amount decimal.Decimal) Posting {
	return Posting{
		Party:     party,
		Agreement: agreement,
		Amount:    amount,
	}
}

// Validate performs basic validation on the Posting.
func (p Posting) Validate() error {
	if strings.TrimSpace(p.Party) == "" {
		return fmt.Errorf("posting party reference cannot be empty")
	}

	if strings.TrimSpace(p.Agreement) == "" {
		return fmt.Errorf("posting agreement reference cannot be empty")
	}

	return nil
}

// String returns a string representation of the Posting.
func (p Posting) String() string {
	return fmt.Sprintf("Posting{Party: %s, Agreement: %s, Amount: %s}",
		p.Party, p.Agreement, p.Amount.StringFixed(2))
}

// SumPostings returns the total of the given posting amounts rounded to two
// decimal places.
func SumPostings(postings []Posting) decimal.Decimal {
	total := decimal.Zero
	for _, p := range postings {
		total = total.Add(p.Amount)
	}
	return total.Round(2)
}

// BatchDateRange returns the earliest and latest voucher date in the batch.
// The export-producing session is opened once for the whole date span.
func BatchDateRange(bilagList []*Bilag) (first, last time.Time, err error) {
	if len(bilagList) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("bilag list is empty")
	}

	first = bilagList[0].Date
	last = bilagList[0].Date
	for _, b := range bilagList[1:] {
		if b.Date.Before(first) {
			first = b.Date
		}
		if b.Date.After(last) {
			last = b.Date
		}
	}

	return first, last, nil
}
