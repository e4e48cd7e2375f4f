package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

func TestTransactionCodeIsKnown(t *testing.T) {
	tests := []struct {
		code TransactionCode
		want bool
	}{
		{CodeNet, true},
		{CodeGross, true},
		{CodeKYTB, true},
		{TransactionCode("XXXX"), false},
		{TransactionCode(""), false},
		{TransactionCode("nett"), false},
	}

	for _, tt := range tests {
		if got := tt.code.IsKnown(); got != tt.want {
			t.Errorf("TransactionCode(%q).IsKnown() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestBilagValidate(t *testing.T) {
	valid := NewBilag(decimal.RequireFromString("1000"), "Husleje", "AB", "B100", date(1))
	if err := valid.Validate(); err != nil {
		t.Errorf("valid bilag rejected: %v", err)
	}

	tests := []struct {
		name  string
		bilag *Bilag
	}{
		{"empty bilagsnummer", NewBilag(decimal.Zero, "x", "AB", "  ", date(1))},
		{"empty bilagsart", NewBilag(decimal.Zero, "x", "", "B100", date(1))},
		{"zero date", NewBilag(decimal.Zero, "x", "AB", "B100", time.Time{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.bilag.Validate(); err == nil {
				t.Error("expected validation error, got none")
			}
		})
	}
}

func TestPostingValidate(t *testing.T) {
	valid := NewPosting("FP1", "A1", decimal.RequireFromString("100"))
	if err := valid.Validate(); err != nil {
		t.Errorf("valid posting rejected: %v", err)
	}

	if err := NewPosting("", "A1", decimal.Zero).Validate(); err == nil {
		t.Error("posting without party reference accepted")
	}
	if err := NewPosting("FP1", " ", decimal.Zero).Validate(); err == nil {
		t.Error("posting without agreement reference accepted")
	}
}

func TestSumPostings(t *testing.T) {
	postings := []Posting{
		NewPosting("FP1", "A1", decimal.RequireFromString("600.005")),
		NewPosting("FP2", "A2", decimal.RequireFromString("400.004")),
		NewPosting("FP3", "A3", decimal.RequireFromString("-0.01")),
	}

	got := SumPostings(postings)
	want := decimal.RequireFromString("1000.00")
	if !got.Equal(want) {
		t.Errorf("SumPostings = %s, want %s", got, want)
	}

	if !SumPostings(nil).Equal(decimal.Zero) {
		t.Errorf("SumPostings(nil) = %s, want 0", SumPostings(nil))
	}
}

func TestBatchDateRange(t *testing.T) {
	bilagList := []*Bilag{
		NewBilag(decimal.Zero, "", "AB", "B1", date(15)),
		NewBilag(decimal.Zero, "", "AB", "B2", date(3)),
		NewBilag(decimal.Zero, "", "AB", "B3", date(28)),
	}

	first, last, err := BatchDateRange(bilagList)
	if err != nil {
		t.Fatalf("BatchDateRange returned error: %v", err)
	}
	if !first.Equal(date(3)) {
		t.Errorf("first = %s, want %s", first, date(3))
	}
	if !last.Equal(date(28)) {
		t.Errorf("last = %s, want %s", last, date(28))
	}
}

func TestBatchDateRangeEmpty(t *testing.T) {
	if _, _, err := BatchDateRange(nil); err == nil {
		t.Error("expected error for empty bilag list, got none")
	}
}

func TestBilagString(t *testing.T) {
	bilag := NewBilag(decimal.RequireFromString("1000"), "Husleje", "AB", "B100", date(1))
	s := bilag.String()
	if !strings.Contains(s, "B100") || !strings.Contains(s, "1000.00") {
		t.Errorf("unexpected String(): %s", s)
	}
}
