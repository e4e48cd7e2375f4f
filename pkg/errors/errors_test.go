package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryReconciliation, 5},
		{CategoryInternal, 5},
		{ErrorCategory("unknown"), 1},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "test")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode for %s = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestErrorIncludesSuggestion(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "file missing")
	if err.Error() != "file missing" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithSuggestion("check the path")
	if !strings.Contains(err.Error(), "check the path") {
		t.Errorf("Error() does not carry the suggestion: %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryParse, CodeInvalidFormat, "bad input")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
	if err.StackTrace == nil {
		t.Error("wrapped error has no stack trace")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryParse, CodeInvalidFormat, "x") != nil {
		t.Error("Wrap(nil) must return nil")
	}
}

func TestMalformedAmountError(t *testing.T) {
	err := MalformedAmountError("abc", fmt.Errorf("parse failed"))

	if err.Category != CategoryParse || err.Code != CodeMalformedAmount {
		t.Errorf("unexpected taxonomy: %s/%s", err.Category, err.Code)
	}
	if err.Context["value"] != "abc" {
		t.Errorf("context missing offending value: %v", err.Context)
	}

	// The constructor must also work without a cause.
	if MalformedAmountError("abc", nil) == nil {
		t.Error("MalformedAmountError(value, nil) returned nil")
	}
}

func TestPostingsNotFoundError(t *testing.T) {
	err := PostingsNotFoundError("-8.540,00", "NETT")

	if err.Code != CodePostingsNotFound {
		t.Errorf("code = %s, want postings_not_found", err.Code)
	}
	if err.Context["amount"] != "-8.540,00" || err.Context["transaction_code"] != "NETT" {
		t.Errorf("context incomplete: %v", err.Context)
	}
	if err.GetExitCode() != 5 {
		t.Errorf("exit code = %d, want 5", err.GetExitCode())
	}
}

func TestReconciliationMismatchError(t *testing.T) {
	err := ReconciliationMismatchError("B100", "1000.00", "999.99")

	if err.Code != CodeReconciliationMismatch {
		t.Errorf("code = %s, want reconciliation_mismatch", err.Code)
	}
	if err.Context["document_number"] != "B100" {
		t.Errorf("context missing document number: %v", err.Context)
	}
	if err.Context["expected"] != "1000.00" || err.Context["actual"] != "999.99" {
		t.Errorf("context missing amounts: %v", err.Context)
	}
}

func TestHasCode(t *testing.T) {
	err := PostingsNotFoundError("100,00", "NETT")

	if !HasCode(err, CodePostingsNotFound) {
		t.Error("HasCode missed the direct code")
	}
	if HasCode(err, CodeMalformedAmount) {
		t.Error("HasCode matched the wrong code")
	}
	if HasCode(fmt.Errorf("plain"), CodePostingsNotFound) {
		t.Error("HasCode matched a plain error")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !HasCode(wrapped, CodePostingsNotFound) {
		t.Error("HasCode missed the code through a wrapping layer")
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := New(CategoryFile, CodeFileNotFound, "missing")
	wrapped := fmt.Errorf("outer: %w", inner)

	got, ok := AsReconcilerError(wrapped)
	if !ok || got != inner {
		t.Error("AsReconcilerError did not extract the inner error")
	}

	if _, ok := AsReconcilerError(fmt.Errorf("plain")); ok {
		t.Error("AsReconcilerError matched a plain error")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	already := New(CategoryParse, CodeMalformedAmount, "bad amount")
	if got := WrapIfNeeded(already, CategoryInternal, CodeUnexpectedError, "x"); got != already {
		t.Error("WrapIfNeeded re-wrapped a ReconcilerError")
	}

	plain := fmt.Errorf("plain")
	got := WrapIfNeeded(plain, CategoryFile, CodeFileRead, "read failed")
	if got.Code != CodeFileRead {
		t.Errorf("code = %s, want file_read", got.Code)
	}
	if !stderrors.Is(got, plain) {
		t.Error("WrapIfNeeded lost the cause")
	}

	if WrapIfNeeded(nil, CategoryFile, CodeFileRead, "x") != nil {
		t.Error("WrapIfNeeded(nil) must return nil")
	}
}
