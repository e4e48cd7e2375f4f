// Package currency converts between decimal amounts and the ledger's
// locale-specific textual currency forms.
//
// The ledger emits the same value in two encodings: the list view writes the
// sign after the digits ("5.000,00-"), while export block headers keep it in
// front ("-5.000,00"). Both use '.' as thousands separator and ',' as decimal
// separator, fixed to two decimal places. All conversions are pure functions;
// no process-wide locale state is involved.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"voucher-reconciliation-service/pkg/errors"
)

const (
	groupSeparator   = "."
	decimalSeparator = ","
)

// EncodeList formats an amount the way the ledger's list view shows it:
// grouped digits, comma decimals and a trailing minus for negative values,
// e.g. -5000 -> "5.000,00-".
func EncodeList(value decimal.Decimal) string {
	s := EncodeHeader(value)

	// Move the minus to the end
	if strings.HasPrefix(s, "-") {
		s = s[1:] + "-"
	}

	return s
}

// EncodeHeader formats an amount the way export block headers carry it: the
// same grouped form but with a leading minus, e.g. -5000 -> "-5.000,00".
func EncodeHeader(value decimal.Decimal) string {
	fixed := value.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(groupDigits(intPart))
	b.WriteString(decimalSeparator)
	b.WriteString(fracPart)

	return b.String()
}

// groupDigits inserts the thousands separator into a plain digit string.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return strings.Join(groups, groupSeparator)
}

// Decode parses a grouped, comma-decimal currency string back to a decimal
// amount, e.g. "-11.010,00" -> -11010.00. A trailing sign (list form) is
// accepted as well. An empty or non-numeric string yields a malformed amount
// error.
func Decode(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, errors.MalformedAmountError(text, nil)
	}

	normalized := trimmed
	if strings.HasSuffix(normalized, "-") {
		normalized = "-" + strings.TrimSuffix(normalized, "-")
	}

	normalized = strings.ReplaceAll(normalized, groupSeparator, "")
	normalized = strings.ReplaceAll(normalized, decimalSeparator, ".")

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, errors.MalformedAmountError(trimmed, err)
	}

	return value, nil
}
