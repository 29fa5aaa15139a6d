// Package currencyutils provides common currency and decimal operations used throughout the application.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	invariantPattern = regexp.MustCompile(`^[+-]?(\d{1,3}(,\d{3})+|\d*)(\.\d+)?$`)
	localePattern    = regexp.MustCompile(`^[+-]?(\d{1,3}(\.\d{3})+|\d*)(,\d+)?$`)
)

// ParseAmount parses an amount written either in invariant format ("1234.56",
// "1,234.56") or in es-EC format ("1234,56", "1.234,56"). The invariant
// reading is tried first.
// A comma only counts as a group separator before exactly three digits, so
// "1,5" is 1.5, not 15 as a plain invariant parse would read it.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amountStr)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	if invariantPattern.MatchString(s) {
		if amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "")); err == nil {
			return amount, nil
		}
	}

	if localePattern.MatchString(s) {
		standardized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		if amount, err := decimal.NewFromString(standardized); err == nil {
			return amount, nil
		}
	}

	return decimal.Zero, fmt.Errorf("failed to parse amount '%s'", amountStr)
}

// ParseAmountOrZero is ParseAmount with the error replaced by zero. Documents
// issued by different billing systems are inconsistent in their formatting, so
// an unreadable amount counts as zero.
func ParseAmountOrZero(amountStr string) decimal.Decimal {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// FormatAmount renders an amount with at most two decimals and no trailing
// zeros, using '.' as decimal separator ("12.5", "3", "0.07").
func FormatAmount(amount decimal.Decimal) string {
	return amount.Round(2).String()
}

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Sum adds every value.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
