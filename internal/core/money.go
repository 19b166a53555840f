// Package core implements the billing and month-coverage reconciliation
// engine for monthly parking-space rental contracts.
//
// This file holds VND amount parsing and formatting. Amounts are integer
// đồng; the currency has no fractional minor unit, so no decimal handling is
// needed anywhere in the system.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a user-entered price string to an integer VND amount.
// Thousands separators (both "," and ".") are stripped. Negative input is
// rejected; refunds are authored by the system, never typed in.
//
// Examples:
//
//	ParseAmount("3,000,000") -> 3000000, nil
//	ParseAmount("3.000.000") -> 3000000, nil
//	ParseAmount("0")         -> 0, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatVND renders an amount the way the original reports did: digit groups
// separated by "." with the đồng sign appended, e.g. "3.000.000 ₫".
func FormatVND(amount int64) string {
	if amount == 0 {
		return "0 ₫"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + groupDigits(amount, '.') + " ₫"
}

// GroupDigits renders an amount with comma separators for form echo values,
// e.g. "3,000,000".
func GroupDigits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + groupDigits(amount, ',')
}

func groupDigits(n int64, sep byte) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
