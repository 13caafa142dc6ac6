// Package core provides the ledger record model and amount parsing.
//
// This file contains functions for parsing monetary amounts from feed strings
// into decimal values.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a feed amount to a decimal.
//
// Feeds deliver amounts in both English (1,234.50) and European (1.234,50)
// notation, optionally with a leading or trailing currency symbol. The sign is
// kept; the engine takes the magnitude later. The separator that appears last
// is the decimal mark, and the other one is accepted only as a thousands
// separator between 3-digit groups. A lone dot is always a decimal mark. A
// lone comma followed by exactly three digits (1,234) could be either and is
// rejected rather than guessed. Returns ErrInvalidAmount for empty,
// non-numeric or ambiguous input.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("12,34")     -> 12.34
//	ParseAmount("-1,234.50") -> -1234.5
//	ParseAmount("1.234,50")  -> 1234.5
//	ParseAmount("€ 12,50")   -> 12.5
//	ParseAmount("1,234")     -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	sign, body, ok := splitAmount(s)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}
	num, ok := normalizeSeparators(body)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(sign + num)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// splitAmount strips surrounding whitespace and currency symbols and splits
// off the sign. body holds only digits, commas and dots.
func splitAmount(s string) (sign, body string, ok bool) {
	s = strings.TrimFunc(s, isSymbolOrSpace)
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = "-"
		}
		s = strings.TrimLeftFunc(s[1:], isSymbolOrSpace)
	}
	if s == "" {
		return "", "", false
	}
	for _, r := range s {
		if !isDigit(r) && r != ',' && r != '.' {
			return "", "", false
		}
	}
	return sign, s, true
}

// normalizeSeparators rewrites body to plain "digits[.digits]".
func normalizeSeparators(body string) (string, bool) {
	lastComma := strings.LastIndexByte(body, ',')
	lastDot := strings.LastIndexByte(body, '.')

	switch {
	case lastComma < 0 && lastDot < 0:
		return body, true

	case lastComma >= 0 && lastDot >= 0:
		mark, group := lastDot, byte(',')
		if lastComma > lastDot {
			mark, group = lastComma, '.'
		}
		intPart, ok := ungroup(body[:mark], group)
		if !ok {
			return "", false
		}
		frac := body[mark+1:]
		if !allDigits(frac) {
			return "", false
		}
		return intPart + "." + frac, true
	}

	sep := byte('.')
	if lastComma >= 0 {
		sep = ','
	}
	if strings.Count(body, string(sep)) > 1 {
		return ungroup(body, sep)
	}

	i := strings.IndexByte(body, sep)
	intPart, frac := body[:i], body[i+1:]
	if !allDigits(frac) {
		return "", false
	}
	if sep == ',' && len(frac) == 3 && isLeadingGroup(intPart) {
		return "", false
	}
	if intPart == "" {
		intPart = "0"
	}
	return intPart + "." + frac, true
}

// ungroup removes thousands separators, requiring a 1-3 digit leading group
// followed by 3-digit groups. A string without separators passes through.
func ungroup(s string, sep byte) (string, bool) {
	parts := strings.Split(s, string(sep))
	if len(parts) == 1 {
		return s, allDigits(s)
	}
	if !isLeadingGroup(parts[0]) {
		return "", false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !allDigits(p) {
			return "", false
		}
	}
	return strings.Join(parts, ""), true
}

func isLeadingGroup(s string) bool {
	return len(s) >= 1 && len(s) <= 3 && s[0] != '0' && allDigits(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSymbolOrSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
}

// FormatAmount renders d with two decimals for wire formats. Display
// formatting with currency symbols belongs to the caller.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
