// Package core holds the domain types shared by the session, guard and
// ledger packages: users, expenses, budgets and the money representation.
//
// This file contains parsing and formatting of monetary amounts. Amounts
// are stored as int64 cents; floats only appear at the display edge.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FromUnits builds a Money from whole currency units (e.g. 42 -> 42.00).
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34
//	ParseAmount("12,34") -> 12.34
//	ParseAmount("12.346") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

// Units returns the amount in whole currency units as a float64 for
// display. Use cents for arithmetic to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// String renders the amount with two decimal places.
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.Cents/100, m.Cents%100)
}
