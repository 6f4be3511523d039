package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a BRL amount held as integer centavos. PIX payloads and the bank
// API both format amounts with exactly two decimal places, so the decimal
// string is the canonical external representation.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string such as "10.50" into Money. More than
// two decimal places or a non-positive value is rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	whole, frac, found := strings.Cut(s, ".")
	if found && len(frac) > 2 {
		return Money{}, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	// digits only in both parts; ParseInt alone would let a sign through
	// ("-0.50" parses as zero units and the sign is lost)
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return Money{}, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}

	m := Money{Cents: units*100 + cents}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MoneyFromCents wraps an already-validated centavo amount.
func MoneyFromCents(cents int64) (Money, error) {
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// Decimal renders the amount with exactly two decimal places, e.g. "10.50".
func (m Money) Decimal() string {
	return fmt.Sprintf("%d.%02d", m.Cents/100, m.Cents%100)
}
