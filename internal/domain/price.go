package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxPrice is the largest price a recipe can carry: five digits, two of
// them after the decimal point.
const MaxPrice Price = 99999

// Price is a non-negative decimal amount stored as integer cents.
type Price int64

// ParsePrice parses a decimal string such as "5", "5.5" or "12.99".
// More than two fractional digits, negative values and values above
// MaxPrice are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 2) {
		return 0, fmt.Errorf("price %q must have at most 2 decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	if strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return 0, fmt.Errorf("price %q must be a non-negative decimal", s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("price %q is not a decimal number", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a decimal number", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("price %q is not a decimal number", s)
	}
	if w > int64(MaxPrice)/100 {
		return 0, fmt.Errorf("price %q exceeds %s", s, MaxPrice)
	}

	p := Price(w*100 + f)
	if p > MaxPrice {
		return 0, fmt.Errorf("price %q exceeds %s", s, MaxPrice)
	}
	return p, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Cents returns the price in cents.
func (p Price) Cents() int64 { return int64(p) }

// String formats the price with exactly two decimal places.
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}
