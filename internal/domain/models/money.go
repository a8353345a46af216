package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount expressed in the smallest unit of the store currency
// (đồng for VND). Sums never go through floating point.
type Money int64

// MoneyFromDecimal rounds an upstream amount to whole currency units.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(0).IntPart())
}

// String renders the amount with thousands separators, e.g. "1,250,000".
func (m Money) String() string {
	value := int64(m)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := strconv.FormatInt(value, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// MoneyPtr is a small helper for optional amounts.
func MoneyPtr(m Money) *Money {
	return &m
}

// Tender is the fixed set of legal banknote and coin values, highest first.
type Tender []Money

// DefaultTender lists the Vietnamese đồng denominations in circulation.
var DefaultTender = Tender{500000, 200000, 100000, 50000, 20000, 10000, 5000, 2000, 1000, 500}

// Contains reports whether value is a legal denomination.
func (t Tender) Contains(value Money) bool {
	for _, d := range t {
		if d == value {
			return true
		}
	}
	return false
}

// ParseTender reads a comma separated list of denominations. The result is
// sorted descending; duplicates and non-positive values are rejected.
func ParseTender(raw string) (Tender, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty denomination list")
	}

	seen := make(map[Money]bool)
	var tender Tender
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid denomination %q: %w", part, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("denomination must be positive, got %d", value)
		}
		if seen[Money(value)] {
			return nil, fmt.Errorf("duplicate denomination %d", value)
		}
		seen[Money(value)] = true
		tender = append(tender, Money(value))
	}

	if len(tender) == 0 {
		return nil, errors.New("empty denomination list")
	}

	sort.Slice(tender, func(i, j int) bool { return tender[i] > tender[j] })
	return tender, nil
}
