// Package cashcount validates and compares denomination-based cash counts.
package cashcount

import (
	"math"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// MaxQuantity bounds a single count row.
const MaxQuantity = 1_000_000

// Compare reconciles an opening and a closing count line by line, iterating
// the tender set from the highest value down. Denominations absent on both
// sides are omitted. Entries outside the tender set are ignored; Validate
// rejects them upstream.
func Compare(tender models.Tender, opening, closing []models.DenominationEntry) models.DenominationComparison {
	openQty := quantities(opening)
	closeQty := quantities(closing)

	result := models.DenominationComparison{Rows: []models.DenominationRow{}}

	for _, denom := range tender {
		o := openQty[denom]
		c := closeQty[denom]
		if o == 0 && c == 0 {
			continue
		}

		row := models.DenominationRow{
			Denomination: denom,
			OpenQty:      o,
			CloseQty:     c,
			DiffQty:      c - o,
			OpenTotal:    denom * models.Money(o),
			CloseTotal:   denom * models.Money(c),
		}
		row.DiffTotal = denom * models.Money(row.DiffQty)

		result.Rows = append(result.Rows, row)
		result.OpeningTotal += row.OpenTotal
		result.ClosingTotal += row.CloseTotal
	}

	result.DifferenceTotal = result.ClosingTotal - result.OpeningTotal
	return result
}

// Total sums denomination × quantity over the entries. Run Validate first;
// an unvalidated count may overflow.
func Total(entries []models.DenominationEntry) models.Money {
	var total models.Money
	for _, e := range entries {
		total += e.LineTotal()
	}
	return total
}

// Validate checks that every entry uses a legal denomination and a
// quantity between 0 and MaxQuantity, and that the count total fits in
// Money. field prefixes the error for API messages.
func Validate(tender models.Tender, field string, entries []models.DenominationEntry) error {
	var total models.Money
	for i, e := range entries {
		if !tender.Contains(e.Denomination) {
			return models.NewValidationError(field, "entry %d: %d is not a legal denomination", i, e.Denomination)
		}
		if e.Quantity < 0 || e.Quantity > MaxQuantity {
			return models.NewValidationError(field, "entry %d: quantity must be between 0 and %d, got %d", i, MaxQuantity, e.Quantity)
		}
		line, ok := mulMoney(e.Denomination, e.Quantity)
		if !ok || total > math.MaxInt64-line {
			return models.NewValidationError(field, "entry %d: count total is out of range", i)
		}
		total += line
	}
	return nil
}

// mulMoney multiplies a positive denomination by a non-negative quantity,
// reporting false on overflow.
func mulMoney(d models.Money, qty int) (models.Money, bool) {
	if qty == 0 {
		return 0, true
	}
	if d < 0 || int64(d) > math.MaxInt64/int64(qty) {
		return 0, false
	}
	return d * models.Money(qty), true
}

// quantities folds entries into denomination → quantity, summing repeats.
func quantities(entries []models.DenominationEntry) map[models.Money]int {
	out := make(map[models.Money]int, len(entries))
	for _, e := range entries {
		out[e.Denomination] += e.Quantity
	}
	return out
}
