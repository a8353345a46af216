// Package reconciliation turns a shift's order window into drawer figures.
package reconciliation

import "github.com/mamadbah2/shiftdesk/internal/domain/models"

// Calculate computes the reconciliation summary for a drawer that started
// with initialCash. Only settled orders (paid and completed) contribute.
//
// expected drawer = initial cash + cash collected - change returned
func Calculate(initialCash models.Money, orders []models.Order) models.ReconciliationSummary {
	summary := models.ReconciliationSummary{}

	for _, order := range orders {
		if !order.IsSettled() {
			continue
		}

		summary.OrderCount++
		summary.Revenue += order.Total
		summary.ChangeReturned += order.Change

		if order.IsCash() {
			summary.CashCollected += order.Total
		} else {
			summary.NonCashCollected += order.Total
		}
	}

	summary.ExpectedDrawer = initialCash + summary.CashCollected - summary.ChangeReturned
	return summary
}

// ForShift runs Calculate with the shift's opening cash and, once the shift
// is closed, adds the declared cash and its variance against the expectation.
func ForShift(shift models.Shift, orders []models.Order) models.ReconciliationSummary {
	summary := Calculate(shift.InitialCash, orders)

	if shift.Status == models.ShiftClosed && shift.ClosingCash != nil {
		declared := *shift.ClosingCash
		variance := declared - summary.ExpectedDrawer
		summary.DeclaredCash = &declared
		summary.Variance = &variance
	}

	return summary
}
