package models

import "time"

// DailyReport aggregates the ledger rows of the shifts closed on one day.
type DailyReport struct {
	Date             time.Time `json:"date"`
	ShiftCount       int       `json:"shift_count"`
	OrderCount       int       `json:"order_count"`
	Revenue          Money     `json:"revenue"`
	CashCollected    Money     `json:"cash_collected"`
	NonCashCollected Money     `json:"non_cash_collected"`
	ExpectedDrawer   Money     `json:"expected_drawer"`
	DeclaredCash     Money     `json:"declared_cash"`
	NetVariance      Money     `json:"net_variance"`
	ShortShifts      int       `json:"short_shifts"`
	OverShifts       int       `json:"over_shifts"`
}
