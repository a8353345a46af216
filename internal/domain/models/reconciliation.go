package models

// ReconciliationSummary is derived from a shift and its order window on every
// view and never persisted.
type ReconciliationSummary struct {
	Revenue          Money  `json:"revenue"`
	CashCollected    Money  `json:"cash_collected"`
	NonCashCollected Money  `json:"non_cash_collected"`
	ChangeReturned   Money  `json:"change_returned"`
	ExpectedDrawer   Money  `json:"expected_drawer"`
	OrderCount       int    `json:"order_count"`
	DeclaredCash     *Money `json:"declared_cash,omitempty"`
	Variance         *Money `json:"variance,omitempty"`
}

// DenominationRow compares one denomination between two cash counts.
type DenominationRow struct {
	Denomination Money `json:"denomination"`
	OpenQty      int   `json:"open_qty"`
	CloseQty     int   `json:"close_qty"`
	DiffQty      int   `json:"diff_qty"`
	OpenTotal    Money `json:"open_total"`
	CloseTotal   Money `json:"close_total"`
	DiffTotal    Money `json:"diff_total"`
}

// DenominationComparison is the line-by-line and aggregate result of
// comparing an opening and a closing count.
type DenominationComparison struct {
	Rows            []DenominationRow `json:"rows"`
	OpeningTotal    Money             `json:"opening_total"`
	ClosingTotal    Money             `json:"closing_total"`
	DifferenceTotal Money             `json:"difference_total"`
}
