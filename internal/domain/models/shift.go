package models

import "time"

// ShiftStatus is the state of a register shift.
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is one operator's work session at a register. ClosedAt and
// ClosingCash stay nil while the shift is open.
type Shift struct {
	ID                   string              `bson:"_id" json:"id"`
	OperatorID           string              `bson:"operator_id" json:"operator_id"`
	Status               ShiftStatus         `bson:"status" json:"status"`
	OpenedAt             time.Time           `bson:"opened_at" json:"opened_at"`
	ClosedAt             *time.Time          `bson:"closed_at,omitempty" json:"closed_at"`
	InitialCash          Money               `bson:"initial_cash" json:"initial_cash"`
	ClosingCash          *Money              `bson:"closing_cash,omitempty" json:"closing_cash"`
	Note                 string              `bson:"note,omitempty" json:"note,omitempty"`
	OpeningDenominations []DenominationEntry `bson:"opening_denominations,omitempty" json:"opening_denominations,omitempty"`
	ClosingDenominations []DenominationEntry `bson:"closing_denominations,omitempty" json:"closing_denominations,omitempty"`
	OpenedBy             string              `bson:"opened_by,omitempty" json:"opened_by,omitempty"`
	ClosedBy             string              `bson:"closed_by,omitempty" json:"closed_by,omitempty"`
}

// IsOpen reports whether the shift still accepts a close.
func (s *Shift) IsOpen() bool {
	return s != nil && s.Status == ShiftOpen
}

// WindowEnd returns the upper bound of the shift's order window: the close
// time for closed shifts, now for open ones.
func (s *Shift) WindowEnd(now time.Time) time.Time {
	if s.ClosedAt != nil {
		return *s.ClosedAt
	}
	return now
}

// DenominationEntry is one row of a cash count.
type DenominationEntry struct {
	Denomination Money `bson:"denomination" json:"denomination"`
	Quantity     int   `bson:"quantity" json:"quantity"`
}

// LineTotal is denomination × quantity.
func (e DenominationEntry) LineTotal() Money {
	return e.Denomination * Money(e.Quantity)
}

// ShiftQuery filters shift history listings. Zero fields are ignored.
type ShiftQuery struct {
	OperatorID string
	Status     ShiftStatus
	From       *time.Time
	To         *time.Time
	Limit      int
}

// Matches applies the query to a single shift, on opened-at.
func (q ShiftQuery) Matches(s Shift) bool {
	if q.OperatorID != "" && s.OperatorID != q.OperatorID {
		return false
	}
	if q.Status != "" && s.Status != q.Status {
		return false
	}
	if q.From != nil && s.OpenedAt.Before(*q.From) {
		return false
	}
	if q.To != nil && s.OpenedAt.After(*q.To) {
		return false
	}
	return true
}
