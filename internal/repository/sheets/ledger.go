package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// LedgerRange is the sheet range holding one row per closed shift.
const LedgerRange = "Shifts!A:O"

// Ledger column positions, shared with the reporting service.
const (
	ColDate = iota
	ColShiftID
	ColOperatorID
	ColOpenedAt
	ColClosedAt
	ColInitialCash
	ColClosingCash
	ColRevenue
	ColCashCollected
	ColNonCashCollected
	ColChangeReturned
	ColExpectedDrawer
	ColVariance
	ColOrderCount
	ColNote
	ledgerColumns
)

// Ledger appends closed shifts to a spreadsheet.
type Ledger struct {
	repo     Repository
	location *time.Location
	logger   *zap.Logger
}

// NewLedger wires a ledger. Dates are written in loc.
func NewLedger(repo Repository, loc *time.Location, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{repo: repo, location: loc, logger: logger}
}

// AppendShift writes one ledger row for a closed shift.
func (l *Ledger) AppendShift(ctx context.Context, shift models.Shift, summary models.ReconciliationSummary) error {
	if shift.ClosedAt == nil {
		return fmt.Errorf("shift %s is not closed", shift.ID)
	}

	row := LedgerRow(shift, summary, l.location)
	if err := l.repo.AppendRow(ctx, LedgerRange, row); err != nil {
		return fmt.Errorf("append ledger row for shift %s: %w", shift.ID, err)
	}

	l.logger.Info("shift recorded in ledger", zap.String("shift_id", shift.ID))
	return nil
}

// LedgerRow renders the row written for a closed shift.
func LedgerRow(shift models.Shift, summary models.ReconciliationSummary, loc *time.Location) []interface{} {
	row := make([]interface{}, ledgerColumns)
	closedAt := shift.ClosedAt.In(loc)

	row[ColDate] = closedAt.Format("2006-01-02")
	row[ColShiftID] = shift.ID
	row[ColOperatorID] = shift.OperatorID
	row[ColOpenedAt] = shift.OpenedAt.In(loc).Format(time.RFC3339)
	row[ColClosedAt] = closedAt.Format(time.RFC3339)
	row[ColInitialCash] = int64(shift.InitialCash)
	row[ColClosingCash] = optionalAmount(shift.ClosingCash)
	row[ColRevenue] = int64(summary.Revenue)
	row[ColCashCollected] = int64(summary.CashCollected)
	row[ColNonCashCollected] = int64(summary.NonCashCollected)
	row[ColChangeReturned] = int64(summary.ChangeReturned)
	row[ColExpectedDrawer] = int64(summary.ExpectedDrawer)
	row[ColVariance] = optionalAmount(summary.Variance)
	row[ColOrderCount] = summary.OrderCount
	row[ColNote] = shift.Note
	return row
}

func optionalAmount(m *models.Money) interface{} {
	if m == nil {
		return ""
	}
	return int64(*m)
}
