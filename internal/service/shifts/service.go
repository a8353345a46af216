// Package shifts runs the register shift state machine: open, close, the
// current-shift lookup and the reconciliation view built on top of them.
package shifts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/repository"
	"github.com/mamadbah2/shiftdesk/internal/service/cashcount"
	"github.com/mamadbah2/shiftdesk/internal/service/orders"
	"github.com/mamadbah2/shiftdesk/internal/service/reconciliation"
)

// OrderWindow yields a shift's orders. *orders.Aggregator implements it.
type OrderWindow interface {
	Window(ctx context.Context, operatorID string, from time.Time, to *time.Time) orders.Window
}

// Notifier is told about every closed shift.
type Notifier interface {
	NotifyShiftClosed(ctx context.Context, shift models.Shift, summary models.ReconciliationSummary) error
}

// Ledger keeps an append-only record of closed shifts.
type Ledger interface {
	AppendShift(ctx context.Context, shift models.Shift, summary models.ReconciliationSummary) error
}

// Service coordinates shift persistence with the order window and the
// reconciliation arithmetic.
type Service struct {
	repo     repository.ShiftRepository
	orders   OrderWindow
	tender   models.Tender
	notifier Notifier
	ledger   Ledger
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier sends a message after every successful close.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLedger appends a ledger row after every successful close.
func WithLedger(l Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a shift service.
func NewService(repo repository.ShiftRepository, window OrderWindow, tender models.Tender, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(tender) == 0 {
		tender = models.DefaultTender
	}
	svc := &Service{
		repo:   repo,
		orders: window,
		tender: tender,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Tender returns the legal denominations used for counts.
func (s *Service) Tender() models.Tender {
	return s.tender
}

// OpenShiftInput carries an open request. OperatorID defaults to the actor.
// When InitialCash is nil the denomination count becomes the opening cash.
type OpenShiftInput struct {
	Actor         Actor
	OperatorID    string
	InitialCash   *models.Money
	Denominations []models.DenominationEntry
}

// OpenShiftResult is the created shift plus the advisory count check.
type OpenShiftResult struct {
	Shift         models.Shift `json:"shift"`
	CountedTotal  models.Money `json:"counted_total"`
	CountMismatch bool         `json:"count_mismatch"`
}

// CloseShiftInput carries a close request. When ClosingCash is nil the
// denomination count becomes the closing cash.
type CloseShiftInput struct {
	Actor         Actor
	ShiftID       string
	ClosingCash   *models.Money
	Note          string
	Denominations []models.DenominationEntry
}

// CloseShiftResult is the closed shift and its reconciliation at close time.
type CloseShiftResult struct {
	Shift          models.Shift                   `json:"shift"`
	Reconciliation models.ReconciliationSummary   `json:"reconciliation"`
	Comparison     *models.DenominationComparison `json:"comparison,omitempty"`
	Degraded       bool                           `json:"degraded"`
	CountedTotal   models.Money                   `json:"counted_total"`
	CountMismatch  bool                           `json:"count_mismatch"`
}

// CurrentShiftView is the answer to "what is this operator's open shift".
type CurrentShiftView struct {
	Shift    *models.Shift `json:"shift"`
	Degraded bool          `json:"degraded"`
}

// ReconciliationView is everything a drawer reconciliation screen needs.
type ReconciliationView struct {
	Shift      models.Shift                   `json:"shift"`
	Summary    models.ReconciliationSummary   `json:"summary"`
	Comparison *models.DenominationComparison `json:"comparison,omitempty"`
	Orders     []models.Order                 `json:"orders"`
	WindowEnd  time.Time                      `json:"window_end"`
	Degraded   bool                           `json:"degraded"`
}

// OpenShift starts a shift for the input operator.
func (s *Service) OpenShift(ctx context.Context, in OpenShiftInput) (*OpenShiftResult, error) {
	operatorID := strings.TrimSpace(in.OperatorID)
	if operatorID == "" {
		operatorID = in.Actor.ID
	}
	if operatorID == "" {
		return nil, models.NewValidationError("operator_id", "is required")
	}

	initial, counted, mismatch, err := s.resolveCash("initial_cash", "denominations", in.InitialCash, in.Denominations)
	if err != nil {
		return nil, err
	}

	if err := authorize(in.Actor, operatorID); err != nil {
		return nil, err
	}

	current, err := s.repo.CurrentShift(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("check current shift: %w", err)
	}
	if current != nil {
		return nil, fmt.Errorf("operator %s already has open shift %s: %w", operatorID, current.ID, models.ErrInvalidState)
	}

	if mismatch {
		s.logger.Warn("opening count differs from declared cash",
			zap.String("operator_id", operatorID),
			zap.Int64("initial_cash", int64(initial)),
			zap.Int64("counted_total", int64(counted)))
	}

	shift := &models.Shift{
		OperatorID:           operatorID,
		Status:               models.ShiftOpen,
		OpenedAt:             s.now(),
		InitialCash:          initial,
		OpeningDenominations: in.Denominations,
		OpenedBy:             in.Actor.ID,
	}
	if err := s.repo.CreateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("open shift: %w", err)
	}

	s.logger.Info("shift opened",
		zap.String("shift_id", shift.ID),
		zap.String("operator_id", operatorID),
		zap.String("opened_by", in.Actor.ID),
		zap.Int64("initial_cash", int64(shift.InitialCash)))

	return &OpenShiftResult{Shift: *shift, CountedTotal: counted, CountMismatch: mismatch}, nil
}

// CloseShift ends an open shift. The ledger and the notifier run after the
// store accepted the close; their failures are logged only.
func (s *Service) CloseShift(ctx context.Context, in CloseShiftInput) (*CloseShiftResult, error) {
	shiftID := strings.TrimSpace(in.ShiftID)
	if shiftID == "" {
		return nil, models.NewValidationError("shift_id", "is required")
	}

	closing, counted, mismatch, err := s.resolveCash("closing_cash", "denominations", in.ClosingCash, in.Denominations)
	if err != nil {
		return nil, err
	}

	shift, err := s.repo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("load shift %s: %w", shiftID, err)
	}
	if err := authorize(in.Actor, shift.OperatorID); err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, fmt.Errorf("shift %s is %s: %w", shiftID, shift.Status, models.ErrInvalidState)
	}

	if mismatch {
		s.logger.Warn("closing count differs from declared cash",
			zap.String("shift_id", shiftID),
			zap.Int64("closing_cash", int64(closing)),
			zap.Int64("counted_total", int64(counted)))
	}

	closedAt := s.now()
	closed := *shift
	closed.Status = models.ShiftClosed
	closed.ClosedAt = &closedAt
	closed.ClosingCash = models.MoneyPtr(closing)
	closed.Note = strings.TrimSpace(in.Note)
	closed.ClosingDenominations = in.Denominations
	closed.ClosedBy = in.Actor.ID

	if err := s.repo.CloseShift(ctx, &closed); err != nil {
		return nil, fmt.Errorf("close shift %s: %w", shiftID, err)
	}

	s.logger.Info("shift closed",
		zap.String("shift_id", closed.ID),
		zap.String("operator_id", closed.OperatorID),
		zap.String("closed_by", in.Actor.ID),
		zap.Int64("closing_cash", int64(closing)))

	window := s.orders.Window(ctx, closed.OperatorID, closed.OpenedAt, closed.ClosedAt)
	summary := reconciliation.ForShift(closed, window.Orders)

	result := &CloseShiftResult{
		Shift:          closed,
		Reconciliation: summary,
		Comparison:     s.compare(closed),
		Degraded:       window.Degraded,
		CountedTotal:   counted,
		CountMismatch:  mismatch,
	}

	s.afterClose(ctx, closed, summary)
	return result, nil
}

// CurrentShift returns the operator's open shift. Store failures degrade to
// an empty, flagged view.
func (s *Service) CurrentShift(ctx context.Context, actor Actor, operatorID string) (CurrentShiftView, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		operatorID = actor.ID
	}
	if operatorID == "" {
		return CurrentShiftView{}, models.NewValidationError("operator_id", "is required")
	}
	if err := authorize(actor, operatorID); err != nil {
		return CurrentShiftView{}, err
	}

	shift, err := s.repo.CurrentShift(ctx, operatorID)
	if err != nil {
		s.logger.Warn("current shift lookup degraded", zap.String("operator_id", operatorID), zap.Error(err))
		return CurrentShiftView{Degraded: true}, nil
	}
	return CurrentShiftView{Shift: shift}, nil
}

// GetShift loads a single shift the actor may see.
func (s *Service) GetShift(ctx context.Context, actor Actor, shiftID string) (*models.Shift, error) {
	shiftID = strings.TrimSpace(shiftID)
	if shiftID == "" {
		return nil, models.NewValidationError("shift_id", "is required")
	}
	shift, err := s.repo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("load shift %s: %w", shiftID, err)
	}
	if err := authorize(actor, shift.OperatorID); err != nil {
		return nil, err
	}
	return shift, nil
}

// Reconcile builds the reconciliation view of a shift. An unreachable order
// source yields zeroed order figures and Degraded.
func (s *Service) Reconcile(ctx context.Context, actor Actor, shiftID string) (*ReconciliationView, error) {
	shift, err := s.GetShift(ctx, actor, shiftID)
	if err != nil {
		return nil, err
	}

	end := shift.WindowEnd(s.now())
	window := s.orders.Window(ctx, shift.OperatorID, shift.OpenedAt, &end)

	view := &ReconciliationView{
		Shift:      *shift,
		Summary:    reconciliation.ForShift(*shift, window.Orders),
		Comparison: s.compare(*shift),
		Orders:     window.Orders,
		WindowEnd:  end,
		Degraded:   window.Degraded,
	}
	if view.Orders == nil {
		view.Orders = []models.Order{}
	}
	return view, nil
}

// History lists shifts newest first. Non-supervisors only see their own.
func (s *Service) History(ctx context.Context, actor Actor, query models.ShiftQuery) ([]models.Shift, error) {
	if query.OperatorID == "" && !actor.Supervises() {
		query.OperatorID = actor.ID
	}
	if query.OperatorID != "" {
		if err := authorize(actor, query.OperatorID); err != nil {
			return nil, err
		}
	} else if actor.ID == "" {
		return nil, fmt.Errorf("anonymous actor: %w", models.ErrPermissionDenied)
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, models.NewValidationError("to", "must not be before from")
	}
	switch query.Status {
	case "", models.ShiftOpen, models.ShiftClosed:
	default:
		return nil, models.NewValidationError("status", "must be open or closed")
	}

	shifts, err := s.repo.ListShifts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	if shifts == nil {
		shifts = []models.Shift{}
	}
	return shifts, nil
}

// StaleShifts returns open shifts opened more than olderThan ago.
func (s *Service) StaleShifts(ctx context.Context, olderThan time.Duration) ([]models.Shift, error) {
	cutoff := s.now().Add(-olderThan)
	shifts, err := s.repo.ListShifts(ctx, models.ShiftQuery{Status: models.ShiftOpen, To: &cutoff})
	if err != nil {
		return nil, fmt.Errorf("list stale shifts: %w", err)
	}
	return shifts, nil
}

// resolveCash validates a declared amount against an optional count and
// picks the amount to store.
func (s *Service) resolveCash(cashField, countField string, declared *models.Money, entries []models.DenominationEntry) (amount, counted models.Money, mismatch bool, err error) {
	if declared == nil && len(entries) == 0 {
		return 0, 0, false, models.NewValidationError(cashField, "is required when no denominations are given")
	}
	if declared != nil && *declared < 0 {
		return 0, 0, false, models.NewValidationError(cashField, "must not be negative")
	}
	if err := cashcount.Validate(s.tender, countField, entries); err != nil {
		return 0, 0, false, err
	}

	counted = cashcount.Total(entries)
	if counted < 0 {
		return 0, 0, false, models.NewValidationError(countField, "count total is out of range")
	}
	if declared == nil {
		return counted, counted, false, nil
	}
	return *declared, counted, len(entries) > 0 && counted != *declared, nil
}

func (s *Service) compare(shift models.Shift) *models.DenominationComparison {
	if shift.IsOpen() || (len(shift.OpeningDenominations) == 0 && len(shift.ClosingDenominations) == 0) {
		return nil
	}
	comparison := cashcount.Compare(s.tender, shift.OpeningDenominations, shift.ClosingDenominations)
	return &comparison
}

func (s *Service) afterClose(ctx context.Context, shift models.Shift, summary models.ReconciliationSummary) {
	if s.ledger != nil {
		if err := s.ledger.AppendShift(ctx, shift, summary); err != nil {
			s.logger.Error("failed to append shift to ledger", zap.String("shift_id", shift.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyShiftClosed(ctx, shift, summary); err != nil {
			s.logger.Error("failed to send close notification", zap.String("shift_id", shift.ID), zap.Error(err))
		}
	}
}
