// Package orders assembles the set of orders that belong to a shift window.
package orders

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// Source lists orders from the POS backend.
type Source interface {
	ListOrders(ctx context.Context, query models.OrderQuery) ([]models.Order, error)
}

// Window is the result of an aggregation. Degraded is set when the source
// could not be reached; Orders is then empty.
type Window struct {
	Orders   []models.Order
	Degraded bool
	Cause    error
}

// Aggregator filters upstream orders down to one operator's time window.
type Aggregator struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewAggregator wires an aggregator. A non-positive timeout disables the
// per-call deadline.
func NewAggregator(source Source, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		source:  source,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the clock used when the window has no upper bound.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Window returns the operator's orders with from ≤ t ≤ to, newest first. A
// nil to means now. Source failures never surface as errors.
func (a *Aggregator) Window(ctx context.Context, operatorID string, from time.Time, to *time.Time) Window {
	end := a.now()
	if to != nil {
		end = *to
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	fetched, err := a.source.ListOrders(ctx, models.OrderQuery{
		OperatorID: operatorID,
		From:       from,
		To:         end,
	})
	if err != nil {
		a.logger.Warn("order window degraded",
			zap.String("operator_id", operatorID),
			zap.Time("from", from),
			zap.Time("to", end),
			zap.Error(err))
		return Window{Degraded: true, Cause: err}
	}

	// Upstream filtering is advisory only.
	matched := make([]models.Order, 0, len(fetched))
	for _, order := range fetched {
		if order.OperatorID != operatorID {
			continue
		}
		if order.OrderedAt.Before(from) || order.OrderedAt.After(end) {
			continue
		}
		matched = append(matched, order)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderedAt.After(matched[j].OrderedAt)
	})

	a.logger.Debug("order window assembled",
		zap.String("operator_id", operatorID),
		zap.Int("fetched", len(fetched)),
		zap.Int("matched", len(matched)))

	return Window{Orders: matched}
}
