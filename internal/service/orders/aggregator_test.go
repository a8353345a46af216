package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

type fakeSource struct {
	orders  []models.Order
	err     error
	block   bool
	queries []models.OrderQuery
}

func (f *fakeSource) ListOrders(ctx context.Context, query models.OrderQuery) ([]models.Order, error) {
	f.queries = append(f.queries, query)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.orders, f.err
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, time.UTC)
}

func TestWindowFiltersLocally(t *testing.T) {
	source := &fakeSource{orders: []models.Order{
		{ID: "before", OperatorID: "op-1", OrderedAt: at(7, 59)},
		{ID: "at-open", OperatorID: "op-1", OrderedAt: at(8, 0)},
		{ID: "middle", OperatorID: "op-1", OrderedAt: at(12, 0)},
		{ID: "other-operator", OperatorID: "op-2", OrderedAt: at(12, 0)},
		{ID: "at-close", OperatorID: "op-1", OrderedAt: at(16, 0)},
		{ID: "after", OperatorID: "op-1", OrderedAt: at(16, 1)},
	}}

	to := at(16, 0)
	window := NewAggregator(source, time.Second, nil).Window(context.Background(), "op-1", at(8, 0), &to)

	if window.Degraded {
		t.Fatalf("unexpected degraded window: %v", window.Cause)
	}

	got := make([]string, 0, len(window.Orders))
	for _, o := range window.Orders {
		got = append(got, o.ID)
	}
	want := []string{"at-close", "middle", "at-open"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if len(source.queries) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(source.queries))
	}
	q := source.queries[0]
	if q.OperatorID != "op-1" || !q.From.Equal(at(8, 0)) || !q.To.Equal(to) {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestWindowOpenEndedUsesClock(t *testing.T) {
	source := &fakeSource{orders: []models.Order{
		{ID: "now", OperatorID: "op-1", OrderedAt: at(10, 0)},
		{ID: "future", OperatorID: "op-1", OrderedAt: at(11, 0)},
	}}

	agg := NewAggregator(source, 0, nil).WithClock(func() time.Time { return at(10, 30) })
	window := agg.Window(context.Background(), "op-1", at(8, 0), nil)

	if len(window.Orders) != 1 || window.Orders[0].ID != "now" {
		t.Fatalf("unexpected orders %+v", window.Orders)
	}
	if !source.queries[0].To.Equal(at(10, 30)) {
		t.Fatalf("expected upper bound from clock, got %v", source.queries[0].To)
	}
}

func TestWindowDegrades(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
	}{
		{name: "source error", source: &fakeSource{err: models.ErrUpstreamUnavailable}},
		{name: "timeout", source: &fakeSource{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := NewAggregator(tt.source, 20*time.Millisecond, nil).Window(context.Background(), "op-1", at(8, 0), nil)
			if !window.Degraded {
				t.Fatal("expected degraded window")
			}
			if len(window.Orders) != 0 {
				t.Fatalf("degraded window must be empty, got %d orders", len(window.Orders))
			}
			if window.Cause == nil {
				t.Fatal("expected a cause")
			}
		})
	}
}

func TestWindowTimeoutCause(t *testing.T) {
	window := NewAggregator(&fakeSource{block: true}, 10*time.Millisecond, nil).Window(context.Background(), "op-1", at(8, 0), nil)
	if !errors.Is(window.Cause, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", window.Cause)
	}
}
