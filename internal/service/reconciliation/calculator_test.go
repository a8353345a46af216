package reconciliation

import (
	"testing"
	"time"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

func settled(total, change models.Money, method string) models.Order {
	return models.Order{
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentPaid,
		PaymentMethod: method,
		Total:         total,
		Change:        change,
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		initialCash models.Money
		orders      []models.Order
		want        models.ReconciliationSummary
	}{
		{
			name:        "reference shift",
			initialCash: 500000,
			orders: []models.Order{
				settled(100000, 5000, "cash"),
				settled(50000, 0, "CASH"),
				settled(75000, 0, "card"),
				{Status: models.OrderCompleted, PaymentStatus: models.PaymentUnpaid, PaymentMethod: "cash", Total: 30000},
			},
			want: models.ReconciliationSummary{
				Revenue:          225000,
				CashCollected:    150000,
				NonCashCollected: 75000,
				ChangeReturned:   5000,
				ExpectedDrawer:   645000,
				OrderCount:       3,
			},
		},
		{
			name:        "no orders",
			initialCash: 200000,
			want:        models.ReconciliationSummary{ExpectedDrawer: 200000},
		},
		{
			name:        "paid but not completed is excluded",
			initialCash: 0,
			orders: []models.Order{
				{Status: models.OrderPending, PaymentStatus: models.PaymentPaid, PaymentMethod: "cash", Total: 10000},
				{Status: models.OrderCancelled, PaymentStatus: models.PaymentPaid, PaymentMethod: "cash", Total: 20000},
			},
			want: models.ReconciliationSummary{},
		},
		{
			name:        "vietnamese cash label and unknown method",
			initialCash: 1000,
			orders: []models.Order{
				settled(40000, 2000, " Tiền Mặt "),
				settled(60000, 0, ""),
				settled(10000, 0, "bank transfer"),
			},
			want: models.ReconciliationSummary{
				Revenue:          110000,
				CashCollected:    40000,
				NonCashCollected: 70000,
				ChangeReturned:   2000,
				ExpectedDrawer:   39000,
				OrderCount:       3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.initialCash, tt.orders)
			if got != tt.want {
				t.Errorf("Calculate() = %+v, want %+v", got, tt.want)
			}
			if got.ExpectedDrawer != tt.initialCash+got.CashCollected-got.ChangeReturned {
				t.Errorf("expected drawer identity broken: %+v", got)
			}
			if got.Revenue != got.CashCollected+got.NonCashCollected {
				t.Errorf("revenue split does not add up: %+v", got)
			}
		})
	}
}

func TestForShift(t *testing.T) {
	closedAt := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	orders := []models.Order{settled(100000, 0, "cash")}

	t.Run("open shift has no variance", func(t *testing.T) {
		shift := models.Shift{Status: models.ShiftOpen, InitialCash: 50000}
		got := ForShift(shift, orders)
		if got.ExpectedDrawer != 150000 {
			t.Errorf("ExpectedDrawer = %d, want 150000", got.ExpectedDrawer)
		}
		if got.DeclaredCash != nil || got.Variance != nil {
			t.Errorf("expected no declared cash or variance on an open shift, got %+v", got)
		}
	})

	t.Run("closed shift short by 2000", func(t *testing.T) {
		shift := models.Shift{
			Status:      models.ShiftClosed,
			InitialCash: 50000,
			ClosedAt:    &closedAt,
			ClosingCash: models.MoneyPtr(148000),
		}
		got := ForShift(shift, orders)
		if got.DeclaredCash == nil || *got.DeclaredCash != 148000 {
			t.Fatalf("DeclaredCash = %v, want 148000", got.DeclaredCash)
		}
		if got.Variance == nil || *got.Variance != -2000 {
			t.Errorf("Variance = %v, want -2000", got.Variance)
		}
	})
}
