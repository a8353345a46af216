package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

func TestCreateShiftAssignsIDAndTracksCurrent(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	shift := &models.Shift{OperatorID: "op-1", Status: models.ShiftOpen, OpenedAt: time.Now(), InitialCash: 500000}
	if err := repo.CreateShift(ctx, shift); err != nil {
		t.Fatalf("CreateShift returned error: %v", err)
	}
	if shift.ID == "" {
		t.Fatal("expected generated id")
	}

	current, err := repo.CurrentShift(ctx, "op-1")
	if err != nil || current == nil {
		t.Fatalf("expected current shift, got %v, %v", current, err)
	}
	if current.ID != shift.ID || current.InitialCash != 500000 {
		t.Fatalf("unexpected current shift %+v", current)
	}

	none, err := repo.CurrentShift(ctx, "op-2")
	if err != nil || none != nil {
		t.Fatalf("expected no shift for op-2, got %v, %v", none, err)
	}
}

func TestConcurrentOpenOnlyOneWins(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.CreateShift(ctx, &models.Shift{OperatorID: "op-1", Status: models.ShiftOpen, OpenedAt: time.Now()})
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, models.ErrInvalidState):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != 15 {
		t.Fatalf("expected 1 win and 15 conflicts, got %d/%d", wins, conflicts)
	}
}

func TestCloseShift(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	shift := &models.Shift{OperatorID: "op-1", Status: models.ShiftOpen, OpenedAt: time.Now()}
	if err := repo.CreateShift(ctx, shift); err != nil {
		t.Fatalf("CreateShift returned error: %v", err)
	}

	closedAt := time.Now()
	update := *shift
	update.Status = models.ShiftClosed
	update.ClosedAt = &closedAt
	update.ClosingCash = models.MoneyPtr(640000)
	update.Note = "short 5k"

	if err := repo.CloseShift(ctx, &update); err != nil {
		t.Fatalf("CloseShift returned error: %v", err)
	}

	stored, err := repo.GetShift(ctx, shift.ID)
	if err != nil {
		t.Fatalf("GetShift returned error: %v", err)
	}
	if stored.Status != models.ShiftClosed || stored.ClosingCash == nil || *stored.ClosingCash != 640000 || stored.Note != "short 5k" {
		t.Fatalf("unexpected stored shift %+v", stored)
	}

	if current, _ := repo.CurrentShift(ctx, "op-1"); current != nil {
		t.Fatalf("closed shift must not be current: %+v", current)
	}

	again := *stored
	again.Note = "rewrite"
	if err := repo.CloseShift(ctx, &again); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second close, got %v", err)
	}
	stored, _ = repo.GetShift(ctx, shift.ID)
	if stored.Note != "short 5k" {
		t.Fatalf("closed shift was mutated: %+v", stored)
	}

	if err := repo.CreateShift(ctx, &models.Shift{OperatorID: "op-1", Status: models.ShiftOpen, OpenedAt: time.Now()}); err != nil {
		t.Fatalf("reopening after close should succeed: %v", err)
	}
}

func TestGetShiftNotFound(t *testing.T) {
	_, err := NewRepository().GetShift(context.Background(), "missing")
	if !errors.Is(err, models.ErrShiftNotFound) {
		t.Fatalf("expected ErrShiftNotFound, got %v", err)
	}
}

func TestListShifts(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, op := range []string{"op-1", "op-2", "op-3"} {
		shift := &models.Shift{OperatorID: op, Status: models.ShiftOpen, OpenedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.CreateShift(ctx, shift); err != nil {
			t.Fatalf("CreateShift returned error: %v", err)
		}
	}

	tests := []struct {
		name         string
		query        models.ShiftQuery
		validateFunc func(t *testing.T, got []models.Shift)
	}{
		{
			name:  "all newest first",
			query: models.ShiftQuery{},
			validateFunc: func(t *testing.T, got []models.Shift) {
				if len(got) != 3 || got[0].OperatorID != "op-3" || got[2].OperatorID != "op-1" {
					t.Fatalf("unexpected order %+v", got)
				}
			},
		},
		{
			name:  "by operator",
			query: models.ShiftQuery{OperatorID: "op-2"},
			validateFunc: func(t *testing.T, got []models.Shift) {
				if len(got) != 1 || got[0].OperatorID != "op-2" {
					t.Fatalf("unexpected result %+v", got)
				}
			},
		},
		{
			name: "opened before cutoff",
			query: func() models.ShiftQuery {
				cutoff := base.Add(90 * time.Minute)
				return models.ShiftQuery{Status: models.ShiftOpen, To: &cutoff}
			}(),
			validateFunc: func(t *testing.T, got []models.Shift) {
				if len(got) != 2 {
					t.Fatalf("expected 2 shifts, got %+v", got)
				}
			},
		},
		{
			name:  "limit",
			query: models.ShiftQuery{Limit: 1},
			validateFunc: func(t *testing.T, got []models.Shift) {
				if len(got) != 1 || got[0].OperatorID != "op-3" {
					t.Fatalf("unexpected result %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListShifts(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListShifts returned error: %v", err)
			}
			tt.validateFunc(t, got)
		})
	}
}
