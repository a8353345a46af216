// Package memory is a process-local shift store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/repository"
)

var _ repository.ShiftRepository = (*Repository)(nil)

// Repository keeps shifts in a map guarded by a mutex.
type Repository struct {
	mu     sync.RWMutex
	shifts map[string]models.Shift
	open   map[string]string // operator id -> open shift id
}

// NewRepository returns an empty store.
func NewRepository() *Repository {
	return &Repository{
		shifts: make(map[string]models.Shift),
		open:   make(map[string]string),
	}
}

// CurrentShift implements repository.ShiftRepository.
func (r *Repository) CurrentShift(_ context.Context, operatorID string) (*models.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.open[operatorID]
	if !ok {
		return nil, nil
	}
	shift := clone(r.shifts[id])
	return &shift, nil
}

// GetShift implements repository.ShiftRepository.
func (r *Repository) GetShift(_ context.Context, shiftID string) (*models.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shift, ok := r.shifts[shiftID]
	if !ok {
		return nil, fmt.Errorf("shift %s: %w", shiftID, models.ErrShiftNotFound)
	}
	shift = clone(shift)
	return &shift, nil
}

// CreateShift implements repository.ShiftRepository.
func (r *Repository) CreateShift(_ context.Context, shift *models.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.open[shift.OperatorID]; ok {
		return fmt.Errorf("operator %s already has open shift %s: %w", shift.OperatorID, existing, models.ErrInvalidState)
	}
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if _, ok := r.shifts[shift.ID]; ok {
		return fmt.Errorf("shift %s already exists: %w", shift.ID, models.ErrInvalidState)
	}

	r.shifts[shift.ID] = clone(*shift)
	r.open[shift.OperatorID] = shift.ID
	return nil
}

// CloseShift implements repository.ShiftRepository.
func (r *Repository) CloseShift(_ context.Context, shift *models.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.shifts[shift.ID]
	if !ok {
		return fmt.Errorf("shift %s: %w", shift.ID, models.ErrShiftNotFound)
	}
	if !stored.IsOpen() {
		return fmt.Errorf("shift %s is %s: %w", shift.ID, stored.Status, models.ErrInvalidState)
	}

	stored.Status = models.ShiftClosed
	stored.ClosedAt = shift.ClosedAt
	stored.ClosingCash = shift.ClosingCash
	stored.Note = shift.Note
	stored.ClosingDenominations = shift.ClosingDenominations
	stored.ClosedBy = shift.ClosedBy

	r.shifts[shift.ID] = clone(stored)
	delete(r.open, stored.OperatorID)
	*shift = clone(stored)
	return nil
}

// ListShifts implements repository.ShiftRepository.
func (r *Repository) ListShifts(_ context.Context, query models.ShiftQuery) ([]models.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Shift, 0)
	for _, shift := range r.shifts {
		if query.Matches(shift) {
			out = append(out, clone(shift))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

// clone detaches slices and pointers so callers cannot mutate stored state.
func clone(s models.Shift) models.Shift {
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		s.ClosedAt = &t
	}
	if s.ClosingCash != nil {
		c := *s.ClosingCash
		s.ClosingCash = &c
	}
	s.OpeningDenominations = append([]models.DenominationEntry(nil), s.OpeningDenominations...)
	s.ClosingDenominations = append([]models.DenominationEntry(nil), s.ClosingDenominations...)
	return s
}
