// Package repository declares the shift persistence contract shared by the
// MongoDB, in-memory, cached and POS-backend implementations.
package repository

import (
	"context"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// ShiftRepository persists register shifts. Implementations must guarantee
// at most one open shift per operator even under concurrent CreateShift
// calls, and must only close a shift that is still open.
type ShiftRepository interface {
	// CurrentShift returns the operator's open shift, or nil when there is none.
	CurrentShift(ctx context.Context, operatorID string) (*models.Shift, error)

	// GetShift returns models.ErrShiftNotFound for unknown ids.
	GetShift(ctx context.Context, shiftID string) (*models.Shift, error)

	// CreateShift stores a new open shift and fills in ID when empty.
	// Returns models.ErrInvalidState if the operator already has an open shift.
	CreateShift(ctx context.Context, shift *models.Shift) error

	// CloseShift records the closing fields of an open shift.
	// Returns models.ErrInvalidState if the stored shift is not open.
	CloseShift(ctx context.Context, shift *models.Shift) error

	// ListShifts returns shifts matching the query, newest first.
	ListShifts(ctx context.Context, query models.ShiftQuery) ([]models.Shift, error)
}
