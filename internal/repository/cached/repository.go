// Package cached puts a read-through current-shift cache in front of any
// shift repository.
package cached

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/repository"
)

// Cache is the subset of a key-value cache the decorator needs.
type Cache interface {
	GetCurrent(ctx context.Context, operatorID string) (*models.Shift, bool, error)
	Version(ctx context.Context, operatorID string) (int64, error)
	SetCurrent(ctx context.Context, operatorID string, shift *models.Shift, version int64) error
	Invalidate(ctx context.Context, operatorID string) error
}

var _ repository.ShiftRepository = (*Repository)(nil)

// Repository serves CurrentShift from the cache and invalidates the entry
// on every open and close. Cache failures fall through to the inner store.
type Repository struct {
	inner  repository.ShiftRepository
	cache  Cache
	logger *zap.Logger
}

// New wraps inner with cache.
func New(inner repository.ShiftRepository, cache Cache, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{inner: inner, cache: cache, logger: logger}
}

// CurrentShift implements repository.ShiftRepository.
func (r *Repository) CurrentShift(ctx context.Context, operatorID string) (*models.Shift, error) {
	shift, found, err := r.cache.GetCurrent(ctx, operatorID)
	if err != nil {
		r.logger.Warn("current shift cache read failed", zap.String("operator_id", operatorID), zap.Error(err))
	} else if found {
		return shift, nil
	}

	// The version is taken before the store read so that an open or close
	// committing in between makes SetCurrent a no-op.
	version, versionErr := r.cache.Version(ctx, operatorID)

	shift, err = r.inner.CurrentShift(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if versionErr != nil {
		r.logger.Warn("current shift cache version read failed", zap.String("operator_id", operatorID), zap.Error(versionErr))
		return shift, nil
	}
	if err := r.cache.SetCurrent(ctx, operatorID, shift, version); err != nil {
		r.logger.Warn("current shift cache write failed", zap.String("operator_id", operatorID), zap.Error(err))
	}
	return shift, nil
}

// GetShift implements repository.ShiftRepository.
func (r *Repository) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	return r.inner.GetShift(ctx, shiftID)
}

// CreateShift implements repository.ShiftRepository.
func (r *Repository) CreateShift(ctx context.Context, shift *models.Shift) error {
	err := r.inner.CreateShift(ctx, shift)
	r.invalidateAfter(ctx, shift.OperatorID, err)
	return err
}

// CloseShift implements repository.ShiftRepository.
func (r *Repository) CloseShift(ctx context.Context, shift *models.Shift) error {
	err := r.inner.CloseShift(ctx, shift)
	r.invalidateAfter(ctx, shift.OperatorID, err)
	return err
}

// ListShifts implements repository.ShiftRepository.
func (r *Repository) ListShifts(ctx context.Context, query models.ShiftQuery) ([]models.Shift, error) {
	return r.inner.ListShifts(ctx, query)
}

// invalidateAfter drops the entry after a successful write, and after a
// state conflict since that means the cached answer was stale.
func (r *Repository) invalidateAfter(ctx context.Context, operatorID string, writeErr error) {
	if writeErr != nil && !errors.Is(writeErr, models.ErrInvalidState) {
		return
	}
	if err := r.cache.Invalidate(ctx, operatorID); err != nil {
		r.logger.Warn("current shift cache invalidation failed", zap.String("operator_id", operatorID), zap.Error(err))
	}
}
