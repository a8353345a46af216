package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/config"
	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

const staleSweepSchedule = "@every 1h"

// DailyReporter produces the end-of-day ledger totals.
type DailyReporter interface {
	GenerateDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// StaleShiftFinder lists shifts left open for too long.
type StaleShiftFinder interface {
	StaleShifts(ctx context.Context, olderThan time.Duration) ([]models.Shift, error)
}

// Messenger delivers scheduled messages to the manager.
type Messenger interface {
	SendDailyReport(ctx context.Context, report models.DailyReport) error
	SendStaleShifts(ctx context.Context, shifts []models.Shift, now time.Time) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	reporter  DailyReporter
	shifts    StaleShiftFinder
	messenger Messenger
	cfg       config.ReportingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance. reporter may be nil when
// the ledger is not configured; the daily report is then skipped.
func NewScheduler(cfg config.ReportingConfig, reporter DailyReporter, shifts StaleShiftFinder, messenger Messenger, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard 5-field parser, evaluated in the store's timezone.
	c := cron.New(cron.WithLocation(cfg.Location()))

	return &Scheduler{
		cron:      c,
		reporter:  reporter,
		shifts:    shifts,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.reporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDailyReport); err != nil {
			return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
		}
	}
	if _, err := s.cron.AddFunc(staleSweepSchedule, s.sweepStaleShifts); err != nil {
		return fmt.Errorf("schedule stale shift sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reporter.GenerateDailyReport(ctx, s.now().In(s.cfg.Location()))
	if err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
		return
	}

	if err := s.messenger.SendDailyReport(ctx, report); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report sent successfully", zap.Int("shifts", report.ShiftCount))
	}
}

func (s *Scheduler) sweepStaleShifts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stale, err := s.shifts.StaleShifts(ctx, s.cfg.StaleShiftAfter)
	if err != nil {
		s.logger.Error("failed to list stale shifts", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Warn("stale shifts found", zap.Int("count", len(stale)))
	if err := s.messenger.SendStaleShifts(ctx, stale, s.now()); err != nil {
		s.logger.Error("failed to send stale shift alert", zap.Error(err))
	}
}
