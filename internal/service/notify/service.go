// Package notify pushes shift events to the store manager over WhatsApp.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/config"
	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/service/reporting"
	client "github.com/mamadbah2/shiftdesk/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// Service formats shift events and sends them to the configured manager.
type Service struct {
	client    client.Client
	managerID string
	location  *time.Location
	logger    *zap.Logger
}

// NewService wires a notifier. Timestamps are rendered in loc.
func NewService(cfg config.WhatsAppConfig, client client.Client, loc *time.Location, logger *zap.Logger) *Service {
	svc := &Service{
		client:    client,
		managerID: cfg.ManagerID,
		location:  loc,
		logger:    logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	return svc
}

// NotifyShiftClosed sends the close summary of a shift.
func (s *Service) NotifyShiftClosed(ctx context.Context, shift models.Shift, summary models.ReconciliationSummary) error {
	return s.send(ctx, s.formatShiftClosed(shift, summary))
}

// SendDailyReport sends the end-of-day totals.
func (s *Service) SendDailyReport(ctx context.Context, report models.DailyReport) error {
	return s.send(ctx, reporting.FormatDailyReport(report))
}

// SendStaleShifts warns about shifts left open too long. Nothing is sent
// for an empty list.
func (s *Service) SendStaleShifts(ctx context.Context, shifts []models.Shift, now time.Time) error {
	if len(shifts) == 0 {
		return nil
	}
	return s.send(ctx, s.formatStaleShifts(shifts, now))
}

func (s *Service) send(ctx context.Context, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   s.managerID,
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("notify manager: %w", err)
	}

	s.logger.Debug("manager notified", zap.String("message_id", resp.MessageID()))
	return nil
}

func (s *Service) formatShiftClosed(shift models.Shift, summary models.ReconciliationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shift closed: %s\n", shift.OperatorID)
	fmt.Fprintf(&b, "Window: %s - %s\n", s.clock(shift.OpenedAt), s.clock(shift.WindowEnd(shift.OpenedAt)))
	fmt.Fprintf(&b, "Orders: %d, revenue %s (cash %s, non-cash %s)\n",
		summary.OrderCount, summary.Revenue, summary.CashCollected, summary.NonCashCollected)
	fmt.Fprintf(&b, "Expected drawer: %s", summary.ExpectedDrawer)

	if summary.DeclaredCash != nil {
		fmt.Fprintf(&b, "\nDeclared: %s", *summary.DeclaredCash)
	}
	if summary.Variance != nil {
		switch v := *summary.Variance; {
		case v < 0:
			fmt.Fprintf(&b, "\nShort by %s", -v)
		case v > 0:
			fmt.Fprintf(&b, "\nOver by %s", v)
		default:
			b.WriteString("\nDrawer balanced")
		}
	}
	if shift.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s", shift.Note)
	}
	return b.String()
}

func (s *Service) formatStaleShifts(shifts []models.Shift, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d shift(s) still open:", len(shifts))
	for _, shift := range shifts {
		open := now.Sub(shift.OpenedAt).Truncate(time.Minute)
		fmt.Fprintf(&b, "\n- %s since %s (%s)", shift.OperatorID, s.clock(shift.OpenedAt), open)
	}
	return b.String()
}

func (s *Service) clock(t time.Time) string {
	return t.In(s.location).Format("2006-01-02 15:04")
}
