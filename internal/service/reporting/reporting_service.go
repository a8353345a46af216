package reporting

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	repo "github.com/mamadbah2/shiftdesk/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

// Service computes daily figures from the shift ledger.
type Service struct {
	repo   repo.Repository
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger}
}

// GenerateDailyReport totals the ledger rows dated on day's calendar date.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	rows, err := s.repo.ReadRows(ctx, repo.LedgerRange)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load ledger range: %w", err)
	}

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	report := models.DailyReport{Date: date}

	for _, row := range rows {
		if len(row) <= repo.ColVariance {
			continue
		}

		dateValue, err := parseDate(row[repo.ColDate])
		if err != nil {
			// Header rows land here too.
			s.logger.Debug("skip ledger row with invalid date", zap.Any("value", row[repo.ColDate]), zap.Error(err))
			continue
		}
		if dateValue.Format(dateLayout) != date.Format(dateLayout) {
			continue
		}

		revenue, err := parseAmount(row[repo.ColRevenue])
		if err != nil {
			s.logger.Debug("skip ledger row with invalid revenue", zap.Any("value", row[repo.ColRevenue]), zap.Error(err))
			continue
		}
		cash, _ := parseAmount(row[repo.ColCashCollected])
		nonCash, _ := parseAmount(row[repo.ColNonCashCollected])
		expected, _ := parseAmount(row[repo.ColExpectedDrawer])
		declared, _ := parseAmount(row[repo.ColClosingCash])

		report.ShiftCount++
		report.Revenue += revenue
		report.CashCollected += cash
		report.NonCashCollected += nonCash
		report.ExpectedDrawer += expected
		report.DeclaredCash += declared

		if variance, err := parseAmount(row[repo.ColVariance]); err == nil {
			report.NetVariance += variance
			switch {
			case variance < 0:
				report.ShortShifts++
			case variance > 0:
				report.OverShifts++
			}
		}

		if len(row) > repo.ColOrderCount {
			if count, err := parseInt(row[repo.ColOrderCount]); err == nil {
				report.OrderCount += count
			}
		}
	}

	return report, nil
}

// FormatDailyReport renders the report as a WhatsApp message.
func FormatDailyReport(report models.DailyReport) string {
	day := report.Date.Format(dateLayout)
	if report.ShiftCount == 0 {
		return fmt.Sprintf("Daily cash report (%s): no shifts closed.", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily cash report (%s)\n", day)
	fmt.Fprintf(&b, "Shifts closed: %d, orders: %d\n", report.ShiftCount, report.OrderCount)
	fmt.Fprintf(&b, "Revenue: %s (cash %s, non-cash %s)\n", report.Revenue, report.CashCollected, report.NonCashCollected)
	fmt.Fprintf(&b, "Expected in drawers: %s, declared: %s\n", report.ExpectedDrawer, report.DeclaredCash)
	fmt.Fprintf(&b, "Net variance: %s (%d short, %d over)", report.NetVariance, report.ShortShifts, report.OverShifts)
	return b.String()
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}

// parseAmount reads an amount cell. Unformatted reads return float64; older
// rows may hold text with separators.
func parseAmount(value interface{}) (models.Money, error) {
	switch v := value.(type) {
	case float64:
		return models.Money(v), nil
	case int64:
		return models.Money(v), nil
	case int:
		return models.Money(v), nil
	}
	str := strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(value)), ",", "")
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, err
	}
	return models.Money(n), nil
}
