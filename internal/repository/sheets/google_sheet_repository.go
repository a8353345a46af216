// Package sheets keeps the closed-shift ledger in a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shiftdesk/internal/config"
)

// ErrEmptyRange is returned when no A1 range is given.
var ErrEmptyRange = errors.New("sheets: range must not be empty")

// Repository is the row store behind the ledger. The ledger appends one row
// per closed shift; the daily report reads the rows back.
type Repository interface {
	AppendRow(ctx context.Context, sheetRange string, row []interface{}) error
	ReadRows(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository stores ledger rows in one spreadsheet.
type GoogleSheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with the service account file in
// cfg and targets the ledger spreadsheet.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger.With(zap.String("spreadsheet_id", cfg.SpreadsheetID)),
	}, nil
}

// AppendRow adds row below the last ledger row. Cells are written RAW so
// shift ids and RFC3339 timestamps stay text and amounts stay numbers.
func (r *GoogleSheetRepository) AppendRow(ctx context.Context, sheetRange string, row []interface{}) error {
	if sheetRange == "" {
		return ErrEmptyRange
	}

	resp, err := r.values.Append(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{row},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append ledger row into %s: %w", sheetRange, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	r.logger.Debug("ledger row appended", zap.String("range", sheetRange), zap.String("updated_range", updated))
	return nil
}

// ReadRows returns every row of sheetRange. Amounts come back as numbers
// and dates as the text that was written.
func (r *GoogleSheetRepository) ReadRows(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, ErrEmptyRange
	}

	resp, err := r.values.Get(r.spreadsheetID, sheetRange).
		MajorDimension("ROWS").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read ledger rows from %s: %w", sheetRange, err)
	}

	r.logger.Debug("ledger rows read", zap.String("range", sheetRange), zap.Int("rows", len(resp.Values)))
	return resp.Values, nil
}
