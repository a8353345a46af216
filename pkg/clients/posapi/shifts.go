package posapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

type openShiftRequest struct {
	OperatorID    string                `json:"operatorId"`
	InitialCash   int64                 `json:"initialCash"`
	Denominations []denominationRequest `json:"denominations"`
	OpenedAt      string                `json:"openedAt,omitempty"`
	OpenedBy      string                `json:"openedBy,omitempty"`
}

type closeShiftRequest struct {
	ClosingCash   int64                 `json:"closingCash"`
	Note          string                `json:"note,omitempty"`
	Denominations []denominationRequest `json:"denominations"`
	ClosedAt      string                `json:"closedAt,omitempty"`
	ClosedBy      string                `json:"closedBy,omitempty"`
}

// CurrentShift returns the operator's open shift or nil when the backend
// answers 204/404.
func (c *APIClient) CurrentShift(ctx context.Context, operatorID string) (*models.Shift, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("operatorId", operatorID).
		Get("/shifts/current")
	if err == nil && (resp.StatusCode() == http.StatusNoContent || resp.StatusCode() == http.StatusNotFound) {
		return nil, nil
	}
	if err := checkResponse("current shift", resp, err, nil); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(resp.Body()))) == 0 {
		return nil, nil
	}

	shift, err := c.decodeShift(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("current shift: %w", err)
	}
	if !shift.IsOpen() {
		return nil, nil
	}
	return shift, nil
}

// GetShift fetches a single shift.
func (c *APIClient) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", shiftID).
		Get("/shifts/{id}")
	if err := checkResponse("get shift", resp, err, models.ErrShiftNotFound); err != nil {
		return nil, err
	}

	shift, err := c.decodeShift(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return shift, nil
}

// CreateShift opens a shift on the backend and copies the stored record
// back into shift.
func (c *APIClient) CreateShift(ctx context.Context, shift *models.Shift) error {
	body := openShiftRequest{
		OperatorID:    shift.OperatorID,
		InitialCash:   int64(shift.InitialCash),
		Denominations: denominationsFromModel(shift.OpeningDenominations),
		OpenedBy:      shift.OpenedBy,
	}
	if !shift.OpenedAt.IsZero() {
		body.OpenedAt = shift.OpenedAt.Format(time.RFC3339)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post("/shifts/open")
	if err := checkResponse("open shift", resp, err, nil); err != nil {
		return err
	}

	stored, err := c.decodeShift(resp.Body())
	if err != nil {
		return fmt.Errorf("open shift: %w", err)
	}
	*shift = *stored
	return nil
}

// CloseShift closes the shift on the backend and copies the stored record
// back into shift.
func (c *APIClient) CloseShift(ctx context.Context, shift *models.Shift) error {
	body := closeShiftRequest{
		Note:          shift.Note,
		Denominations: denominationsFromModel(shift.ClosingDenominations),
		ClosedBy:      shift.ClosedBy,
	}
	if shift.ClosingCash != nil {
		body.ClosingCash = int64(*shift.ClosingCash)
	}
	if shift.ClosedAt != nil {
		body.ClosedAt = shift.ClosedAt.Format(time.RFC3339)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", shift.ID).
		SetBody(body).
		Post("/shifts/{id}/close")
	if err := checkResponse("close shift", resp, err, models.ErrShiftNotFound); err != nil {
		return err
	}

	stored, err := c.decodeShift(resp.Body())
	if err != nil {
		return fmt.Errorf("close shift: %w", err)
	}
	*shift = *stored
	return nil
}

// ListShifts returns the backend's shift history, newest first.
func (c *APIClient) ListShifts(ctx context.Context, query models.ShiftQuery) ([]models.Shift, error) {
	req := c.httpClient.R().SetContext(ctx)
	if query.OperatorID != "" {
		req.SetQueryParam("operatorId", query.OperatorID)
	}
	if query.Status != "" {
		req.SetQueryParam("status", string(query.Status))
	}
	if query.From != nil {
		req.SetQueryParam("from", query.From.Format(time.RFC3339))
	}
	if query.To != nil {
		req.SetQueryParam("to", query.To.Format(time.RFC3339))
	}

	resp, err := req.Get("/shifts")
	if err := checkResponse("list shifts", resp, err, nil); err != nil {
		return nil, err
	}

	raw, err := unwrapList(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	var payloads []shiftPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("list shifts: decode: %w", err)
	}

	shifts := make([]models.Shift, 0, len(payloads))
	for _, p := range payloads {
		shift, err := p.toModel(c.location)
		if err != nil {
			return nil, fmt.Errorf("list shifts: %w", err)
		}
		if query.Matches(shift) {
			shifts = append(shifts, shift)
		}
	}

	sort.Slice(shifts, func(i, j int) bool { return shifts[i].OpenedAt.After(shifts[j].OpenedAt) })
	if query.Limit > 0 && len(shifts) > query.Limit {
		shifts = shifts[:query.Limit]
	}
	return shifts, nil
}

func (c *APIClient) decodeShift(body []byte) (*models.Shift, error) {
	var payload shiftPayload
	if err := json.Unmarshal(unwrapObject(body), &payload); err != nil {
		return nil, fmt.Errorf("decode shift: %w", err)
	}
	shift, err := payload.toModel(c.location)
	if err != nil {
		return nil, err
	}
	return &shift, nil
}
