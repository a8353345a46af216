package posapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// flexString decodes ids that arrive as strings, numbers or small objects
// carrying an "id".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	case data[0] == '{':
		var obj struct {
			ID        flexString `json:"id"`
			AccountID flexString `json:"accountId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*f = firstString(obj.ID, obj.AccountID)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported id value %s", data)
		}
		*f = flexString(n.String())
	}
	return nil
}

func firstString(values ...flexString) flexString {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDecimal(values ...decimal.NullDecimal) models.Money {
	for _, v := range values {
		if v.Valid {
			return models.MoneyFromDecimal(v.Decimal)
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// zoneless layouts seen in upstream payloads
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp reads ISO-8601 timestamps; values without a zone are taken
// in loc.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// orderPayload is the union of the field names the POS backend has used
// for orders over time.
type orderPayload struct {
	ID      flexString `json:"id"`
	OrderID flexString `json:"orderId"`

	AccountID  flexString `json:"accountId"`
	OperatorID flexString `json:"operatorId"`
	EmployeeID flexString `json:"employeeId"`
	CreatedBy  flexString `json:"createdBy"`

	OrderDate   string `json:"orderDate"`
	CreatedDate string `json:"createdDate"`
	CreatedAt   string `json:"createdAt"`

	OrderStatus   string `json:"orderStatus"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
	Payment       *struct {
		Method string `json:"method"`
		Status string `json:"status"`
	} `json:"payment"`

	TotalAmount  decimal.NullDecimal `json:"totalAmount"`
	Total        decimal.NullDecimal `json:"total"`
	FinalAmount  decimal.NullDecimal `json:"finalAmount"`
	ChangeAmount decimal.NullDecimal `json:"changeAmount"`
	Change       decimal.NullDecimal `json:"change"`
}

func (p orderPayload) toModel(loc *time.Location) (models.Order, error) {
	stamp := firstNonEmpty(p.OrderDate, p.CreatedDate, p.CreatedAt)
	orderedAt, err := parseTimestamp(stamp, loc)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", firstString(p.ID, p.OrderID), err)
	}

	method := p.PaymentMethod
	paymentStatus := p.PaymentStatus
	if p.Payment != nil {
		method = firstNonEmpty(method, p.Payment.Method)
		paymentStatus = firstNonEmpty(paymentStatus, p.Payment.Status)
	}

	return models.Order{
		ID:            string(firstString(p.ID, p.OrderID)),
		OperatorID:    string(firstString(p.AccountID, p.OperatorID, p.EmployeeID, p.CreatedBy)),
		OrderedAt:     orderedAt,
		Status:        normalizeOrderStatus(firstNonEmpty(p.OrderStatus, p.Status)),
		PaymentStatus: normalizePaymentStatus(paymentStatus),
		PaymentMethod: strings.TrimSpace(method),
		Total:         firstDecimal(p.TotalAmount, p.Total, p.FinalAmount),
		Change:        firstDecimal(p.ChangeAmount, p.Change),
	}, nil
}

func normalizeOrderStatus(raw string) models.OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "complete", "done":
		return models.OrderCompleted
	case "pending", "processing", "new":
		return models.OrderPending
	case "cancelled", "canceled":
		return models.OrderCancelled
	default:
		return models.OrderUnknown
	}
}

func normalizePaymentStatus(raw string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid":
		return models.PaymentPaid
	case "unpaid", "pending":
		return models.PaymentUnpaid
	default:
		return models.PaymentUnknown
	}
}

// denominationPayload is one cash-count row on the wire.
type denominationPayload struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int             `json:"quantity"`
}

func denominationsToModel(in []denominationPayload) []models.DenominationEntry {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.DenominationEntry, 0, len(in))
	for _, d := range in {
		out = append(out, models.DenominationEntry{
			Denomination: models.MoneyFromDecimal(d.Denomination),
			Quantity:     d.Quantity,
		})
	}
	return out
}

// denominationRequest is the outgoing form; the backend wants plain numbers.
type denominationRequest struct {
	Denomination int64 `json:"denomination"`
	Quantity     int   `json:"quantity"`
}

func denominationsFromModel(in []models.DenominationEntry) []denominationRequest {
	out := make([]denominationRequest, 0, len(in))
	for _, d := range in {
		out = append(out, denominationRequest{
			Denomination: int64(d.Denomination),
			Quantity:     d.Quantity,
		})
	}
	return out
}

// shiftPayload is the POS backend's shift representation.
type shiftPayload struct {
	ID      flexString `json:"id"`
	ShiftID flexString `json:"shiftId"`

	OperatorID flexString `json:"operatorId"`
	AccountID  flexString `json:"accountId"`

	Status string `json:"status"`

	OpenedAt  string `json:"openedAt"`
	StartTime string `json:"startTime"`
	ClosedAt  string `json:"closedAt"`
	EndTime   string `json:"endTime"`

	InitialCash decimal.NullDecimal `json:"initialCash"`
	ClosingCash decimal.NullDecimal `json:"closingCash"`
	Note        string              `json:"note"`

	OpeningDenominations []denominationPayload `json:"openingDenominations"`
	ClosingDenominations []denominationPayload `json:"closingDenominations"`

	OpenedBy string `json:"openedBy"`
	ClosedBy string `json:"closedBy"`
}

func (p shiftPayload) toModel(loc *time.Location) (models.Shift, error) {
	id := string(firstString(p.ID, p.ShiftID))
	openedAt, err := parseTimestamp(firstNonEmpty(p.OpenedAt, p.StartTime), loc)
	if err != nil {
		return models.Shift{}, fmt.Errorf("shift %s: opened at: %w", id, err)
	}

	shift := models.Shift{
		ID:                   id,
		OperatorID:           string(firstString(p.OperatorID, p.AccountID)),
		OpenedAt:             openedAt,
		InitialCash:          firstDecimal(p.InitialCash),
		Note:                 p.Note,
		OpeningDenominations: denominationsToModel(p.OpeningDenominations),
		ClosingDenominations: denominationsToModel(p.ClosingDenominations),
		OpenedBy:             p.OpenedBy,
		ClosedBy:             p.ClosedBy,
		Status:               models.ShiftOpen,
	}

	if closed := firstNonEmpty(p.ClosedAt, p.EndTime); closed != "" {
		closedAt, err := parseTimestamp(closed, loc)
		if err != nil {
			return models.Shift{}, fmt.Errorf("shift %s: closed at: %w", id, err)
		}
		shift.ClosedAt = &closedAt
		shift.Status = models.ShiftClosed
	}

	if strings.EqualFold(strings.TrimSpace(p.Status), "closed") && shift.ClosedAt == nil {
		return models.Shift{}, fmt.Errorf("shift %s: closed without a close time", id)
	}

	if shift.Status == models.ShiftClosed {
		closing := firstDecimal(p.ClosingCash)
		shift.ClosingCash = &closing
	}

	return shift, nil
}
