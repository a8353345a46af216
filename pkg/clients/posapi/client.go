// Package posapi talks to the remote POS backend that owns orders and,
// optionally, register shifts. Heterogeneous upstream payloads are mapped to
// the canonical models here and nowhere else.
package posapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shiftdesk/internal/config"
	"github.com/mamadbah2/shiftdesk/internal/domain/models"
	"github.com/mamadbah2/shiftdesk/internal/repository"
)

var _ repository.ShiftRepository = (*APIClient)(nil)

// Client exposes the POS backend operations used by the application.
type Client interface {
	repository.ShiftRepository
	ListOrders(ctx context.Context, query models.OrderQuery) ([]models.Order, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	location   *time.Location
}

// NewClient builds a POS backend client. loc is used for upstream
// timestamps that carry no zone.
func NewClient(cfg config.POSAPIConfig, loc *time.Location) *APIClient {
	if loc == nil {
		loc = time.UTC
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(retryIdempotent)

	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{
		httpClient: restyClient,
		location:   loc,
	}
}

// retryIdempotent retries GETs on transport errors and 5xx answers. Open and
// close are never replayed.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// apiError is the error body returned by the POS backend.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// checkResponse maps transport failures and HTTP statuses onto the domain
// error taxonomy. notFound is returned for 404 answers.
func checkResponse(op string, resp *resty.Response, err error, notFound error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrUpstreamUnavailable, err)
	}

	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	message := http.StatusText(code)
	var body apiError
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil {
		if body.Message != "" {
			message = body.Message
		} else if body.Error != "" {
			message = body.Error
		}
	}

	switch {
	case code == http.StatusNotFound && notFound != nil:
		return fmt.Errorf("%s: %w", op, notFound)
	case code == http.StatusConflict:
		return fmt.Errorf("%s: %w: %s", op, models.ErrInvalidState, message)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", op, &models.ValidationError{Field: "upstream", Reason: message})
	default:
		return fmt.Errorf("%s: %w: status=%d, message=%s", op, models.ErrUpstreamUnavailable, code, message)
	}
}

// unwrapList accepts either a bare JSON array or an object wrapping it under
// one of the usual envelope keys.
func unwrapList(body []byte) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return json.RawMessage("[]"), nil
	}
	if strings.HasPrefix(trimmed, "[") {
		return json.RawMessage(trimmed), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}
	for _, key := range []string{"data", "content", "items", "result"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		// Paged responses nest one more level: {"data": {"content": [...]}}.
		if inner := strings.TrimSpace(string(raw)); strings.HasPrefix(inner, "{") {
			return unwrapList(raw)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("decode list envelope: no list field in response")
}

// unwrapObject accepts a bare object or one wrapped under "data".
func unwrapObject(body []byte) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if inner := strings.TrimSpace(string(envelope.Data)); strings.HasPrefix(inner, "{") {
			return envelope.Data
		}
	}
	return body
}
