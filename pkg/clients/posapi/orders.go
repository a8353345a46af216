package posapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// ListOrders fetches the operator's orders in the given range. The backend
// filter is a hint only; callers re-apply the window predicate.
func (c *APIClient) ListOrders(ctx context.Context, query models.OrderQuery) ([]models.Order, error) {
	req := c.httpClient.R().SetContext(ctx)
	if query.OperatorID != "" {
		req.SetQueryParam("accountId", query.OperatorID)
	}
	if !query.From.IsZero() {
		req.SetQueryParam("from", query.From.Format(time.RFC3339))
	}
	if !query.To.IsZero() {
		req.SetQueryParam("to", query.To.Format(time.RFC3339))
	}

	resp, err := req.Get("/orders")
	if err := checkResponse("list orders", resp, err, nil); err != nil {
		return nil, err
	}

	raw, err := unwrapList(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var payloads []orderPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("list orders: decode: %w", err)
	}

	orders := make([]models.Order, 0, len(payloads))
	for _, p := range payloads {
		order, err := p.toModel(c.location)
		if err != nil {
			// An order without a usable timestamp can never fall in a window.
			continue
		}
		orders = append(orders, order)
	}

	return orders, nil
}
