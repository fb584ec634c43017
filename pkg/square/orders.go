package square

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/square/square-go-sdk"

	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

// OrderSearchParams scopes a closed-order search to one location and a time window.
type OrderSearchParams struct {
	LocationID string
	ClosedFrom time.Time
	ClosedTo   time.Time
}

// SearchOrders pages through every completed or canceled order closed inside
// [ClosedFrom, ClosedTo) at the location, oldest first.
func (c *Client) SearchOrders(ctx context.Context, params OrderSearchParams) ([]Order, error) {
	if c == nil || c.sdk == nil {
		return nil, errAccessTokenRequired
	}
	if params.LocationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "square location id is required")
	}
	if params.ClosedFrom.IsZero() || !params.ClosedTo.After(params.ClosedFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "square order search needs a non-empty closed window")
	}

	sortOrder := sq.SortOrderAsc
	limit := c.pageLimit
	req := &sq.SearchOrdersRequest{
		LocationIDs: []string{params.LocationID},
		Limit:       &limit,
		Query: &sq.SearchOrdersQuery{
			Filter: &sq.SearchOrdersFilter{
				StateFilter: &sq.SearchOrdersStateFilter{
					States: []sq.OrderState{sq.OrderStateCompleted, sq.OrderStateCanceled},
				},
				DateTimeFilter: &sq.SearchOrdersDateTimeFilter{
					ClosedAt: &sq.TimeRange{
						StartAt: formatTime(params.ClosedFrom),
						EndAt:   formatTime(params.ClosedTo),
					},
				},
			},
			Sort: &sq.SearchOrdersSort{
				SortField: sq.SearchOrdersSortFieldClosedAt,
				SortOrder: &sortOrder,
			},
		},
	}

	var orders []Order
	for page := 1; ; page++ {
		c.log(ctx, "request", "search_orders", map[string]any{
			"location_id": params.LocationID,
			"page":        page,
		})
		resp, err := c.sdk.Orders.Search(ctx, req)
		if err != nil {
			c.log(ctx, "error", "search_orders", map[string]any{"error": err.Error()})
			return nil, c.mapSquareError(err, "search orders")
		}

		batch, err := decodeOrders(resp.GetOrders())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode square orders")
		}
		orders = append(orders, batch...)

		cursor := stringValue(resp.GetCursor())
		c.log(ctx, "response", "search_orders", map[string]any{
			"orders":   len(batch),
			"has_more": cursor != "",
		})
		if cursor == "" {
			return orders, nil
		}
		req.Cursor = &cursor
	}
}

// decodeOrders re-reads the SDK orders through their wire JSON so only the
// fields the aggregation needs are kept.
func decodeOrders(in []*sq.Order) ([]Order, error) {
	if len(in) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out []Order
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatTime(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}
