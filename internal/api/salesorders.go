package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// ListSalesOrders returns one page of sales orders.
func ListSalesOrders(ctx context.Context, c *envelope.Caller, p types.ListParams) envelope.Result[types.Page[types.SalesOrder]] {
	return envelope.Call[types.Page[types.SalesOrder]](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/sales-orders"),
		Query:  p.Query(),
		Op:     "list sales orders",
	})
}

// GetSalesOrder fetches one sales order with its lines.
func GetSalesOrder(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[types.SalesOrder] {
	return envelope.Call[types.SalesOrder](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/sales-orders/%d", id),
		Op:     "get sales order",
	})
}

// CreateSalesOrder places a draft order.
func CreateSalesOrder(ctx context.Context, c *envelope.Caller, in types.SalesOrderInput) envelope.Result[types.SalesOrder] {
	return envelope.Call[types.SalesOrder](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/sales-orders"),
		Body:   in,
		Op:     "create sales order",
	})
}

// UpdateSalesOrderStatus moves an order to status. The backend rejects
// transitions its workflow does not allow.
func UpdateSalesOrderStatus(ctx context.Context, c *envelope.Caller, id int64, status types.OrderStatus) envelope.Result[types.SalesOrder] {
	return envelope.Call[types.SalesOrder](ctx, c, envelope.Request{
		Method: http.MethodPatch,
		Path:   path("/sales-orders/%d/status", id),
		Body:   types.StatusUpdate{Status: status},
		Op:     "update sales order status",
	})
}

// DeleteSalesOrder removes a draft order.
func DeleteSalesOrder(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[struct{}] {
	return envelope.Call[struct{}](ctx, c, envelope.Request{
		Method: http.MethodDelete,
		Path:   path("/sales-orders/%d", id),
		Op:     "delete sales order",
	})
}
