package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// ListInventory returns one page of stock rows.
func ListInventory(ctx context.Context, c *envelope.Caller, p types.ListParams) envelope.Result[types.Page[types.InventoryItem]] {
	return envelope.Call[types.Page[types.InventoryItem]](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/inventory"),
		Query:  p.Query(),
		Op:     "list inventory",
	})
}

// InventoryByProduct returns every stock row held for productID.
func InventoryByProduct(ctx context.Context, c *envelope.Caller, productID int64) envelope.Result[[]types.InventoryItem] {
	return envelope.Call[[]types.InventoryItem](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/inventory/products/%d", productID),
		Op:     "inventory by product",
	})
}

// AdjustStock applies a stock delta and returns the updated row.
func AdjustStock(ctx context.Context, c *envelope.Caller, adj types.StockAdjustment) envelope.Result[types.InventoryItem] {
	return envelope.Call[types.InventoryItem](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/inventory/adjustments"),
		Body:   adj,
		Op:     "adjust stock",
	})
}
