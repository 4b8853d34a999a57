package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// ListSuppliers returns one page of suppliers.
func ListSuppliers(ctx context.Context, c *envelope.Caller, p types.ListParams) envelope.Result[types.Page[types.Supplier]] {
	return envelope.Call[types.Page[types.Supplier]](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/suppliers"),
		Query:  p.Query(),
		Op:     "list suppliers",
	})
}

// GetSupplier fetches one supplier by id.
func GetSupplier(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[types.Supplier] {
	return envelope.Call[types.Supplier](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/suppliers/%d", id),
		Op:     "get supplier",
	})
}

// CreateSupplier creates a supplier.
func CreateSupplier(ctx context.Context, c *envelope.Caller, in types.SupplierInput) envelope.Result[types.Supplier] {
	return envelope.Call[types.Supplier](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/suppliers"),
		Body:   in,
		Op:     "create supplier",
	})
}

// UpdateSupplier replaces a supplier.
func UpdateSupplier(ctx context.Context, c *envelope.Caller, id int64, in types.SupplierInput) envelope.Result[types.Supplier] {
	return envelope.Call[types.Supplier](ctx, c, envelope.Request{
		Method: http.MethodPut,
		Path:   path("/suppliers/%d", id),
		Body:   in,
		Op:     "update supplier",
	})
}

// DeleteSupplier removes a supplier.
func DeleteSupplier(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[struct{}] {
	return envelope.Call[struct{}](ctx, c, envelope.Request{
		Method: http.MethodDelete,
		Path:   path("/suppliers/%d", id),
		Op:     "delete supplier",
	})
}
