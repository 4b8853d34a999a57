package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// ListProducts returns one page of products.
func ListProducts(ctx context.Context, c *envelope.Caller, p types.ListParams) envelope.Result[types.Page[types.Product]] {
	return envelope.Call[types.Page[types.Product]](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/products"),
		Query:  p.Query(),
		Op:     "list products",
	})
}

// GetProduct fetches one product by id.
func GetProduct(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[types.Product] {
	return envelope.Call[types.Product](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/products/%d", id),
		Op:     "get product",
	})
}

// CreateProduct creates a product.
func CreateProduct(ctx context.Context, c *envelope.Caller, in types.ProductInput) envelope.Result[types.Product] {
	return envelope.Call[types.Product](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/products"),
		Body:   in,
		Op:     "create product",
	})
}

// UpdateProduct replaces a product.
func UpdateProduct(ctx context.Context, c *envelope.Caller, id int64, in types.ProductInput) envelope.Result[types.Product] {
	return envelope.Call[types.Product](ctx, c, envelope.Request{
		Method: http.MethodPut,
		Path:   path("/products/%d", id),
		Body:   in,
		Op:     "update product",
	})
}

// DeleteProduct removes a product.
func DeleteProduct(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[struct{}] {
	return envelope.Call[struct{}](ctx, c, envelope.Request{
		Method: http.MethodDelete,
		Path:   path("/products/%d", id),
		Op:     "delete product",
	})
}
