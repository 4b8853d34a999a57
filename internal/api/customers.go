package api

import (
	"context"
	"net/http"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/types"
)

// ListCustomers returns one page of customers.
func ListCustomers(ctx context.Context, c *envelope.Caller, p types.ListParams) envelope.Result[types.Page[types.Customer]] {
	return envelope.Call[types.Page[types.Customer]](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/customers"),
		Query:  p.Query(),
		Op:     "list customers",
	})
}

// GetCustomer fetches one customer by id.
func GetCustomer(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[types.Customer] {
	return envelope.Call[types.Customer](ctx, c, envelope.Request{
		Method: http.MethodGet,
		Path:   path("/customers/%d", id),
		Op:     "get customer",
	})
}

// CreateCustomer creates a customer.
func CreateCustomer(ctx context.Context, c *envelope.Caller, in types.CustomerInput) envelope.Result[types.Customer] {
	return envelope.Call[types.Customer](ctx, c, envelope.Request{
		Method: http.MethodPost,
		Path:   path("/customers"),
		Body:   in,
		Op:     "create customer",
	})
}

// UpdateCustomer replaces a customer.
func UpdateCustomer(ctx context.Context, c *envelope.Caller, id int64, in types.CustomerInput) envelope.Result[types.Customer] {
	return envelope.Call[types.Customer](ctx, c, envelope.Request{
		Method: http.MethodPut,
		Path:   path("/customers/%d", id),
		Body:   in,
		Op:     "update customer",
	})
}

// DeleteCustomer removes a customer.
func DeleteCustomer(ctx context.Context, c *envelope.Caller, id int64) envelope.Result[struct{}] {
	return envelope.Call[struct{}](ctx, c, envelope.Request{
		Method: http.MethodDelete,
		Path:   path("/customers/%d", id),
		Op:     "delete customer",
	})
}
