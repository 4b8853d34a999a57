package client

import (
	"context"
	"io"

	"github.com/stockroom/stockroom-client/internal/api"
)

// --------------------------------------------------------------------
// Products
// --------------------------------------------------------------------

// ListProducts returns one page of products. Filters may carry "category".
func (c *Client) ListProducts(ctx context.Context, p ListParams) Result[Page[Product]] {
	return api.ListProducts(c.bind(ctx), c.caller, p)
}

func (c *Client) GetProduct(ctx context.Context, id int64) Result[Product] {
	return api.GetProduct(c.bind(ctx), c.caller, id)
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) Result[Product] {
	return api.CreateProduct(c.bind(ctx), c.caller, in)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) Result[Product] {
	return api.UpdateProduct(c.bind(ctx), c.caller, id, in)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) Result[struct{}] {
	res := api.DeleteProduct(c.bind(ctx), c.caller, id)
	if res.Success {
		c.inventory.Forget(id)
	}
	return res
}

// SetProductImage uploads r as the product's image.
func (c *Client) SetProductImage(ctx context.Context, id int64, name string, r io.Reader) Result[Product] {
	return api.SetProductImage(c.bind(ctx), c.caller, id, name, r)
}

// --------------------------------------------------------------------
// Customers and suppliers
// --------------------------------------------------------------------

func (c *Client) ListCustomers(ctx context.Context, p ListParams) Result[Page[Customer]] {
	return api.ListCustomers(c.bind(ctx), c.caller, p)
}

func (c *Client) GetCustomer(ctx context.Context, id int64) Result[Customer] {
	return api.GetCustomer(c.bind(ctx), c.caller, id)
}

func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) Result[Customer] {
	return api.CreateCustomer(c.bind(ctx), c.caller, in)
}

func (c *Client) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) Result[Customer] {
	return api.UpdateCustomer(c.bind(ctx), c.caller, id, in)
}

func (c *Client) DeleteCustomer(ctx context.Context, id int64) Result[struct{}] {
	return api.DeleteCustomer(c.bind(ctx), c.caller, id)
}

func (c *Client) ListSuppliers(ctx context.Context, p ListParams) Result[Page[Supplier]] {
	return api.ListSuppliers(c.bind(ctx), c.caller, p)
}

func (c *Client) GetSupplier(ctx context.Context, id int64) Result[Supplier] {
	return api.GetSupplier(c.bind(ctx), c.caller, id)
}

func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) Result[Supplier] {
	return api.CreateSupplier(c.bind(ctx), c.caller, in)
}

func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) Result[Supplier] {
	return api.UpdateSupplier(c.bind(ctx), c.caller, id, in)
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) Result[struct{}] {
	return api.DeleteSupplier(c.bind(ctx), c.caller, id)
}

// --------------------------------------------------------------------
// Sales orders
// --------------------------------------------------------------------

// ListSalesOrders returns one page of orders. Filters may carry "status".
func (c *Client) ListSalesOrders(ctx context.Context, p ListParams) Result[Page[SalesOrder]] {
	return api.ListSalesOrders(c.bind(ctx), c.caller, p)
}

func (c *Client) GetSalesOrder(ctx context.Context, id int64) Result[SalesOrder] {
	return api.GetSalesOrder(c.bind(ctx), c.caller, id)
}

// CreateSalesOrder creates a draft order.
func (c *Client) CreateSalesOrder(ctx context.Context, in SalesOrderInput) Result[SalesOrder] {
	return api.CreateSalesOrder(c.bind(ctx), c.caller, in)
}

// UpdateSalesOrderStatus moves an order along draft → confirmed →
// shipped → delivered, or to cancelled. The backend rejects other moves.
func (c *Client) UpdateSalesOrderStatus(ctx context.Context, id int64, status OrderStatus) Result[SalesOrder] {
	return api.UpdateSalesOrderStatus(c.bind(ctx), c.caller, id, status)
}

// DeleteSalesOrder removes a draft order.
func (c *Client) DeleteSalesOrder(ctx context.Context, id int64) Result[struct{}] {
	return api.DeleteSalesOrder(c.bind(ctx), c.caller, id)
}

// --------------------------------------------------------------------
// Inventory and uploads
// --------------------------------------------------------------------

func (c *Client) ListInventory(ctx context.Context, p ListParams) Result[Page[InventoryItem]] {
	return api.ListInventory(c.bind(ctx), c.caller, p)
}

// InventoryByProduct returns the stock rows of one product. Results are
// cached per product for the life of the session; AdjustStock drops the
// cached entry for the product it touches.
func (c *Client) InventoryByProduct(ctx context.Context, productID int64) ([]InventoryItem, error) {
	if _, ok := c.inventory.Peek(productID); ok {
		inventoryCacheTotal.WithLabelValues("hit").Inc()
	} else {
		inventoryCacheTotal.WithLabelValues("miss").Inc()
	}
	return c.inventory.Get(ctx, productID)
}

func (c *Client) loadInventory(ctx context.Context, productID int64) ([]InventoryItem, error) {
	return api.InventoryByProduct(c.bind(ctx), c.caller, productID).Unpack()
}

// AdjustStock applies a signed quantity change at one location.
func (c *Client) AdjustStock(ctx context.Context, adj StockAdjustment) Result[InventoryItem] {
	res := api.AdjustStock(c.bind(ctx), c.caller, adj)
	if res.Success {
		c.inventory.Forget(adj.ProductID)
	}
	return res
}

// Upload stores a file and returns where the backend put it.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, fields map[string]string) Result[Upload] {
	return api.Upload(c.bind(ctx), c.caller, name, r, fields)
}
