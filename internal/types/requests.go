package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ListParams holds paging and filtering shared by list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Query renders p as query parameters.
func (p ListParams) Query() map[string]string {
	q := make(map[string]string, len(p.Filters)+3)
	for k, v := range p.Filters {
		q[k] = v
	}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	return q
}

// ProductInput creates or updates a product.
type ProductInput struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	SupplierID  *int64          `json:"supplierId,omitempty"`
	Active      bool            `json:"active"`
}

// CustomerInput creates or updates a customer.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
}

// SupplierInput creates or updates a supplier.
type SupplierInput struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// SalesOrderInput creates a sales order.
type SalesOrderInput struct {
	CustomerID int64       `json:"customerId"`
	Lines      []OrderLine `json:"lines"`
	Notes      string      `json:"notes,omitempty"`
}

// StatusUpdate moves a sales order through its lifecycle.
type StatusUpdate struct {
	Status OrderStatus `json:"status"`
}

// StockAdjustment changes the quantity held for a product at a location.
// Delta may be negative.
type StockAdjustment struct {
	ProductID int64           `json:"productId"`
	Location  string          `json:"location"`
	Lot       string          `json:"lot,omitempty"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason"`
}
