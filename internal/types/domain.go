package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// User is the signed-in operator.
type User struct {
	ID    string `json:"userId"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Product is a catalog item.
type Product struct {
	ID          int64           `json:"productId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	SupplierID  *int64          `json:"supplierId,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Customer buys through sales orders.
type Customer struct {
	ID        int64     `json:"customerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"taxId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Supplier provides products.
type Supplier struct {
	ID          int64     `json:"supplierId"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStatus is the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderLine is one product row of a sales order.
type OrderLine struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
}

// Total is quantity × unit price − discount.
func (l OrderLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Sub(l.Discount)
}

// SalesOrder is a customer order.
type SalesOrder struct {
	ID         int64       `json:"orderId"`
	Number     string      `json:"number"`
	CustomerID int64       `json:"customerId"`
	Status     OrderStatus `json:"status"`
	Lines      []OrderLine `json:"lines"`
	Notes      string      `json:"notes,omitempty"`
	OrderDate  time.Time   `json:"orderDate"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Total sums every line.
func (o SalesOrder) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// InventoryItem is the stock of one product at one location/lot.
type InventoryItem struct {
	ID        int64           `json:"inventoryId"`
	ProductID int64           `json:"productId"`
	Location  string          `json:"location"`
	Lot       string          `json:"lot,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	ExpiresOn *time.Time      `json:"expiresOn,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Upload describes a stored file.
type Upload struct {
	ID   string `json:"uploadId"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}
