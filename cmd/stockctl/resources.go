package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	client "github.com/stockroom/stockroom-client"
)

// listFlags are shared by every `<resource> list` command.
type listFlags struct {
	page, limit int
	search      string
	filters     map[string]string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.limit, "limit", 20, "Page size")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Free-text search")
	cmd.Flags().StringToStringVarP(&f.filters, "filter", "f", nil, "Extra filters, e.g. -f category=tools")
}

func (f *listFlags) params() client.ListParams {
	return client.ListParams{Page: f.page, Limit: f.limit, Search: f.search, Filters: f.filters}
}

// listCmd builds `<name> list` around one client list call.
func listCmd[T any](name string, list func(*client.Client, *cobra.Command, client.ListParams) client.Result[client.Page[T]]) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, true)
			if err != nil {
				return err
			}
			defer c.Close()
			page, err := list(c, cmd, lf.params()).Unpack()
			if err != nil {
				return fmt.Errorf("list %s: %w", name, err)
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	lf.bind(cmd)
	return cmd
}

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Product catalog"}
	cmd.AddCommand(listCmd("products", func(c *client.Client, cmd *cobra.Command, p client.ListParams) client.Result[client.Page[client.Product]] {
		return c.ListProducts(cmd.Context(), p)
	}))
	return cmd
}

func newCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Short: "Customers"}
	cmd.AddCommand(listCmd("customers", func(c *client.Client, cmd *cobra.Command, p client.ListParams) client.Result[client.Page[client.Customer]] {
		return c.ListCustomers(cmd.Context(), p)
	}))
	return cmd
}

func newSuppliersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "suppliers", Short: "Suppliers"}
	cmd.AddCommand(listCmd("suppliers", func(c *client.Client, cmd *cobra.Command, p client.ListParams) client.Result[client.Page[client.Supplier]] {
		return c.ListSuppliers(cmd.Context(), p)
	}))
	return cmd
}

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "inventory", Short: "Stock levels"}
	cmd.AddCommand(listCmd("inventory", func(c *client.Client, cmd *cobra.Command, p client.ListParams) client.Result[client.Page[client.InventoryItem]] {
		return c.ListInventory(cmd.Context(), p)
	}))
	return cmd
}

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Sales orders"}
	cmd.AddCommand(listCmd("orders", func(c *client.Client, cmd *cobra.Command, p client.ListParams) client.Result[client.Page[client.SalesOrder]] {
		return c.ListSalesOrders(cmd.Context(), p)
	}))

	var customerID int64
	var lines []string
	var notes string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a draft sales order",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.SalesOrderInput{CustomerID: customerID, Notes: notes}
			for _, raw := range lines {
				l, err := parseLine(raw)
				if err != nil {
					return err
				}
				in.Lines = append(in.Lines, l)
			}
			c, err := openClient(cmd, true)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := checkOrder(cmd.Context(), c, in); err != nil {
				return err
			}
			order, err := c.CreateSalesOrder(cmd.Context(), in).Unpack()
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	}
	create.Flags().Int64VarP(&customerID, "customer", "c", 0, "Customer ID (required)")
	create.Flags().StringArrayVarP(&lines, "line", "l", nil, "Order line PRODUCT_ID:QTY:UNIT_PRICE[:DISCOUNT], repeatable")
	create.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = create.MarkFlagRequired("customer")
	_ = create.MarkFlagRequired("line")
	cmd.AddCommand(create)
	return cmd
}

// orderForm describes what `orders create` accepts. Customers and products
// must be among the backend's current options; inactive products are
// offered disabled and therefore rejected.
func orderForm(customers, products client.OptionSet) *client.Form {
	return &client.Form{Title: "Sales order", Fields: []client.Field{
		client.SelectField{Base: client.FieldBase{Key: "customer", Label: "Customer", Required: true}, Options: customers},
		client.SelectField{Base: client.FieldBase{Key: "products", Label: "Product", Required: true}, Multi: true, Options: products},
		client.TextAreaField{Base: client.FieldBase{Key: "notes", Label: "Notes"}, MaxLen: 500},
	}}
}

// checkOrder validates in against freshly fetched option lists before it
// is sent.
func checkOrder(ctx context.Context, c *client.Client, in client.SalesOrderInput) error {
	customers := client.RemoteOptions[int64](c, "options/customers", nil)
	products := client.RemoteOptions[int64](c, "options/products", nil)
	defer customers.Close()
	defer products.Close()

	form := orderForm(customers, products)
	if err := form.Resolve(ctx); err != nil {
		return fmt.Errorf("load order options: %w", err)
	}
	ids := make([]string, len(in.Lines))
	for i, l := range in.Lines {
		ids[i] = strconv.FormatInt(l.ProductID, 10)
	}
	return form.Validate(client.Values{
		"customer": strconv.FormatInt(in.CustomerID, 10),
		"products": strings.Join(ids, ","),
		"notes":    in.Notes,
	})
}

// parseLine reads PRODUCT_ID:QTY:UNIT_PRICE[:DISCOUNT].
func parseLine(raw string) (client.OrderLine, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return client.OrderLine{}, fmt.Errorf("invalid line %q: want PRODUCT_ID:QTY:UNIT_PRICE[:DISCOUNT]", raw)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return client.OrderLine{}, fmt.Errorf("invalid product id in %q: %w", raw, err)
	}
	nums := make([]decimal.Decimal, 3)
	for i, s := range parts[1:] {
		if nums[i], err = decimal.NewFromString(s); err != nil {
			return client.OrderLine{}, fmt.Errorf("invalid number %q in line %q", s, raw)
		}
	}
	return client.OrderLine{ProductID: id, Quantity: nums[0], UnitPrice: nums[1], Discount: nums[2]}, nil
}

func newOptionsCmd() *cobra.Command {
	var query map[string]string
	cmd := &cobra.Command{
		Use:   "options ENDPOINT",
		Short: "Resolve an option list, e.g. `stockctl options options/units`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd, true)
			if err != nil {
				return err
			}
			defer c.Close()
			src := client.RemoteOptions[any](c, args[0], query)
			defer src.Close()
			if err := src.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), src.Options())
		},
	}
	cmd.Flags().StringToStringVarP(&query, "query", "q", nil, "Query parameters, e.g. -q category=tools")
	return cmd
}
