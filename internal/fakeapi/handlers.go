package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/types"
)

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// paginate sorts items by id, applies the search filter and slices a page.
func paginate[T any](r *http.Request, items map[int64]T, name func(T) string) types.Page[T] {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	search := strings.ToLower(q.Get("search"))

	ids := make([]int64, 0, len(items))
	for id, it := range items {
		if search == "" || strings.Contains(strings.ToLower(name(it)), search) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := types.Page[T]{Items: []T{}, Total: len(ids), Page: page, Limit: limit}
	start := (page - 1) * limit
	for i := start; i < len(ids) && i < start+limit; i++ {
		out.Items = append(out.Items, items[ids[i]])
	}
	return out
}

// ------------------------------ auth ------------------------------

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		s.mu.Unlock()
		writeRejected(w, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	tok := s.issueLocked(acc.user.ID)
	exp := s.tokens[tok].expiresAt
	s.mu.Unlock()
	writeOK(w, http.StatusOK, types.LoginResponse{Token: tok, ExpiresAt: exp, User: acc.user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	uid, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == uid {
			writeOK(w, http.StatusOK, acc.user)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

// ------------------------------ products ------------------------------

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.products
	if cat := r.URL.Query().Get("category"); cat != "" {
		items = make(map[int64]types.Product)
		for id, p := range s.products {
			if p.Category == cat {
				items[id] = p
			}
		}
	}
	writeOK(w, http.StatusOK, paginate(r, items, func(p types.Product) string { return p.Name + " " + p.SKU }))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeOK(w, http.StatusOK, p)
}

func (s *Server) validateProduct(in types.ProductInput, self int64) string {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return "sku and name are required"
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return "price and cost must not be negative"
	}
	for id, p := range s.products {
		if id != self && strings.EqualFold(p.SKU, in.SKU) {
			return fmt.Sprintf("sku %s already exists", in.SKU)
		}
	}
	if in.SupplierID != nil {
		if _, ok := s.suppliers[*in.SupplierID]; !ok {
			return "unknown supplier"
		}
	}
	return ""
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in types.ProductInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.validateProduct(in, 0); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	now := s.now().UTC()
	p := productFrom(in)
	p.ID, p.CreatedAt, p.UpdatedAt = s.id(), now, now
	s.products[p.ID] = p
	writeOK(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in types.ProductInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	old, ok := s.products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if msg := s.validateProduct(in, id); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	p := productFrom(in)
	p.ID, p.CreatedAt, p.UpdatedAt, p.ImageURL = id, old.CreatedAt, s.now().UTC(), old.ImageURL
	s.products[id] = p
	writeOK(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	for _, it := range s.stock {
		if it.ProductID == id && !it.Quantity.IsZero() {
			writeRejected(w, "PRODUCT_IN_STOCK", "product still has stock")
			return
		}
	}
	delete(s.products, id)
	writeOK(w, http.StatusOK, struct{}{})
}

func (s *Server) setProductImage(w http.ResponseWriter, r *http.Request) {
	up, ok := s.storeUpload(w, r, "image")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.products[pathID(r)]
	if !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	p.ImageURL, p.UpdatedAt = up.URL, s.now().UTC()
	s.products[p.ID] = p
	writeOK(w, http.StatusOK, p)
}

func productFrom(in types.ProductInput) types.Product {
	return types.Product{
		SKU: in.SKU, Name: in.Name, Description: in.Description, Category: in.Category,
		Unit: in.Unit, Price: in.Price, Cost: in.Cost, SupplierID: in.SupplierID, Active: in.Active,
	}
}

// ------------------------------ customers ------------------------------

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeOK(w, http.StatusOK, paginate(r, s.customers, func(c types.Customer) string { return c.Name + " " + c.Email }))
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeOK(w, http.StatusOK, c)
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in types.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := types.Customer{ID: s.id(), Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address, TaxID: in.TaxID, CreatedAt: s.now().UTC()}
	s.customers[c.ID] = c
	writeOK(w, http.StatusCreated, c)
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var in types.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.customers[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	c := types.Customer{ID: old.ID, Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address, TaxID: in.TaxID, CreatedAt: old.CreatedAt}
	s.customers[c.ID] = c
	writeOK(w, http.StatusOK, c)
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	if _, ok := s.customers[id]; !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	for _, o := range s.orders {
		if o.CustomerID == id {
			writeRejected(w, "CUSTOMER_HAS_ORDERS", "customer has sales orders")
			return
		}
	}
	delete(s.customers, id)
	writeOK(w, http.StatusOK, struct{}{})
}

// ------------------------------ suppliers ------------------------------

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeOK(w, http.StatusOK, paginate(r, s.suppliers, func(sp types.Supplier) string { return sp.Name }))
}

func (s *Server) getSupplier(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.suppliers[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	writeOK(w, http.StatusOK, sp)
}

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in types.SupplierInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := types.Supplier{ID: s.id(), Name: in.Name, ContactName: in.ContactName, Email: in.Email, Phone: in.Phone, Address: in.Address, CreatedAt: s.now().UTC()}
	s.suppliers[sp.ID] = sp
	writeOK(w, http.StatusCreated, sp)
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var in types.SupplierInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.suppliers[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	sp := types.Supplier{ID: old.ID, Name: in.Name, ContactName: in.ContactName, Email: in.Email, Phone: in.Phone, Address: in.Address, CreatedAt: old.CreatedAt}
	s.suppliers[sp.ID] = sp
	writeOK(w, http.StatusOK, sp)
}

func (s *Server) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	if _, ok := s.suppliers[id]; !ok {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	delete(s.suppliers, id)
	writeOK(w, http.StatusOK, struct{}{})
}

// ------------------------------ sales orders ------------------------------

var transitions = map[types.OrderStatus][]types.OrderStatus{
	types.OrderDraft:     {types.OrderConfirmed, types.OrderCancelled},
	types.OrderConfirmed: {types.OrderShipped, types.OrderCancelled},
	types.OrderShipped:   {types.OrderDelivered},
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.orders
	if st := r.URL.Query().Get("status"); st != "" {
		items = make(map[int64]types.SalesOrder)
		for id, o := range s.orders {
			if string(o.Status) == st {
				items[id] = o
			}
		}
	}
	writeOK(w, http.StatusOK, paginate(r, items, func(o types.SalesOrder) string { return o.Number }))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "sales order not found")
		return
	}
	writeOK(w, http.StatusOK, o)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in types.SalesOrderInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[in.CustomerID]; !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown customer")
		return
	}
	if len(in.Lines) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "order needs at least one line")
		return
	}
	var problems []string
	for i, l := range in.Lines {
		if _, ok := s.products[l.ProductID]; !ok {
			problems = append(problems, fmt.Sprintf("line %d: unknown product %d", i+1, l.ProductID))
		}
		if !l.Quantity.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "message": problems})
		return
	}
	now := s.now().UTC()
	id := s.id()
	o := types.SalesOrder{
		ID: id, Number: fmt.Sprintf("SO-%06d", id), CustomerID: in.CustomerID, Status: types.OrderDraft,
		Lines: in.Lines, Notes: in.Notes, OrderDate: now, CreatedAt: now,
	}
	s.orders[id] = o
	writeOK(w, http.StatusCreated, o)
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in types.StatusUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "sales order not found")
		return
	}
	allowed := false
	for _, next := range transitions[o.Status] {
		if next == in.Status {
			allowed = true
		}
	}
	if !allowed {
		writeRejected(w, "INVALID_TRANSITION", fmt.Sprintf("cannot move order from %s to %s", o.Status, in.Status))
		return
	}
	o.Status = in.Status
	s.orders[o.ID] = o
	writeOK(w, http.StatusOK, o)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "sales order not found")
		return
	}
	if o.Status != types.OrderDraft {
		writeRejected(w, "ORDER_NOT_DRAFT", "only draft orders can be deleted")
		return
	}
	delete(s.orders, o.ID)
	writeOK(w, http.StatusOK, struct{}{})
}

// ------------------------------ inventory ------------------------------

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeOK(w, http.StatusOK, paginate(r, s.stock, func(it types.InventoryItem) string { return it.Location + " " + it.Lot }))
}

func (s *Server) inventoryByProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid := pathID(r)
	if _, ok := s.products[pid]; !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	out := []types.InventoryItem{}
	for _, it := range s.stock {
		if it.ProductID == pid {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeOK(w, http.StatusOK, out)
}

func (s *Server) adjustStock(w http.ResponseWriter, r *http.Request) {
	var adj types.StockAdjustment
	if !decode(w, r, &adj) {
		return
	}
	if adj.Location == "" || adj.Reason == "" {
		writeError(w, http.StatusUnprocessableEntity, "location and reason are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[adj.ProductID]; !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown product")
		return
	}
	var row types.InventoryItem
	found := false
	for _, it := range s.stock {
		if it.ProductID == adj.ProductID && it.Location == adj.Location && it.Lot == adj.Lot {
			row, found = it, true
			break
		}
	}
	if !found {
		row = types.InventoryItem{ID: s.id(), ProductID: adj.ProductID, Location: adj.Location, Lot: adj.Lot, Quantity: decimal.Zero}
	}
	next := row.Quantity.Add(adj.Delta)
	if next.IsNegative() {
		writeRejected(w, "INSUFFICIENT_STOCK", fmt.Sprintf("insufficient stock: have %s, need %s", row.Quantity, adj.Delta.Neg()))
		return
	}
	row.Quantity, row.UpdatedAt = next, s.now().UTC()
	s.stock[row.ID] = row
	writeOK(w, http.StatusOK, row)
}

// ------------------------------ uploads & options ------------------------------

func (s *Server) storeUpload(w http.ResponseWriter, r *http.Request, field string) (types.Upload, bool) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form: "+err.Error())
		return types.Upload{}, false
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field "+field)
		return types.Upload{}, false
	}
	defer f.Close()
	n, err := io.Copy(io.Discard, f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return types.Upload{}, false
	}
	id := uuid.NewString()
	up := types.Upload{ID: id, Name: hdr.Filename, URL: "/files/" + id, Size: n}
	s.mu.Lock()
	s.uploads[id] = up
	s.mu.Unlock()
	return up, true
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	up, ok := s.storeUpload(w, r, "file")
	if !ok {
		return
	}
	writeOK(w, http.StatusCreated, up)
}

func (s *Server) listOptions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []optionsrc.RawOption
	switch name {
	case "products":
		cat := r.URL.Query().Get("category")
		for _, p := range sortedByID(s.products) {
			if cat == "" || p.Category == cat {
				out = append(out, idOption(p.ID, p.Name, !p.Active))
			}
		}
	case "customers":
		for _, c := range sortedByID(s.customers) {
			out = append(out, idOption(c.ID, c.Name, false))
		}
	case "suppliers":
		for _, sp := range sortedByID(s.suppliers) {
			out = append(out, idOption(sp.ID, sp.Name, false))
		}
	default:
		opts, ok := s.options[name]
		if !ok {
			writeRejected(w, "UNKNOWN_OPTIONS", "no option list named "+name)
			return
		}
		out = opts
	}
	if out == nil {
		out = []optionsrc.RawOption{}
	}
	writeOK(w, http.StatusOK, out)
}

func idOption(id int64, label string, disabled bool) optionsrc.RawOption {
	return optionsrc.RawOption{Label: label, Value: []byte(strconv.FormatInt(id, 10)), Disabled: disabled}
}

func sortedByID[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
