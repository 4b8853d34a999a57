package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom-client/internal/types"
)

type reply struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"errorCode"`
	Data      json.RawMessage `json:"data"`
}

func setup(t *testing.T, opts ...Option) (*Server, *httptest.Server, string) {
	t.Helper()
	s := New(opts...)
	s.AddUser(types.User{ID: "u1", Email: "ops@example.com", Name: "Ops"}, "secret")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, s.IssueToken("ops@example.com")
}

func do(t *testing.T, ts *httptest.Server, method, path, tok string, body any) (int, reply) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestLogin(t *testing.T) {
	_, ts, _ := setup(t)

	status, out := do(t, ts, http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "OPS@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, status)
	require.True(t, out.Success)
	var lr types.LoginResponse
	require.NoError(t, json.Unmarshal(out.Data, &lr))
	assert.NotEmpty(t, lr.Token)
	assert.Equal(t, "u1", lr.User.ID)

	status, out = do(t, ts, http.MethodPost, "/api/v1/auth/login", "", types.LoginRequest{Email: "ops@example.com", Password: "nope"})
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, out.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", out.ErrorCode)

	status, out = do(t, ts, http.MethodGet, "/api/v1/auth/me", lr.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(out.Data), "ops@example.com")
}

func TestRequireToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s, ts, tok := setup(t, WithClock(clock), WithTokenTTL(time.Minute))

	status, out := do(t, ts, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", out.Message)

	status, _ = do(t, ts, http.MethodGet, "/api/v1/products", tok, nil)
	assert.Equal(t, http.StatusOK, status)

	now = now.Add(2 * time.Minute)
	status, _ = do(t, ts, http.MethodGet, "/api/v1/products", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	tok = s.IssueToken("ops@example.com")
	s.ExpireTokens()
	status, _ = do(t, ts, http.MethodGet, "/api/v1/products", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProductCRUDAndPaging(t *testing.T) {
	_, ts, tok := setup(t)

	for _, name := range []string{"Bolt", "Nut", "Washer"} {
		status, out := do(t, ts, http.MethodPost, "/api/v1/products", tok, map[string]any{
			"sku": "SKU-" + name, "name": name, "price": "1.50", "cost": "0.75", "active": true,
		})
		require.Equal(t, http.StatusCreated, status, out.Message)
	}

	status, out := do(t, ts, http.MethodPost, "/api/v1/products", tok, map[string]any{"sku": "sku-bolt", "name": "Dup"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out.Message, "already exists")

	status, out = do(t, ts, http.MethodGet, "/api/v1/products?limit=2&page=2", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var page types.Page[types.Product]
	require.NoError(t, json.Unmarshal(out.Data, &page))
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Washer", page.Items[0].Name)

	_, out = do(t, ts, http.MethodGet, "/api/v1/products?search=nu", tok, nil)
	require.NoError(t, json.Unmarshal(out.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Nut", page.Items[0].Name)
	assert.Equal(t, "1.5", page.Items[0].Price.String())

	status, _ = do(t, ts, http.MethodDelete, "/api/v1/products/2", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, ts, http.MethodGet, "/api/v1/products/2", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderLifecycle(t *testing.T) {
	_, ts, tok := setup(t)

	_, out := do(t, ts, http.MethodPost, "/api/v1/customers", tok, types.CustomerInput{Name: "Acme"})
	var c types.Customer
	require.NoError(t, json.Unmarshal(out.Data, &c))
	_, out = do(t, ts, http.MethodPost, "/api/v1/products", tok, map[string]any{"sku": "A", "name": "A", "price": "2", "cost": "1"})
	var p types.Product
	require.NoError(t, json.Unmarshal(out.Data, &p))

	status, out := do(t, ts, http.MethodPost, "/api/v1/sales-orders", tok, map[string]any{
		"customerId": c.ID,
		"lines":      []map[string]any{{"productId": p.ID, "quantity": "3", "unitPrice": "2", "discount": "0"}},
	})
	require.Equal(t, http.StatusCreated, status, out.Message)
	var o types.SalesOrder
	require.NoError(t, json.Unmarshal(out.Data, &o))
	assert.Equal(t, types.OrderDraft, o.Status)
	assert.Equal(t, "6", o.Total().String())

	path := "/api/v1/sales-orders/" + jsonID(o.ID) + "/status"
	_, out = do(t, ts, http.MethodPatch, path, tok, types.StatusUpdate{Status: types.OrderDelivered})
	assert.False(t, out.Success)
	assert.Equal(t, "INVALID_TRANSITION", out.ErrorCode)

	_, out = do(t, ts, http.MethodPatch, path, tok, types.StatusUpdate{Status: types.OrderConfirmed})
	assert.True(t, out.Success)

	_, out = do(t, ts, http.MethodDelete, "/api/v1/sales-orders/"+jsonID(o.ID), tok, nil)
	assert.Equal(t, "ORDER_NOT_DRAFT", out.ErrorCode)

	_, out = do(t, ts, http.MethodDelete, "/api/v1/customers/"+jsonID(c.ID), tok, nil)
	assert.Equal(t, "CUSTOMER_HAS_ORDERS", out.ErrorCode)
}

func TestStockAdjustments(t *testing.T) {
	_, ts, tok := setup(t)
	_, out := do(t, ts, http.MethodPost, "/api/v1/products", tok, map[string]any{"sku": "A", "name": "A", "price": "2", "cost": "1"})
	var p types.Product
	require.NoError(t, json.Unmarshal(out.Data, &p))

	adj := map[string]any{"productId": p.ID, "location": "WH1", "delta": "5", "reason": "receipt"}
	_, out = do(t, ts, http.MethodPost, "/api/v1/inventory/adjustments", tok, adj)
	require.True(t, out.Success, out.Message)

	adj["delta"] = "-7"
	_, out = do(t, ts, http.MethodPost, "/api/v1/inventory/adjustments", tok, adj)
	assert.False(t, out.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", out.ErrorCode)

	_, out = do(t, ts, http.MethodGet, "/api/v1/inventory/products/"+jsonID(p.ID), tok, nil)
	var items []types.InventoryItem
	require.NoError(t, json.Unmarshal(out.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "5", items[0].Quantity.String())
}

func TestOptionsAndFaults(t *testing.T) {
	s, ts, tok := setup(t)

	_, out := do(t, ts, http.MethodGet, "/api/v1/options/units", tok, nil)
	require.True(t, out.Success)
	assert.Contains(t, string(out.Data), `"Kilogram"`)

	_, out = do(t, ts, http.MethodGet, "/api/v1/options/customers", tok, nil)
	assert.JSONEq(t, `[]`, string(out.Data))

	_, out = do(t, ts, http.MethodGet, "/api/v1/options/nope", tok, nil)
	assert.False(t, out.Success)

	s.Fail("/api/v1/options/units", http.StatusServiceUnavailable, "down")
	status, out := do(t, ts, http.MethodGet, "/api/v1/options/units", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "down", out.Message)

	s.Fail("/api/v1/options/units", http.StatusOK, "maintenance")
	status, out = do(t, ts, http.MethodGet, "/api/v1/options/units", tok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, out.Success)

	s.Fail("/api/v1/options/units", 0, "")
	_, out = do(t, ts, http.MethodGet, "/api/v1/options/units", tok, nil)
	assert.True(t, out.Success)
	assert.Equal(t, 4, s.Hits("/api/v1/options/units"))
}

func TestUpload(t *testing.T) {
	_, ts, tok := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "invoice.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Data types.Upload `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "invoice.pdf", out.Data.Name)
	assert.EqualValues(t, 8, out.Data.Size)
	assert.NotEmpty(t, out.Data.ID)
}

func TestUnknownRoute(t *testing.T) {
	_, ts, tok := setup(t)
	status, out := do(t, ts, http.MethodGet, "/api/v1/nowhere", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", out.Message)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
