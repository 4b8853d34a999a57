package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type errRT struct{}

func (errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, errors.New("boom") }

func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Caller) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, NewCaller(srv.Client(), srv.URL)
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/items/1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(item{ID: 1, Name: "bolt"})
	})
	res := Do[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/api/v1/items/1"})
	require.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "bolt", res.Data.Name)
	assert.Nil(t, res.Err)
}

func TestDo_PostsJSONBodyAndQuery(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		var in item
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = 7
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})
	res := Do[item](context.Background(), c, Request{
		Method: http.MethodPost,
		Path:   "/api/v1/items",
		Query:  map[string]string{"limit": "5"},
		Body:   item{Name: "nut"},
	})
	require.True(t, res.Success)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, 7, res.Data.ID)
}

func TestDo_Non2xxCarriesServerMessage(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"message":"sku already exists","errorCode":"DUPLICATE_SKU"}`)
	})
	res := Do[item](context.Background(), c, Request{Method: http.MethodPost, Path: "/x", Body: item{}})
	require.False(t, res.Success)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.Equal(t, []string{"sku already exists"}, res.Err.Message)
	assert.Equal(t, "DUPLICATE_SKU", res.Err.ErrorCode)
	assert.Zero(t, res.Data)
	assert.True(t, clerrors.IsIrrecoverable(res.Err))
}

func TestDo_MessageArrayAndFallbacks(t *testing.T) {
	t.Parallel()
	cases := []struct {
		body string
		want []string
	}{
		{`{"message":["a","b"]}`, []string{"a", "b"}},
		{`{"error":"nope"}`, []string{"nope"}},
		{`{"errors":["x"]}`, []string{"x"}},
		{`{}`, []string{http.StatusText(http.StatusBadRequest)}},
		{`plain text`, []string{"plain text"}},
		{``, []string{http.StatusText(http.StatusBadRequest)}},
	}
	for _, tc := range cases {
		msgs, code := parseServerError([]byte(tc.body), http.StatusBadRequest)
		assert.Equal(t, tc.want, msgs, tc.body)
		assert.Equal(t, CodeHTTP, code)
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	t.Parallel()
	c := NewCaller(&http.Client{Transport: errRT{}}, "http://example.invalid")
	res := Do[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/x"})
	require.False(t, res.Success)
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, CodeNetwork, res.Err.ErrorCode)
	assert.NotEmpty(t, res.Err.Message)
	assert.False(t, clerrors.IsIrrecoverable(res.Err))
}

func TestDo_CancelledContext(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Do[item](ctx, c, Request{Method: http.MethodGet, Path: "/x"})
	require.False(t, res.Success)
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, CodeCancelled, res.Err.ErrorCode)
}

func TestDo_PreDispatchFailure(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be dispatched")
	})
	res := Do[item](context.Background(), c, Request{Method: http.MethodPost, Path: "/x", Body: make(chan int)})
	require.False(t, res.Success)
	assert.Equal(t, StatusClientError, res.Status)
	assert.Equal(t, CodeClient, res.Err.ErrorCode)
	require.Len(t, res.Err.Message, 1)
	assert.Contains(t, res.Err.Message[0], "unsupported type")

	res = Do[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/%zz"})
	assert.Equal(t, StatusClientError, res.Status)
	assert.Equal(t, CodeClient, res.Err.ErrorCode)
}

func TestDo_InvalidJSONOn2xx(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{bad json")
	})
	res := Do[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/x"})
	require.False(t, res.Success)
	assert.Equal(t, CodeInvalidResponse, res.Err.ErrorCode)
	assert.Zero(t, res.Data)
}

func TestDo_UnauthorizedInvokesHook(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"token expired"}`)
	}))
	defer srv.Close()
	var hits int32
	c := NewCaller(srv.Client(), srv.URL, WithUnauthorizedHook(func(context.Context) { atomic.AddInt32(&hits, 1) }))
	res := Do[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/x"})
	require.True(t, res.Unauthorized())
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, []string{"token expired"}, res.Err.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestDo_Multipart(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "product", r.FormValue("kind"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "photo.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(b))
		_ = json.NewEncoder(w).Encode(item{ID: 1})
	})
	res := Do[item](context.Background(), c, Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Files:  []File{{Param: "file", Name: "photo.png", Reader: strings.NewReader("PNGDATA")}},
		Form:   map[string]string{"kind": "product"},
	})
	require.True(t, res.Success, "%+v", res.Err)
	assert.Equal(t, 1, res.Data.ID)
}

func TestCall_UnwrapsApplicationEnvelope(t *testing.T) {
	t.Parallel()
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, `{"success":true,"message":"","data":{"id":3,"name":"washer"}}`)
		default:
			_, _ = io.WriteString(w, `{"success":false,"message":"insufficient stock"}`)
		}
	})
	res := Call[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/ok"})
	require.True(t, res.Success)
	assert.Equal(t, "washer", res.Data.Name)

	res = Call[item](context.Background(), c, Request{Method: http.MethodGet, Path: "/app-fail"})
	require.False(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, CodeApplication, res.Err.ErrorCode)
	assert.Equal(t, []string{"insufficient stock"}, res.Err.Message)
	assert.Zero(t, res.Data)
}

func TestResult_Unpack(t *testing.T) {
	v, err := ok(200, 5).Unpack()
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = fail[int](404, CodeHTTP, nil, "missing").Unpack()
	require.Error(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, "missing", err.Error())
}

func TestFail_AlwaysHasMessage(t *testing.T) {
	r := fail[item](0, CodeNetwork, nil, "  ", "")
	assert.Equal(t, []string{"request failed"}, r.Err.Message)
}
