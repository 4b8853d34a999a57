package fakeapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

type ctxKey struct{}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.injectFaults)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	authed := v1.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)

	authed.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	authed.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)
	authed.HandleFunc("/products/{id:[0-9]+}", s.getProduct).Methods(http.MethodGet)
	authed.HandleFunc("/products/{id:[0-9]+}", s.updateProduct).Methods(http.MethodPut)
	authed.HandleFunc("/products/{id:[0-9]+}", s.deleteProduct).Methods(http.MethodDelete)
	authed.HandleFunc("/products/{id:[0-9]+}/image", s.setProductImage).Methods(http.MethodPost)

	authed.HandleFunc("/customers", s.listCustomers).Methods(http.MethodGet)
	authed.HandleFunc("/customers", s.createCustomer).Methods(http.MethodPost)
	authed.HandleFunc("/customers/{id:[0-9]+}", s.getCustomer).Methods(http.MethodGet)
	authed.HandleFunc("/customers/{id:[0-9]+}", s.updateCustomer).Methods(http.MethodPut)
	authed.HandleFunc("/customers/{id:[0-9]+}", s.deleteCustomer).Methods(http.MethodDelete)

	authed.HandleFunc("/suppliers", s.listSuppliers).Methods(http.MethodGet)
	authed.HandleFunc("/suppliers", s.createSupplier).Methods(http.MethodPost)
	authed.HandleFunc("/suppliers/{id:[0-9]+}", s.getSupplier).Methods(http.MethodGet)
	authed.HandleFunc("/suppliers/{id:[0-9]+}", s.updateSupplier).Methods(http.MethodPut)
	authed.HandleFunc("/suppliers/{id:[0-9]+}", s.deleteSupplier).Methods(http.MethodDelete)

	authed.HandleFunc("/sales-orders", s.listOrders).Methods(http.MethodGet)
	authed.HandleFunc("/sales-orders", s.createOrder).Methods(http.MethodPost)
	authed.HandleFunc("/sales-orders/{id:[0-9]+}", s.getOrder).Methods(http.MethodGet)
	authed.HandleFunc("/sales-orders/{id:[0-9]+}", s.deleteOrder).Methods(http.MethodDelete)
	authed.HandleFunc("/sales-orders/{id:[0-9]+}/status", s.updateOrderStatus).Methods(http.MethodPatch)

	authed.HandleFunc("/inventory", s.listInventory).Methods(http.MethodGet)
	authed.HandleFunc("/inventory/products/{id:[0-9]+}", s.inventoryByProduct).Methods(http.MethodGet)
	authed.HandleFunc("/inventory/adjustments", s.adjustStock).Methods(http.MethodPost)

	authed.HandleFunc("/uploads", s.upload).Methods(http.MethodPost)
	authed.HandleFunc("/options/{name}", s.listOptions).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("took", time.Since(start)).
			Msg("fakeapi request")
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.faults[r.URL.Path]
		s.mu.Unlock()
		if ok {
			if f.status >= 200 && f.status < 300 {
				writeRejected(w, "INJECTED", f.message)
				return
			}
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		t, ok := s.tokens[raw]
		if ok && !s.now().Before(t.expiresAt) {
			delete(s.tokens, raw)
			ok = false
		}
		s.mu.Unlock()
		if raw == "" || !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, t.userID)))
	})
}
