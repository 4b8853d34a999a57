// Package fakeapi is an in-memory backend speaking the same envelope as
// the real one. Tests run the client against it; `stockctl mock-server`
// serves it for local front-end work.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/types"
)

type account struct {
	user     types.User
	password string
}

type token struct {
	userID    string
	expiresAt time.Time
}

type fault struct {
	status  int
	message string
}

// Server holds all backend state behind one mutex.
type Server struct {
	log      zerolog.Logger
	now      func() time.Time
	tokenTTL time.Duration
	router   *mux.Router

	mu        sync.Mutex
	accounts  map[string]account // by email
	tokens    map[string]token
	products  map[int64]types.Product
	customers map[int64]types.Customer
	suppliers map[int64]types.Supplier
	orders    map[int64]types.SalesOrder
	stock     map[int64]types.InventoryItem
	uploads   map[string]types.Upload
	options   map[string][]optionsrc.RawOption
	faults    map[string]fault
	hits      map[string]int
	nextID    int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option { return func(s *Server) { s.tokenTTL = d } }

// New returns an empty backend with the built-in option lists.
func New(opts ...Option) *Server {
	s := &Server{
		log:       zerolog.Nop(),
		now:       time.Now,
		tokenTTL:  12 * time.Hour,
		accounts:  make(map[string]account),
		tokens:    make(map[string]token),
		products:  make(map[int64]types.Product),
		customers: make(map[int64]types.Customer),
		suppliers: make(map[int64]types.Supplier),
		orders:    make(map[int64]types.SalesOrder),
		stock:     make(map[int64]types.InventoryItem),
		uploads:   make(map[string]types.Upload),
		options:   defaultOptions(),
		faults:    make(map[string]fault),
		hits:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// AddUser registers an account that can log in.
func (s *Server) AddUser(u types.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.accounts[strings.ToLower(u.Email)] = account{user: u, password: password}
}

// IssueToken mints a token for the account with email, bypassing login.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return ""
	}
	return s.issueLocked(acc.user.ID)
}

// ExpireTokens invalidates every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]token)
}

// SetOptions installs a named option list served at /api/v1/options/{name}.
func (s *Server) SetOptions(name string, opts []optionsrc.RawOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[name] = opts
}

// Fail makes every request to path answer with status and message until
// cleared with Fail(path, 0, "").
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.faults, path)
		return
	}
	s.faults[path] = fault{status: status, message: message}
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) issueLocked(userID string) string {
	t := uuid.NewString()
	s.tokens[t] = token{userID: userID, expiresAt: s.now().Add(s.tokenTTL)}
	return t
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func defaultOptions() map[string][]optionsrc.RawOption {
	str := func(label, value string) optionsrc.RawOption {
		return optionsrc.RawOption{Label: label, Value: []byte(`"` + value + `"`)}
	}
	return map[string][]optionsrc.RawOption{
		"units": {str("Each", "ea"), str("Kilogram", "kg"), str("Litre", "l"), str("Box", "box")},
		"order-statuses": {
			str("Draft", string(types.OrderDraft)),
			str("Confirmed", string(types.OrderConfirmed)),
			str("Shipped", string(types.OrderShipped)),
			str("Delivered", string(types.OrderDelivered)),
			str("Cancelled", string(types.OrderCancelled)),
		},
	}
}
