// Package session owns the authenticated state of the client: the bearer
// token, the signed-in user and the observers interested in login/logout.
//
// State is persisted under two keys so a cold start can restore it:
// KeyAuthenticated ("true"/"false") and KeyUser (the JSON-encoded Session).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/stockroom-client/internal/types"
)

// Persisted keys.
const (
	KeyAuthenticated = "isAuthenticated"
	KeyUser          = "user"
)

// Session is the signed-in user plus the credentials for the backend.
type Session struct {
	User      types.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt,omitempty"`
}

// Expired reports whether the session carries an expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// EventKind distinguishes login from logout notifications.
type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

// Event is delivered to observers.
type Event struct {
	Kind    EventKind
	User    types.User
	Reason  string
	At      time.Time
	Expired bool // logout caused by the backend rejecting the token
}

// Handler observes session events.
type Handler func(ctx context.Context, ev Event)

// Manager is the single owner of session state for one client.
type Manager struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time

	mu            sync.RWMutex
	authenticated bool
	current       Session
	epoch         uint64

	hmu      sync.Mutex
	nextID   int
	handlers map[int]handlerEntry
}

type handlerEntry struct {
	kind EventKind
	fn   Handler
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the Manager's logger.
func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.log = l } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager returns a logged-out Manager persisting to store.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	m := &Manager{
		store:    store,
		log:      zerolog.Nop(),
		now:      time.Now,
		handlers: make(map[int]handlerEntry),
		epoch:    1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnLogin registers fn for login events and returns its unsubscribe func.
func (m *Manager) OnLogin(fn Handler) func() { return m.subscribe(EventLogin, fn) }

// OnLogout registers fn for logout events and returns its unsubscribe func.
func (m *Manager) OnLogout(fn Handler) func() { return m.subscribe(EventLogout, fn) }

func (m *Manager) subscribe(kind EventKind, fn Handler) func() {
	m.hmu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handlerEntry{kind: kind, fn: fn}
	m.hmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.hmu.Lock()
			delete(m.handlers, id)
			m.hmu.Unlock()
		})
	}
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Current returns the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.authenticated
}

// Token returns the bearer token of the active session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.authenticated {
		return ""
	}
	return m.current.Token
}

// Restore loads persisted state. It reports whether a usable session was
// found; a corrupt or expired record is cleared.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	flag, err := m.store.Get(ctx, KeyAuthenticated)
	if errors.Is(err, ErrNoKey) || (err == nil && flag != "true") {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	raw, err := m.store.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, ErrNoKey) {
		return false, fmt.Errorf("restore session: %w", err)
	}
	var s Session
	if err != nil || json.Unmarshal([]byte(raw), &s) != nil || s.Token == "" {
		m.log.Warn().Msg("discarding unreadable persisted session")
		return false, m.clearStore(ctx)
	}
	if s.Expired(m.now()) {
		m.log.Info().Str("user_id", s.User.ID).Msg("persisted session expired")
		return false, m.clearStore(ctx)
	}

	m.mu.Lock()
	m.authenticated = true
	m.current = s
	m.epoch++
	m.mu.Unlock()
	m.log.Info().Str("user_id", s.User.ID).Msg("session restored")
	return true, nil
}

// Login persists s and makes it active.
func (m *Manager) Login(ctx context.Context, s Session) error {
	if s.Token == "" {
		return errors.New("login: empty token")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("login: persist user: %w", err)
	}
	if err := m.store.Set(ctx, KeyAuthenticated, "true"); err != nil {
		return fmt.Errorf("login: persist flag: %w", err)
	}

	m.mu.Lock()
	m.authenticated = true
	m.current = s
	m.epoch++
	m.mu.Unlock()

	transitionsTotal.WithLabelValues(string(EventLogin)).Inc()
	m.log.Info().Str("user_id", s.User.ID).Msg("logged in")
	m.emit(ctx, Event{Kind: EventLogin, User: s.User, At: m.now()})
	return nil
}

// Logout ends the active session at the user's request.
func (m *Manager) Logout(ctx context.Context) error {
	_, err := m.end(ctx, 0, false, "logout", false)
	return err
}

// Invalidate ends the session after the backend rejected its token.
//
// Only the first invalidation of a given session has effect: concurrent
// 401s collapse into one logout, and a 401 belonging to a session that has
// already been replaced (see Bind) is ignored. It reports whether the
// session was ended.
func (m *Manager) Invalidate(ctx context.Context, reason string) bool {
	epoch, bound := epochFrom(ctx)
	ended, err := m.end(ctx, epoch, bound, reason, true)
	if err != nil {
		m.log.Error().Err(err).Msg("clear persisted session")
	}
	return ended
}

// end closes the active session. A bound epoch must match the current one;
// an unbound call ends whatever session is active.
func (m *Manager) end(ctx context.Context, epoch uint64, bound bool, reason string, expired bool) (bool, error) {
	m.mu.Lock()
	if !m.authenticated || (bound && epoch != m.epoch) {
		m.mu.Unlock()
		if !expired {
			// explicit logout still scrubs whatever is on disk
			return false, m.clearStore(ctx)
		}
		return false, nil
	}
	user := m.current.User
	m.authenticated = false
	m.current = Session{}
	m.epoch++
	m.mu.Unlock()

	err := m.clearStore(ctx)
	label := "logout"
	if expired {
		label = "invalidated"
		m.log.Warn().Str("user_id", user.ID).Str("reason", reason).Msg("session invalidated")
	} else {
		m.log.Info().Str("user_id", user.ID).Msg("logged out")
	}
	transitionsTotal.WithLabelValues(label).Inc()
	m.emit(ctx, Event{Kind: EventLogout, User: user, Reason: reason, At: m.now(), Expired: expired})
	return true, err
}

func (m *Manager) clearStore(ctx context.Context) error {
	errFlag := m.store.Set(ctx, KeyAuthenticated, "false")
	errUser := m.store.Delete(ctx, KeyUser)
	return errors.Join(errFlag, errUser)
}

func (m *Manager) emit(ctx context.Context, ev Event) {
	m.hmu.Lock()
	fns := make([]Handler, 0, len(m.handlers))
	for id := 0; id < m.nextID; id++ {
		if h, ok := m.handlers[id]; ok && h.kind == ev.Kind {
			fns = append(fns, h.fn)
		}
	}
	m.hmu.Unlock()
	for _, fn := range fns {
		fn(ctx, ev)
	}
}

type epochKey struct{}

// Bind tags ctx with the current session so a later Invalidate can tell
// whether a 401 belongs to this session or to one already replaced.
func (m *Manager) Bind(ctx context.Context) context.Context {
	m.mu.RLock()
	e := m.epoch
	m.mu.RUnlock()
	return context.WithValue(ctx, epochKey{}, e)
}

func epochFrom(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	e, ok := ctx.Value(epochKey{}).(uint64)
	return e, ok
}
