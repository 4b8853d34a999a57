package session

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom-client/internal/types"
)

func testSession() Session {
	return Session{
		User:  types.User{ID: "u-1", Email: "ops@example.com", Name: "Ops"},
		Token: "tok-1",
	}
}

func TestLoginPersistsAndNotifies(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	m := NewManager(store)
	var got []Event
	m.OnLogin(func(_ context.Context, ev Event) { got = append(got, ev) })

	require.NoError(t, m.Login(context.Background(), testSession()))
	assert.True(t, m.Authenticated())
	assert.Equal(t, "tok-1", m.Token())

	flag, err := store.Get(context.Background(), KeyAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, "true", flag)
	_, err = store.Get(context.Background(), KeyUser)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, EventLogin, got[0].Kind)
	assert.Equal(t, "u-1", got[0].User.ID)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	m := NewManager(nil)
	require.Error(t, m.Login(context.Background(), Session{}))
	assert.False(t, m.Authenticated())
}

func TestInvalidateClearsStateExactlyOnce(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	m := NewManager(store)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testSession()))

	var logouts int32
	m.OnLogout(func(_ context.Context, ev Event) {
		assert.True(t, ev.Expired)
		atomic.AddInt32(&logouts, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Invalidate(ctx, "401 from /api/v1/products")
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&logouts))
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())

	flag, err := store.Get(ctx, KeyAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, "false", flag)
	_, err = store.Get(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestInvalidateIgnoresReplacedSession(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testSession()))
	stale := m.Bind(ctx)

	require.NoError(t, m.Logout(ctx))
	s := testSession()
	s.Token = "tok-2"
	require.NoError(t, m.Login(ctx, s))

	assert.False(t, m.Invalidate(stale, "late 401"))
	assert.True(t, m.Authenticated())
	assert.True(t, m.Invalidate(m.Bind(ctx), "401"))
	assert.False(t, m.Authenticated())
}

func TestInvalidateIgnoresRequestSentWhileLoggedOut(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)
	ctx := context.Background()
	beforeLogin := m.Bind(ctx)

	require.NoError(t, m.Login(ctx, testSession()))
	assert.False(t, m.Invalidate(beforeLogin, "401 for an anonymous request"))
	assert.True(t, m.Authenticated())

	// an untagged context still ends the active session
	assert.True(t, m.Invalidate(ctx, "401"))
	assert.False(t, m.Authenticated())
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager(nil)
	var n int
	unsub := m.OnLogout(func(context.Context, Event) { n++ })
	unsub()
	unsub()
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testSession()))
	require.NoError(t, m.Logout(ctx))
	assert.Zero(t, n)
}

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, NewManager(store).Login(ctx, testSession()))

	m := NewManager(store)
	ok, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	cur, active := m.Current()
	assert.True(t, active)
	assert.Equal(t, "tok-1", cur.Token)
}

func TestRestoreExpiredOrCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	store := NewMemoryStore()
	s := testSession()
	s.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, NewManager(store).Login(ctx, s))
	m := NewManager(store, WithClock(func() time.Time { return now }))
	ok, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	flag, _ := store.Get(ctx, KeyAuthenticated)
	assert.Equal(t, "false", flag)

	corrupt := NewMemoryStore()
	require.NoError(t, corrupt.Set(ctx, KeyAuthenticated, "true"))
	require.NoError(t, corrupt.Set(ctx, KeyUser, "{not json"))
	ok, err = NewManager(corrupt).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewManager(NewMemoryStore()).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	st, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, st.Set(ctx, KeyAuthenticated, "true"))
	require.NoError(t, st.Set(ctx, KeyAuthenticated, "false"))
	v, err := st.Get(ctx, KeyAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, st.Delete(ctx, KeyAuthenticated))
	_, err = st.Get(ctx, KeyAuthenticated)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, NewManager(st).Login(ctx, testSession()))
	require.NoError(t, st.Close())

	st2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = st2.Close() }()
	ok, err := NewManager(st2).Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDefaultPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, dbFilename), p)

	st, err := OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.FileExists(t, p)
}

func TestDefaultPath_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv(envHome, "")
	t.Setenv("HOME", home)

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, homeDirName, dbFilename), p)
	assert.NoDirExists(t, filepath.Join(home, homeDirName))
}
