package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-journal/internal/identity"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionCookieName)
	return nil
}

func TestSessionManager_RoundTrip(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore(), time.Hour, true)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := mgr.Get(r)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	s.Login(identity.Account{UserID: "u1", Email: "a@b.c", IDToken: "tok"})
	s.AddFlash(FlashSuccess, "Logged in successfully!")

	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, r, s))
	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)

	r2 := httptest.NewRequest(http.MethodGet, "/home", nil)
	r2.AddCookie(c)
	loaded, err := mgr.Get(r2)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "u1", loaded.UserID)
	assert.True(t, loaded.IsAuthenticated())
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "Logged in successfully!"}}, loaded.PopFlashes())
	assert.Empty(t, loaded.Flashes)
}

func TestSessionManager_UnknownCookieGetsFreshSession(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore(), time.Hour, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})

	s, err := mgr.Get(r)
	require.NoError(t, err)
	assert.NotEqual(t, "forged", s.ID)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionManager_RenewAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	mgr := NewSessionManager(store, time.Hour, false)

	s := &Session{ID: "old"}
	require.NoError(t, store.Save(ctx, s, time.Hour))

	require.NoError(t, mgr.Renew(ctx, s))
	assert.NotEqual(t, "old", s.ID)
	_, err := store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s.Login(identity.Account{UserID: "u1", Email: "a@b.c", IDToken: "tok"})
	s.Verified = true
	id := s.ID
	require.NoError(t, mgr.Reset(ctx, s))
	assert.NotEqual(t, id, s.ID)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.Verified)
	assert.Empty(t, s.Email)
}

// failingDeleteStore loses its backend whenever a session is deleted.
type failingDeleteStore struct {
	*MemorySessionStore
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("redis down")
}

func TestSessionManager_ResetClearsSessionWhenDeleteFails(t *testing.T) {
	mgr := NewSessionManager(failingDeleteStore{NewMemorySessionStore()}, time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := mgr.Get(r)
	require.NoError(t, err)
	s.Login(identity.Account{UserID: "u1", Email: "a@b.c", IDToken: "tok"})
	s.Verified = true
	require.NoError(t, mgr.Save(httptest.NewRecorder(), r, s))
	oldID := s.ID

	err = mgr.Reset(context.Background(), s)
	assert.EqualError(t, err, "redis down")
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.UserID)
	assert.Empty(t, s.IDToken)
	assert.False(t, s.Verified)
	assert.NotEmpty(t, s.ID)
	assert.NotEqual(t, oldID, s.ID)

	// Saving afterwards, as logout does, hands the browser an anonymous session.
	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, r, s))
	r2 := httptest.NewRequest(http.MethodGet, "/home", nil)
	r2.AddCookie(sessionCookie(t, rec))
	loaded, err := mgr.Get(r2)
	require.NoError(t, err)
	assert.False(t, loaded.IsAuthenticated())
}

func TestLogin_ClearsVerified(t *testing.T) {
	s := &Session{Verified: true}
	s.Login(identity.Account{UserID: "u1", IDToken: "tok"})
	assert.False(t, s.Verified)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &Session{ID: "s1", UserID: "u1", Verified: true}, time.Minute))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Verified)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRandomPrompt(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, GratitudePrompts, RandomPrompt())
	}
	assert.Len(t, GratitudePrompts, 9)
}
