package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/serenify-journal/internal/identity"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

func newAuth() (*Auth, *services.SessionManager) {
	mgr := services.NewSessionManager(services.NewMemorySessionStore(), time.Hour, false)
	return NewAuth(mgr, logger.NewNop()), mgr
}

func serveWithSession(mgr *services.SessionManager, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	LoadSession(mgr, logger.NewNop())(h).ServeHTTP(rec, r)
	return rec
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	auth, mgr := newAuth()
	called := false
	h := auth.RequireLogin(func(w http.ResponseWriter, r *http.Request, rc RequestContext) { called = true })

	rec := serveWithSession(mgr, h, httptest.NewRequest(http.MethodGet, "/entries", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The flash survives to the next request.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	s, err := mgr.Get(next)
	require.NoError(t, err)
	assert.Equal(t, []services.Flash{{Category: services.FlashError, Message: "Please log in first."}}, s.Flashes)
}

func TestRequireLogin_PassesRequestContext(t *testing.T) {
	auth, mgr := newAuth()

	s := &services.Session{ID: "sid"}
	s.Login(identity.Account{UserID: "u1", Email: "a@b.c", IDToken: "tok"})
	s.Verified = true
	seed := httptest.NewRecorder()
	require.NoError(t, mgr.Save(seed, httptest.NewRequest(http.MethodGet, "/", nil), s))

	var got RequestContext
	h := auth.RequireLogin(func(w http.ResponseWriter, r *http.Request, rc RequestContext) { got = rc })

	r := httptest.NewRequest(http.MethodGet, "/entries", nil)
	r.AddCookie(seed.Result().Cookies()[0])
	serveWithSession(mgr, h, r)

	assert.Equal(t, RequestContext{SessionID: "sid", UserID: "u1", Email: "a@b.c", Token: "tok", Verified: true}, got)
}

func TestRequireAPILogin(t *testing.T) {
	auth, mgr := newAuth()
	h := auth.RequireAPILogin(func(w http.ResponseWriter, r *http.Request, rc RequestContext) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := serveWithSession(mgr, h, httptest.NewRequest(http.MethodGet, "/api/entries", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Authentication required", body["error"])
}

func TestLimiterRegistry(t *testing.T) {
	reg := NewLimiterRegistry(rate.Every(time.Hour), 2)
	assert.True(t, reg.Allow("1.2.3.4"))
	assert.True(t, reg.Allow("1.2.3.4"))
	assert.False(t, reg.Allow("1.2.3.4"))
	assert.True(t, reg.Allow("5.6.7.8"))

	now := time.Now()
	reg.now = func() time.Time { return now.Add(time.Hour) }
	reg.Prune(limiterTTL)
	assert.Zero(t, reg.Len())
}

func TestLoginRateLimit_OnlyCredentialPosts(t *testing.T) {
	reg := NewLimiterRegistry(rate.Every(time.Hour), 1)
	h := LoginRateLimit(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(method, path string) int {
		r := httptest.NewRequest(method, path, nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/verify_password"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/log_mood"))
}

func TestRateLimit_APIAnswersJSON(t *testing.T) {
	reg := NewLimiterRegistry(rate.Every(time.Hour), 1)
	h := RateLimit(reg, "slow down")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/api/quote", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "application/json", last.Header().Get("Content-Type"))
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("journal.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "http://journal.example.com:443/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "http://evil.example.com/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRecover(t *testing.T) {
	h := Recover(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/api/quote", nil)
	r.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/api/quote", nil)
	r.Header.Set("Origin", "https://other.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
