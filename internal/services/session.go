package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/serenify-journal/internal/identity"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// SessionCookieName holds the opaque session id on the client.
	SessionCookieName = "journal_session"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session is the server-side state behind a session cookie. Verified is the
// one-shot step-up flag for the hidden journal.
type Session struct {
	ID       string  `json:"-"`
	UserID   string  `json:"user_id,omitempty"`
	Email    string  `json:"email,omitempty"`
	IDToken  string  `json:"id_token,omitempty"`
	Verified bool    `json:"is_verified"`
	Flashes  []Flash `json:"flashes,omitempty"`

	isNew bool
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != "" && s.IDToken != ""
}

// Login stores the account on the session. The verified flag starts cleared.
func (s *Session) Login(acct identity.Account) {
	s.UserID = acct.UserID
	s.Email = acct.Email
	s.IDToken = acct.IDToken
	s.Verified = false
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns pending flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps each session as JSON under session:<id>.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, SessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, SessionKeyPrefix+s.ID, data, ttl).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, SessionKeyPrefix+id).Err()
}

// MemorySessionStore is the Redis-less store for development and tests.
type MemorySessionStore struct {
	mu    sync.Mutex
	items map[string]memorySession
	now   func() time.Time
}

type memorySession struct {
	data    []byte
	expires time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{items: make(map[string]memorySession), now: time.Now}
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	item, ok := m.items[id]
	if ok && !m.now().Before(item.expires) {
		delete(m.items, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(item.data, &s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[s.ID] = memorySession{data: data, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// SessionManager ties the store to the session cookie.
type SessionManager struct {
	store  SessionStore
	ttl    time.Duration
	secure bool
}

func NewSessionManager(store SessionStore, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionManager{store: store, ttl: ttl, secure: secure}
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Get returns the request's session, or a fresh unsaved one when the cookie
// is missing, unknown or expired.
func (m *SessionManager) Get(r *http.Request) (*Session, error) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		s, err := m.store.Load(r.Context(), c.Value)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, isNew: true}, nil
}

// Save persists the session and (re)sets the cookie, extending its lifetime.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	if err := m.store.Save(r.Context(), s, m.ttl); err != nil {
		return err
	}
	s.isNew = false
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves the session to a new id, dropping the old one. Called on login.
func (m *SessionManager) Renew(ctx context.Context, s *Session) error {
	id, err := newSessionID()
	if err != nil {
		return err
	}
	if !s.isNew {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	s.ID = id
	s.isNew = true
	return nil
}

// Reset logs the session out: every field is cleared and a new id is issued
// before the old record is deleted, so a failed delete still leaves s
// anonymous. The returned error only reports that cleanup.
func (m *SessionManager) Reset(ctx context.Context, s *Session) error {
	oldID, saved := s.ID, !s.isNew
	*s = Session{isNew: true}

	id, idErr := newSessionID()
	if idErr == nil {
		s.ID = id
	}
	var delErr error
	if saved && oldID != "" {
		delErr = m.store.Delete(ctx, oldID)
	}
	return errors.Join(idErr, delErr)
}
