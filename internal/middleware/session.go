package middleware

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

type sessionKey struct{}

// RequestContext is the per-request identity handed to handlers explicitly.
type RequestContext struct {
	SessionID string
	UserID    string
	Email     string
	Token     string
	Verified  bool
}

func NewRequestContext(s *services.Session) RequestContext {
	return RequestContext{
		SessionID: s.ID,
		UserID:    s.UserID,
		Email:     s.Email,
		Token:     s.IDToken,
		Verified:  s.Verified,
	}
}

// LoadSession resolves the session cookie once per request and stores the
// session in the request context.
func LoadSession(mgr *services.SessionManager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := mgr.Get(r)
			if err != nil {
				log.Errorf("session load failed: %v", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s *services.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session LoadSession stored, or nil.
func SessionFrom(ctx context.Context) *services.Session {
	s, _ := ctx.Value(sessionKey{}).(*services.Session)
	return s
}
