package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

// AuthedHandlerFunc is a handler that only runs for a signed-in user.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, rc RequestContext)

type Auth struct {
	sessions *services.SessionManager
	log      logger.Logger
}

func NewAuth(sessions *services.SessionManager, log logger.Logger) *Auth {
	return &Auth{sessions: sessions, log: log}
}

// RequireLogin sends anonymous page requests back to the login form with a flash.
func (a *Auth) RequireLogin(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil || !s.IsAuthenticated() {
			if s != nil {
				s.AddFlash(services.FlashError, "Please log in first.")
				if err := a.sessions.Save(w, r, s); err != nil {
					a.log.Errorf("failed to save session: %v", err)
				}
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r, NewRequestContext(s))
	}
}

// RequireAPILogin answers anonymous API requests with 401 JSON.
func (a *Auth) RequireAPILogin(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil || !s.IsAuthenticated() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
			return
		}
		next(w, r, NewRequestContext(s))
	}
}
