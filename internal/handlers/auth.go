package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/AnshRaj112/serenify-journal/internal/identity"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

const defaultNext = "/home"

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Log in", "login", nil)
}

func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", "Sign up", "signup", nil)
}

// Login signs the user in and starts a fresh session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := formValue(r, "email")
	password := r.PostFormValue("password")

	acct, err := h.gateway.SignIn(r.Context(), email, password)
	if err != nil {
		h.logFor(r).Infof("sign-in rejected: %v", err)
		h.flashRedirect(w, r, services.FlashError, identity.Message(err), "/")
		return
	}
	if acct.Email == "" {
		acct.Email = email
	}

	s := h.session(r)
	if err := h.sessions.Renew(r.Context(), s); err != nil {
		h.serverError(w, r, "Failed to start session", err)
		return
	}
	s.Login(acct)
	h.flashRedirect(w, r, services.FlashSuccess, "Logged in successfully!", defaultNext)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	email := formValue(r, "email")
	password := r.PostFormValue("password")

	if err := h.gateway.CreateUser(r.Context(), email, password); err != nil {
		h.logFor(r).Infof("sign-up rejected: %v", err)
		h.flashRedirect(w, r, services.FlashError, identity.Message(err), "/signup")
		return
	}
	h.flashRedirect(w, r, services.FlashSuccess, "Account created successfully! Please log in.", "/")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	s := h.session(r)
	if err := h.sessions.Reset(r.Context(), s); err != nil {
		h.logFor(r).Errorf("failed to reset session: %v", err)
	}
	h.flashRedirect(w, r, services.FlashSuccess, "Logged out successfully.", "/")
}

func (h *Handler) VerifyPasswordPage(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	next := safeNext(r.URL.Query().Get("next"))
	h.render(w, r, http.StatusOK, "verify_password", "Verify password", "hidden", next)
}

// VerifyPassword re-runs sign-in with the session's email. Success grants one
// view of the hidden journal; the fresh token is discarded.
func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	next := safeNext(r.PostFormValue("next"))

	if _, err := h.gateway.SignIn(r.Context(), rc.Email, r.PostFormValue("password")); err != nil {
		h.logFor(r).Infof("step-up verification failed: %v", err)
		h.flashRedirect(w, r, services.FlashError, "Incorrect password. Please try again.",
			"/verify_password?next="+url.QueryEscape(next))
		return
	}

	s := h.session(r)
	s.Verified = true
	h.flashRedirect(w, r, services.FlashSuccess, "Verification successful!", next)
}

// safeNext keeps redirects on this site: only absolute local paths pass.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNext
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return defaultNext
	}
	return next
}
