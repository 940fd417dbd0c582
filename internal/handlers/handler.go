package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/identity"
	"github.com/AnshRaj112/serenify-journal/internal/logger"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/store"
	"github.com/AnshRaj112/serenify-journal/internal/web"
)

// QuoteSource is satisfied by *quotes.Service.
type QuoteSource interface {
	Get(ctx context.Context) models.Quote
}

// Deps are the collaborators a Handler needs. Uploader may be nil, which
// turns entry photos off.
type Deps struct {
	Config   *config.Config
	Logger   logger.Logger
	Views    *web.Views
	Gateway  identity.Gateway
	Store    store.Store
	Sessions *services.SessionManager
	Quotes   QuoteSource
	Activity *services.ActivityHub
	Uploader services.PhotoUploader
	Now      func() time.Time
}

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg      *config.Config
	log      logger.Logger
	views    *web.Views
	gateway  identity.Gateway
	store    store.Store
	sessions *services.SessionManager
	quotes   QuoteSource
	activity *services.ActivityHub
	uploader services.PhotoUploader
	now      func() time.Time
}

func New(d Deps) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{
		cfg:      d.Config,
		log:      d.Logger,
		views:    d.Views,
		gateway:  d.Gateway,
		store:    d.Store,
		sessions: d.Sessions,
		quotes:   d.Quotes,
		activity: d.Activity,
		uploader: d.Uploader,
		now:      d.Now,
	}
}

func (h *Handler) session(r *http.Request) *services.Session {
	if s := middleware.SessionFrom(r.Context()); s != nil {
		return s
	}
	// Only reachable when a route is mounted without LoadSession.
	return &services.Session{}
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, s *services.Session) {
	if s.ID == "" {
		return
	}
	if err := h.sessions.Save(w, r, s); err != nil {
		h.logFor(r).Errorf("failed to save session: %v", err)
	}
}

func (h *Handler) logFor(r *http.Request) logger.Logger {
	return h.log.With("request_id", chimw.GetReqID(r.Context()))
}

// render shows a page, consuming any pending flashes.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title, active string, data any) {
	s := h.session(r)
	flashes := s.PopFlashes()
	if len(flashes) > 0 {
		h.saveSession(w, r, s)
	}

	err := h.views.Render(w, status, name, web.Page{
		Title:    title,
		Active:   active,
		Email:    s.Email,
		LoggedIn: s.IsAuthenticated(),
		Flashes:  flashes,
		Data:     data,
	})
	if err != nil {
		h.logFor(r).Errorf("render %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// flashRedirect records a flash and redirects with 302.
func (h *Handler) flashRedirect(w http.ResponseWriter, r *http.Request, category, message, to string) {
	s := h.session(r)
	s.AddFlash(category, message)
	h.saveSession(w, r, s)
	http.Redirect(w, r, to, http.StatusFound)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logFor(r).Warnf("failed to write JSON response: %v", err)
	}
}

// fail is the single failure path for both surfaces. API callers get
// {"error": message}, plus "details" for server errors; pages get the error
// template with the same status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		status := apperr.Status(err)
		ae = apperr.New(status, http.StatusText(status), err)
	}

	if ae.Status >= http.StatusInternalServerError {
		h.logFor(r).Errorf("%v", ae)
	} else {
		h.logFor(r).Infof("%v", ae)
	}

	if isAPI(r) {
		body := map[string]string{"error": ae.Message}
		if ae.Status >= http.StatusInternalServerError && ae.Err != nil {
			body["details"] = ae.Err.Error()
		}
		h.writeJSON(w, r, ae.Status, body)
		return
	}

	title, message := "Something went wrong", ae.Message
	switch {
	case ae.Status == http.StatusNotFound:
		title = "Not found"
	case ae.Status >= http.StatusInternalServerError:
		message += ". Please try again in a moment."
	}
	h.render(w, r, ae.Status, "error", title, "", message)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.fail(w, r, apperr.New(http.StatusInternalServerError, message, err))
}

// storeFailed handles a document store error. A rejected token means the
// provider session expired, so the user is logged out instead of shown a 500.
func (h *Handler) storeFailed(w http.ResponseWriter, r *http.Request, message string, err error) {
	if !errors.Is(err, apperr.ErrUnauthorized) {
		h.serverError(w, r, message, err)
		return
	}

	if isAPI(r) {
		h.fail(w, r, apperr.New(http.StatusUnauthorized, "Authentication required", err))
		return
	}
	h.logFor(r).Warnf("store rejected token: %v", err)
	s := h.session(r)
	if err := h.sessions.Reset(r.Context(), s); err != nil {
		h.logFor(r).Errorf("failed to reset session: %v", err)
	}
	h.flashRedirect(w, r, services.FlashError, "Your session has expired. Please log in again.", "/")
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.fail(w, r, apperr.New(http.StatusNotFound, message, apperr.ErrNotFound))
}

// NotFound is the router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "The page you were looking for does not exist.")
}

// publish announces a write on the activity feed. Failures are only logged.
func (h *Handler) publish(r *http.Request, event models.ActivityEvent) {
	if h.activity == nil {
		return
	}
	if err := h.activity.Publish(r.Context(), event); err != nil {
		h.logFor(r).Warnf("failed to publish activity event: %v", err)
	}
}
