package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	h.render(w, r, http.StatusOK, "home", "Home", "home", nil)
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", "About", "about", nil)
}

// DailyQuote renders the quote page; the quote itself is loaded from /api/quote.
func (h *Handler) DailyQuote(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	h.render(w, r, http.StatusOK, "quote", "Daily quote", "quote", nil)
}

func (h *Handler) Gratitude(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	h.render(w, r, http.StatusOK, "gratitude", "Gratitude", "gratitude", services.RandomPrompt())
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
