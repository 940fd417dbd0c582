package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

// APIEntries returns every entry the user owns, hidden ones included, newest first.
func (h *Handler) APIEntries(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	snap, err := h.store.Get(r.Context(), store.CollectionEntries, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch entries", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, records.Entries(snap, rc.UserID))
}

// APIQuote always answers 200; the quote chain cannot fail.
func (h *Handler) APIQuote(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	h.writeJSON(w, r, http.StatusOK, h.quotes.Get(r.Context()))
}
