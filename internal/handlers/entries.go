package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

const maxUploadSize = 10 << 20 // 10MB

type newEntryPage struct {
	PhotosEnabled bool
}

func (h *Handler) Entries(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	snap, err := h.store.Get(r.Context(), store.CollectionEntries, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch entries", err)
		return
	}
	h.render(w, r, http.StatusOK, "entries", "Your entries", "entries", records.VisibleEntries(snap, rc.UserID))
}

func (h *Handler) NewEntryPage(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	h.render(w, r, http.StatusOK, "new_entry", "New entry", "new_entry", newEntryPage{PhotosEnabled: h.uploader != nil})
}

// CreateEntry saves a journal entry. Hidden entries go to the private journal.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.flashRedirect(w, r, services.FlashError, "Your entry could not be read. Photos must be under 10MB.", "/new_entry")
		return
	}

	form := entryForm{
		Title:   formValue(r, "title"),
		Content: formValue(r, "content"),
		Mood:    formValue(r, "mood"),
		Hidden:  formHas(r, "is_hidden"),
	}
	if err := validate.Struct(form); err != nil {
		h.flashRedirect(w, r, services.FlashError, "Title and content cannot be empty.", "/new_entry")
		return
	}
	if form.Mood == "" {
		form.Mood = "none"
	}

	entry := models.Entry{
		UID:       rc.UserID,
		Title:     form.Title,
		Content:   form.Content,
		Mood:      form.Mood,
		Timestamp: records.FormatTimestamp(h.now()),
		IsHidden:  form.Hidden,
	}

	if h.uploader != nil && r.MultipartForm != nil {
		if files := r.MultipartForm.File["photo"]; len(files) > 0 && files[0].Size > 0 {
			imageURL, err := h.uploader.UploadPhoto(r.Context(), files[0], services.PhotoFolder(rc.UserID))
			if err != nil {
				h.logFor(r).Errorf("photo upload failed: %v", err)
				h.flashRedirect(w, r, services.FlashError, "Photo upload failed. Your entry was not saved.", "/new_entry")
				return
			}
			entry.ImageURL = imageURL
		}
	}

	id, err := h.store.Push(r.Context(), store.CollectionEntries, entry, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to save entry", err)
		return
	}

	event := models.ActivityEvent{Type: models.ActivityEntryCreated, UserID: rc.UserID, Hidden: entry.IsHidden}
	if !entry.IsHidden {
		event.Collection = store.CollectionEntries
		event.RecordID = id
	}
	h.publish(r, event)

	if entry.IsHidden {
		h.flashRedirect(w, r, services.FlashSuccess, "Your private entry has been saved to your hidden journal!", "/hidden_entries")
		return
	}
	h.flashRedirect(w, r, services.FlashSuccess, "Journal entry saved successfully!", "/entries")
}

// EditEntry shows one of the user's visible entries read-only.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	snap, err := h.store.Get(r.Context(), store.CollectionEntries, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch entry", err)
		return
	}
	entry, ok := records.FindEntry(snap, rc.UserID, chi.URLParam(r, "id"))
	if !ok {
		h.notFound(w, r, "That entry does not exist.")
		return
	}
	h.render(w, r, http.StatusOK, "edit_entry", entry.Title, "entries", entry)
}

// HiddenEntries is the gated private journal. The verified flag is spent on
// the first successful render.
func (h *Handler) HiddenEntries(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	if !rc.Verified {
		http.Redirect(w, r, "/verify_password?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
		return
	}

	snap, err := h.store.Get(r.Context(), store.CollectionEntries, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch entries", err)
		return
	}
	entries, err := records.HiddenEntries(snap, rc.UserID, rc.Verified)
	if err != nil {
		h.serverError(w, r, "Failed to open private journal", err)
		return
	}

	s := h.session(r)
	s.Verified = false
	if err := h.sessions.Save(w, r, s); err != nil {
		h.serverError(w, r, "Failed to update session", err)
		return
	}
	h.render(w, r, http.StatusOK, "hidden_entries", "Private journal", "hidden", entries)
}
