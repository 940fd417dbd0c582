package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

func (h *Handler) Moods(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	snap, err := h.store.Get(r.Context(), store.CollectionMoods, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch mood logs", err)
		return
	}
	h.render(w, r, http.StatusOK, "moods", "Mood tracker", "moods", records.Moods(snap, rc.UserID, h.now()))
}

func (h *Handler) LogMood(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	form := moodForm{
		Mood:  formValue(r, "mood"),
		Score: formValue(r, "mood_score"),
		Notes: formValue(r, "notes"),
	}
	if err := validate.Struct(form); err != nil {
		h.flashRedirect(w, r, services.FlashError, "Please select a mood and score.", "/moods")
		return
	}
	score, err := strconv.Atoi(form.Score)
	if err != nil {
		h.flashRedirect(w, r, services.FlashError, "Mood score must be a whole number.", "/moods")
		return
	}

	moodLog := models.MoodLog{
		UserID:    rc.UserID,
		Mood:      form.Mood,
		MoodScore: score,
		Notes:     form.Notes,
		Timestamp: records.FormatTimestamp(h.now()),
	}
	id, err := h.store.Push(r.Context(), store.CollectionMoods, moodLog, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to save mood log", err)
		return
	}

	h.publish(r, models.ActivityEvent{
		Type:       models.ActivityMoodLogged,
		UserID:     rc.UserID,
		Collection: store.CollectionMoods,
		RecordID:   id,
	})
	h.flashRedirect(w, r, services.FlashSuccess, "Mood logged successfully!", "/moods")
}
