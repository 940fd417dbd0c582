package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

func (h *Handler) Habits(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	snap, err := h.store.Get(r.Context(), store.CollectionHabits, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to fetch habits", err)
		return
	}
	h.render(w, r, http.StatusOK, "habits", "Habits", "habits", records.Habits(snap, rc.UserID))
}

func (h *Handler) AddHabit(w http.ResponseWriter, r *http.Request, rc middleware.RequestContext) {
	form := habitForm{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
	}
	if err := validate.Struct(form); err != nil {
		h.flashRedirect(w, r, services.FlashError, "Habit name is required.", "/habits")
		return
	}

	habit := models.Habit{
		UserID:      rc.UserID,
		Name:        form.Name,
		Description: form.Description,
		CreatedAt:   records.FormatTimestamp(h.now()),
	}
	id, err := h.store.Push(r.Context(), store.CollectionHabits, habit, rc.Token)
	if err != nil {
		h.storeFailed(w, r, "Failed to save habit", err)
		return
	}

	h.publish(r, models.ActivityEvent{
		Type:       models.ActivityHabitCreated,
		UserID:     rc.UserID,
		Collection: store.CollectionHabits,
		RecordID:   id,
	})
	h.flashRedirect(w, r, services.FlashSuccess, "Habit added successfully!", "/habits")
}
