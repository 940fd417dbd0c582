package models

// Habit is a tracked habit. Streak and CompletedToday are written once at
// creation and not updated by any route yet.
type Habit struct {
	ID             string `json:"id,omitempty"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      string `json:"created_at"`
	Streak         int    `json:"streak"`
	CompletedToday bool   `json:"completed_today"`
}

func (h *Habit) Owner() string   { return h.UserID }
func (h *Habit) Stamp() string   { return h.CreatedAt }
func (h *Habit) SetID(id string) { h.ID = id }
