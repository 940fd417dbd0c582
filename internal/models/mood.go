package models

// MoodLog is a single mood check-in.
type MoodLog struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	Mood      string `json:"mood"`
	MoodScore int    `json:"mood_score"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

func (m *MoodLog) Owner() string   { return m.UserID }
func (m *MoodLog) Stamp() string   { return m.Timestamp }
func (m *MoodLog) SetID(id string) { m.ID = id }
