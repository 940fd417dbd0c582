package models

// Entry is a journal entry as stored in the "entries" collection.
// The owner field keeps its historical name "uid".
type Entry struct {
	ID        string `json:"id,omitempty"`
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	Timestamp string `json:"timestamp"`
	IsHidden  bool   `json:"is_hidden"`
	ImageURL  string `json:"image_url,omitempty"`
}

func (e *Entry) Owner() string   { return e.UID }
func (e *Entry) Stamp() string   { return e.Timestamp }
func (e *Entry) SetID(id string) { e.ID = id }
