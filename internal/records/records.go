// Package records turns raw store snapshots into per-user views: ownership
// selection, the hidden/visible split, newest-first ordering and the 30-day
// mood window. Everything here is pure.
package records

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

// MoodWindow is how far back the mood chart reaches.
const MoodWindow = 30 * 24 * time.Hour

// ChartLabelLayout formats mood chart labels, e.g. "Mar 07".
const ChartLabelLayout = "Jan 02"

var ErrVerificationRequired = apperr.ErrVerificationRequired

type record[T any] interface {
	*T
	Owner() string
	Stamp() string
	SetID(string)
}

type stamped[T any] struct {
	rec T
	at  time.Time
}

// owned decodes every item of snap owned by userID, skipping anything that
// does not decode. Result is sorted newest first; ties keep snapshot order.
func owned[T any, P record[T]](snap store.Snapshot, userID string) []stamped[T] {
	out := []stamped[T]{}
	if userID == "" {
		return out
	}
	for _, item := range snap {
		var v T
		if err := json.Unmarshal(item.Value, &v); err != nil {
			continue
		}
		p := P(&v)
		if p.Owner() != userID {
			continue
		}
		p.SetID(item.Key)
		out = append(out, stamped[T]{rec: v, at: ParseTimestamp(p.Stamp())})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.After(out[j].at) })
	return out
}

func unwrap[T any](in []stamped[T]) []T {
	out := make([]T, len(in))
	for i, s := range in {
		out[i] = s.rec
	}
	return out
}

// Entries returns all of the user's entries, hidden ones included.
func Entries(snap store.Snapshot, userID string) []models.Entry {
	return unwrap(owned[models.Entry](snap, userID))
}

// VisibleEntries returns the user's entries that are not hidden.
func VisibleEntries(snap store.Snapshot, userID string) []models.Entry {
	return filterEntries(snap, userID, false)
}

// HiddenEntries returns the user's hidden entries. The caller must have passed
// the step-up check; verified false yields ErrVerificationRequired.
func HiddenEntries(snap store.Snapshot, userID string, verified bool) ([]models.Entry, error) {
	if !verified {
		return nil, ErrVerificationRequired
	}
	return filterEntries(snap, userID, true), nil
}

func filterEntries(snap store.Snapshot, userID string, hidden bool) []models.Entry {
	out := []models.Entry{}
	for _, e := range Entries(snap, userID) {
		if e.IsHidden == hidden {
			out = append(out, e)
		}
	}
	return out
}

// FindEntry returns the user's visible entry stored under id.
func FindEntry(snap store.Snapshot, userID, id string) (models.Entry, bool) {
	for _, e := range VisibleEntries(snap, userID) {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entry{}, false
}

// Habits returns the user's habits, newest first.
func Habits(snap store.Snapshot, userID string) []models.Habit {
	return unwrap(owned[models.Habit](snap, userID))
}

type MoodView struct {
	AllLogs []models.MoodLog // newest first
	Recent  []models.MoodLog // inside the window, oldest first
	Labels  []string
	Scores  []int
}

// Moods builds the mood page data. Recent holds the logs with
// timestamp >= now-30d, in ascending order.
func Moods(snap store.Snapshot, userID string, now time.Time) MoodView {
	logs := owned[models.MoodLog](snap, userID)
	cutoff := now.UTC().Add(-MoodWindow)

	view := MoodView{
		AllLogs: unwrap(logs),
		Recent:  []models.MoodLog{},
		Labels:  []string{},
		Scores:  []int{},
	}
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if l.at.IsZero() || l.at.Before(cutoff) {
			continue
		}
		view.Recent = append(view.Recent, l.rec)
		view.Labels = append(view.Labels, l.at.Format(ChartLabelLayout))
		view.Scores = append(view.Scores, l.rec.MoodScore)
	}
	return view
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without an offset are
// taken as UTC. Anything unparseable is the zero time, which sorts last.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatTimestamp is the inverse of ParseTimestamp for new records.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
