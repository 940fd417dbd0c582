package records

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/store"
)

func snapshot(t *testing.T, recs ...any) store.Snapshot {
	t.Helper()
	snap := store.Snapshot{}
	for i, r := range recs {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		snap = append(snap, store.Item{Key: fmt.Sprintf("k%02d", i), Value: raw})
	}
	return snap
}

func entry(uid, title, ts string, hidden bool) models.Entry {
	return models.Entry{UID: uid, Title: title, Content: "c", Mood: "none", Timestamp: ts, IsHidden: hidden}
}

func titles(es []models.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Title
	}
	return out
}

func TestEntries_OwnershipAndOrder(t *testing.T) {
	snap := snapshot(t,
		entry("alice", "old", "2024-01-01T10:00:00Z", false),
		entry("bob", "bob's", "2024-01-03T10:00:00Z", false),
		entry("alice", "new", "2024-01-02T10:00:00+00:00", true),
		entry("alice", "broken-ts", "yesterday", false),
	)

	got := Entries(snap, "alice")
	assert.Equal(t, []string{"new", "old", "broken-ts"}, titles(got))
	assert.Equal(t, "k02", got[0].ID)

	for _, e := range got {
		assert.Equal(t, "alice", e.UID)
	}
}

func TestEntries_FilterIsIdempotent(t *testing.T) {
	snap := snapshot(t,
		entry("alice", "a", "2024-01-01T10:00:00Z", false),
		entry("bob", "b", "2024-01-02T10:00:00Z", false),
	)
	once := Entries(snap, "alice")
	twice := Entries(snapshot(t, toAny(once)...), "alice")
	assert.Equal(t, titles(once), titles(twice))
}

func toAny(es []models.Entry) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

func TestEntries_EmptyInputs(t *testing.T) {
	assert.NotNil(t, Entries(nil, "alice"))
	assert.Empty(t, Entries(nil, "alice"))

	snap := snapshot(t, entry("", "anon", "2024-01-01T10:00:00Z", false))
	assert.Empty(t, Entries(snap, ""))
}

func TestEntries_SkipsUndecodable(t *testing.T) {
	snap := store.Snapshot{
		{Key: "k1", Value: json.RawMessage(`"just a string"`)},
		{Key: "k2", Value: json.RawMessage(`{"uid":"alice","title":"ok","timestamp":"2024-01-01T00:00:00Z"}`)},
	}
	assert.Equal(t, []string{"ok"}, titles(Entries(snap, "alice")))
}

func TestHiddenVisiblePartition(t *testing.T) {
	snap := snapshot(t,
		entry("alice", "v1", "2024-01-01T10:00:00Z", false),
		entry("alice", "h1", "2024-01-02T10:00:00Z", true),
		entry("alice", "v2", "2024-01-03T10:00:00Z", false),
		entry("bob", "h2", "2024-01-04T10:00:00Z", true),
	)

	visible := VisibleEntries(snap, "alice")
	hidden, err := HiddenEntries(snap, "alice", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"v2", "v1"}, titles(visible))
	assert.Equal(t, []string{"h1"}, titles(hidden))
	assert.Len(t, Entries(snap, "alice"), len(visible)+len(hidden))
	for _, v := range visible {
		assert.NotContains(t, titles(hidden), v.Title)
	}
}

func TestHiddenEntries_RequiresVerification(t *testing.T) {
	snap := snapshot(t, entry("alice", "h1", "2024-01-02T10:00:00Z", true))
	got, err := HiddenEntries(snap, "alice", false)
	assert.ErrorIs(t, err, ErrVerificationRequired)
	assert.Nil(t, got)
}

func TestFindEntry(t *testing.T) {
	snap := snapshot(t,
		entry("alice", "mine", "2024-01-01T10:00:00Z", false),
		entry("alice", "secret", "2024-01-01T11:00:00Z", true),
		entry("bob", "theirs", "2024-01-01T12:00:00Z", false),
	)

	e, ok := FindEntry(snap, "alice", "k00")
	require.True(t, ok)
	assert.Equal(t, "mine", e.Title)

	_, ok = FindEntry(snap, "alice", "k01")
	assert.False(t, ok)
	_, ok = FindEntry(snap, "alice", "k02")
	assert.False(t, ok)
}

func TestHabits_NewestFirst(t *testing.T) {
	snap := snapshot(t,
		models.Habit{UserID: "alice", Name: "walk", CreatedAt: "2024-02-01T08:00:00Z"},
		models.Habit{UserID: "alice", Name: "read", CreatedAt: "2024-03-01T08:00:00Z"},
		models.Habit{UserID: "bob", Name: "swim", CreatedAt: "2024-04-01T08:00:00Z"},
	)
	got := Habits(snap, "alice")
	require.Len(t, got, 2)
	assert.Equal(t, "read", got[0].Name)
	assert.Equal(t, "walk", got[1].Name)
}

func TestMoods_Window(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	snap := snapshot(t,
		models.MoodLog{UserID: "alice", Mood: "calm", MoodScore: 6, Timestamp: now.Add(-MoodWindow).Format(time.RFC3339)},
		models.MoodLog{UserID: "alice", Mood: "old", MoodScore: 2, Timestamp: now.Add(-MoodWindow - time.Second).Format(time.RFC3339)},
		models.MoodLog{UserID: "alice", Mood: "happy", MoodScore: 9, Timestamp: "2024-05-30T09:00:00"},
		models.MoodLog{UserID: "alice", Mood: "unknown", MoodScore: 5, Timestamp: ""},
		models.MoodLog{UserID: "bob", Mood: "sad", MoodScore: 1, Timestamp: "2024-05-30T10:00:00Z"},
	)

	view := Moods(snap, "alice", now)
	require.Len(t, view.AllLogs, 4)
	assert.Equal(t, "happy", view.AllLogs[0].Mood)
	assert.Equal(t, "unknown", view.AllLogs[3].Mood)

	require.Len(t, view.Recent, 2)
	assert.Equal(t, "calm", view.Recent[0].Mood)
	assert.Equal(t, "happy", view.Recent[1].Mood)
	assert.Equal(t, []string{"May 01", "May 30"}, view.Labels)
	assert.Equal(t, []int{6, 9}, view.Scores)
}

func TestMoods_AscendingIsReverseOfDescending(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	var recs []any
	for i := 0; i < 5; i++ {
		recs = append(recs, models.MoodLog{
			UserID:    "alice",
			MoodScore: i,
			Timestamp: now.Add(-time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
		})
	}
	view := Moods(snapshot(t, recs...), "alice", now)

	require.Len(t, view.Recent, len(view.AllLogs))
	for i := range view.Recent {
		assert.Equal(t, view.AllLogs[len(view.AllLogs)-1-i], view.Recent[i])
	}
}

func TestMoods_OldLogStaysInListButLeavesGraph(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	snap := snapshot(t, models.MoodLog{UserID: "alice", Mood: "ok", MoodScore: 5, Timestamp: FormatTimestamp(t0)})

	view := Moods(snap, "alice", t0.Add(31*24*time.Hour))
	assert.Len(t, view.AllLogs, 1)
	assert.Empty(t, view.Recent)
	assert.Empty(t, view.Scores)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-07T14:30:00Z", want},
		{"2024-03-07T14:30:00+00:00", want},
		{"2024-03-07T16:30:00+02:00", want},
		{"2024-03-07T14:30:00", want},
		{"2024-03-07T14:30:00.000000", want},
		{"2024-03-07 14:30:00", want},
		{"2024-03-07", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a time", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseTimestamp(tt.in)), "got %v", ParseTimestamp(tt.in))
		})
	}
}
