package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/records"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

func TestParse_AllPages(t *testing.T) {
	v, err := Parse()
	require.NoError(t, err)

	for _, name := range []string{
		"login", "signup", "home", "entries", "new_entry", "edit_entry", "hidden_entries",
		"verify_password", "habits", "moods", "quote", "gratitude", "about", "error",
	} {
		assert.True(t, v.Has(name), name)
	}
}

func TestRender_EscapesUserContent(t *testing.T) {
	v, err := Parse()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = v.Render(rec, http.StatusOK, "entries", Page{
		Title:    "Entries",
		LoggedIn: true,
		Flashes:  []services.Flash{{Category: services.FlashSuccess, Message: "Journal entry saved successfully!"}},
		Data: []models.Entry{{
			ID: "k1", Title: "<script>alert(1)</script>", Content: "hi", Mood: "none",
			Timestamp: "2024-03-07T14:30:00Z",
		}},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "Journal entry saved successfully!")
	assert.Contains(t, body, "Thursday, March 7, 2024")
	assert.Contains(t, body, `href="/edit_entry/k1"`)
}

func TestRender_MoodChartData(t *testing.T) {
	v, err := Parse()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, v.Render(rec, http.StatusOK, "moods", Page{
		LoggedIn: true,
		Data: records.MoodView{
			AllLogs: []models.MoodLog{{Mood: "calm", MoodScore: 6, Timestamp: "2024-05-01T12:00:00Z"}},
			Recent:  []models.MoodLog{{Mood: "calm", MoodScore: 6, Timestamp: "2024-05-01T12:00:00Z"}},
			Labels:  []string{"May 01"},
			Scores:  []int{6},
		},
	}))
	body := rec.Body.String()
	assert.Contains(t, body, `["May 01"]`)
	assert.Contains(t, body, `[6]`)
}

func TestRender_UnknownPage(t *testing.T) {
	v, err := Parse()
	require.NoError(t, err)
	assert.Error(t, v.Render(httptest.NewRecorder(), http.StatusOK, "missing", Page{}))
}

func TestStatic(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
