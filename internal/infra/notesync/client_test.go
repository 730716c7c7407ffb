package notesync

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"echotrail/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := New(&config.NoteSyncConfig{
		BaseURL:   server.URL,
		AuthToken: "test-token",
		Timeout:   5 * time.Second,
	}, logger)

	return source.(*Client)
}

func TestFetchNotes_GeoJSONLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": "note-1",
				"title": "Taipei 101",
				"file_name": "rec-1.m4a",
				"location": {"type": "Point", "coordinates": [121.5654, 25.0330]},
				"range": 150,
				"hidden_until": "2026-09-01T00:00:00Z",
				"created_at": "2026-08-01T12:00:00Z"
			}
		]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)

	note := notes[0]
	assert.Equal(t, "note-1", note.ID)
	assert.Equal(t, "Taipei 101", note.Title)
	assert.Equal(t, "rec-1.m4a", note.AudioFile)
	// GeoJSON coordinates are [lon, lat]
	assert.InDelta(t, 25.0330, note.Latitude, 1e-9)
	assert.InDelta(t, 121.5654, note.Longitude, 1e-9)
	assert.InDelta(t, 150.0, note.RadiusMeters, 1e-9)
	require.NotNil(t, note.HiddenUntil)
	assert.Equal(t, 2026, note.HiddenUntil.Year())
	assert.Equal(t, time.August, note.CreatedAt.Month())
}

func TestFetchNotes_SkipsNonPointLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "note-1", "location": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
		]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFetchNotes_SkipsMalformedNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": "ok",
				"title": "still here",
				"file_name": "ok.m4a",
				"location": {"type": "Point", "coordinates": [121.5654, 25.0330]},
				"range": 100
			},
			{"id": "broken"}
		]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "ok", notes[0].ID)
}

func TestFetchNotes_LegacyFlatShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "note-1", "title": "old shape", "file_name": "a.m4a",
			 "latitude": 25.0, "longitude": 121.5, "radius": 80},
			{"id": "note-2", "title": "no radius", "latitude": 24.0, "longitude": 120.0}
		]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "note-1", notes[0].ID)
	assert.InDelta(t, 80.0, notes[0].RadiusMeters, 1e-9)
	assert.Zero(t, notes[1].RadiusMeters)
}

func TestFetchNotes_DropsInvalidNotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "good", "latitude": 25.0, "longitude": 121.5},
			{"id": "", "latitude": 25.0, "longitude": 121.5},
			{"id": "bad-coords", "latitude": 95.0, "longitude": 200.0}
		]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "good", notes[0].ID)
}

func TestFetchNotes_SkipsMissingLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "note-1", "title": "nowhere"}]`))
	})

	notes, err := client.FetchNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFetchNotes_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchNotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchNotes_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	})

	_, err := client.FetchNotes(context.Background())
	require.Error(t, err)
}
