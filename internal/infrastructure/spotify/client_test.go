package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), &cfg.SpotifyCfg{
		BaseURL:    server.URL,
		MaxRetries: 3,
		PageLimit:  2,
	}, logger.NewSlogLogger())

	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestCollectPlaylistTracksPaginates(t *testing.T) {
	var gotAuth string
	var secondPageURL string

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/seed-1/tracks", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if r.URL.Query().Get("offset") == "2" {
			writeJSON(t, w, playlistTracksPage{
				Items: []playlistItem{
					{Track: &trackObject{ID: "t3", Name: "Song Three", URI: "spotify:track:t3",
						Artists: []artistObject{{ID: "a3", Name: "Third Artist"}}}},
				},
			})
			return
		}

		writeJSON(t, w, playlistTracksPage{
			Items: []playlistItem{
				{Track: &trackObject{ID: "t1", Name: "Song One", URI: "spotify:track:t1",
					Artists: []artistObject{{ID: "a1", Name: "First Artist"}}}},
				{Track: nil}, // локальный файл
				{Track: &trackObject{ID: "", Name: "Ghost", Artists: []artistObject{{ID: "a9", Name: "Nobody"}}}},
				{Track: &trackObject{ID: "t9", Name: "Interlude"}}, // без исполнителей
				{Track: &trackObject{ID: "t2", Name: "Song Two", URI: "spotify:track:t2",
					Artists: []artistObject{{ID: "a2", Name: "Second Artist"}}}},
			},
			Next: &secondPageURL,
		})
	})

	client, server := newTestClient(t, mux)
	secondPageURL = server.URL + "/playlists/seed-1/tracks?limit=2&offset=2"

	seeds, err := client.CollectPlaylistTracks(context.Background(), "token-1", "seed-1")

	require.NoError(t, err)
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, []string{"t1", "t2", "t3"}, seeds.TrackIDs)
	assert.Equal(t, []string{"Song One", "Song Two", "Song Three"}, seeds.TrackNames)
	assert.Equal(t, []string{"First Artist", "Second Artist", "Third Artist"}, seeds.ArtistNames)
	assert.Equal(t, []string{"a1", "a2", "a3"}, seeds.ArtistIDs)
}

func TestFindTrack(t *testing.T) {
	var gotQuery string

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")

		if gotQuery == "track:Unknown Song" {
			writeJSON(t, w, searchResponse{})
			return
		}

		res := searchResponse{}
		res.Tracks.Items = []trackObject{{
			ID: "t9", Name: "Midnight City", URI: "spotify:track:t9",
			Artists: []artistObject{{ID: "a9", Name: "M83"}},
		}}
		writeJSON(t, w, res)
	})

	client, _ := newTestClient(t, mux)

	t.Run("title and artist", func(t *testing.T) {
		track, err := client.FindTrack(context.Background(), "token", "Midnight City", "M83")

		require.NoError(t, err)
		require.NotNil(t, track)
		assert.Equal(t, "track:Midnight City artist:M83", gotQuery)
		assert.Equal(t, "t9", track.ID)
		assert.Equal(t, "M83", track.PrimaryArtist)
		assert.Equal(t, "spotify:track:t9", track.URI)
	})

	t.Run("title only", func(t *testing.T) {
		track, err := client.FindTrack(context.Background(), "token", "Midnight City", "")

		require.NoError(t, err)
		require.NotNil(t, track)
		assert.Equal(t, "track:Midnight City", gotQuery)
	})

	t.Run("not found is nil, not error", func(t *testing.T) {
		track, err := client.FindTrack(context.Background(), "token", "Unknown Song", "")

		require.NoError(t, err)
		assert.Nil(t, track)
	})
}

func TestCreatePlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/user-1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body createPlaylistRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "My Mix", body.Name)
		assert.False(t, body.Public)

		writeJSON(t, w, playlistObject{ID: "new-playlist", Name: body.Name})
	})
	mux.HandleFunc("/users/broken/playlists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, playlistObject{})
	})

	client, _ := newTestClient(t, mux)

	t.Run("ok", func(t *testing.T) {
		id, err := client.CreatePlaylist(context.Background(), "token",
			usecase.NewCreatePlaylistReq("user-1", "My Mix", "desc", false))

		require.NoError(t, err)
		assert.Equal(t, "new-playlist", id)
	})

	t.Run("missing id in response", func(t *testing.T) {
		_, err := client.CreatePlaylist(context.Background(), "token",
			usecase.NewCreatePlaylistReq("broken", "My Mix", "desc", false))

		assert.ErrorContains(t, err, "playlist without id")
	})
}

func TestAddTracksBatches(t *testing.T) {
	var batches [][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body addTracksRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batches = append(batches, body.URIs)
		w.WriteHeader(http.StatusCreated)
	})

	client, _ := newTestClient(t, mux) // PageLimit = 2

	uris := []string{"u1", "u2", "u3", "u4", "u5"}
	err := client.AddTracks(context.Background(), "token", "p1", uris)

	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"u1", "u2"}, batches[0])
	assert.Equal(t, []string{"u3", "u4"}, batches[1])
	assert.Equal(t, []string{"u5"}, batches[2])
}

func TestListUserPlaylists(t *testing.T) {
	var secondPageURL string

	mux := http.NewServeMux()
	mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "2" {
			writeJSON(t, w, playlistsPage{Items: []playlistObject{{ID: "p3", Name: "Chill"}}})
			return
		}

		writeJSON(t, w, playlistsPage{
			Items: []playlistObject{{ID: "p1", Name: "Rock"}, {ID: "p2", Name: "Jazz"}},
			Next:  &secondPageURL,
		})
	})

	client, server := newTestClient(t, mux)
	secondPageURL = server.URL + "/me/playlists?limit=2&offset=2"

	playlists, err := client.ListUserPlaylists(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, []usecase.PlaylistInfo{
		{ID: "p1", Name: "Rock"},
		{ID: "p2", Name: "Jazz"},
		{ID: "p3", Name: "Chill"},
	}, playlists)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		res := searchResponse{}
		res.Tracks.Items = []trackObject{{ID: "t1", Name: "Song", URI: "spotify:track:t1"}}
		writeJSON(t, w, res)
	})

	client, _ := newTestClient(t, mux)

	track, err := client.FindTrack(context.Background(), "token", "Song", "")

	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.FindTrack(context.Background(), "token", "Song", "")

	require.Error(t, err)
	assert.ErrorContains(t, err, fmt.Sprintf("after %d attempts", 3))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	client, _ := newTestClient(t, mux)

	_, err := client.FindTrack(context.Background(), "token", "Song", "")

	require.Error(t, err)
	assert.ErrorContains(t, err, "status 404")
	assert.Equal(t, int32(1), calls.Load())
}
