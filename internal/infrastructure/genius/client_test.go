package genius

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLyricsPage = `<html><body>
<div data-lyrics-container="true">[Verse 1]<br/>When you were here before<br/>Couldn&#x27;t look you in the eye<br/>You&#x27;re just like an angel</div>
</body></html>`

const testLyricsText = "When you were here before\n" +
	"Couldn't look you in the eye\n" +
	"You're just like an angel"

func newGeniusClient(t *testing.T, mux *http.ServeMux) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), &cfg.GeniusCfg{
		BaseURL:  server.URL + "/api",
		SiteURL:  server.URL,
		ApiToken: "api-token",
		Timeout:  5 * time.Second,
	}, logger.NewSlogLogger())

	return client, server
}

func searchHitsJSON(t *testing.T, w http.ResponseWriter, hits []searchHit, junkFirst bool) {
	t.Helper()

	results := make([]map[string]any, 0, len(hits)+1)
	if junkFirst {
		results = append(results, map[string]any{
			"url":        "https://example.com/pages/lyrics/junk",
			"path":       "/radiohead-discography",
			"full_title": "Radiohead Discography",
		})
	}
	for _, hit := range hits {
		results = append(results, map[string]any{
			"url":            hit.URL,
			"path":           "/radiohead-creep-lyrics",
			"title":          hit.Title,
			"full_title":     hit.Artist + " - " + hit.Title,
			"primary_artist": map[string]any{"name": hit.Artist},
		})
	}

	wrapped := make([]map[string]any, 0, len(results))
	for _, result := range results {
		wrapped = append(wrapped, map[string]any{"result": result})
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"response": map[string]any{"hits": wrapped},
	}))
}

func TestGetLyricsFromSearchHit(t *testing.T) {
	mux := http.NewServeMux()
	client, server := newGeniusClient(t, mux)

	var gotAuth, gotQuery string
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		searchHitsJSON(t, w, []searchHit{
			{URL: server.URL + "/pages/lyrics/creep", Title: "Creep", Artist: "Radiohead"},
		}, true)
	})
	mux.HandleFunc("/pages/lyrics/creep", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(testLyricsPage))
	})

	lyrics, err := client.GetLyrics(context.Background(), "Creep", "Radiohead")

	require.NoError(t, err)
	assert.Equal(t, testLyricsText, lyrics)
	assert.Equal(t, "Bearer api-token", gotAuth)
	assert.Equal(t, "creep radiohead", gotQuery)
}

func TestGetLyricsCanonicalSlugFallback(t *testing.T) {
	mux := http.NewServeMux()
	client, _ := newGeniusClient(t, mux)

	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		searchHitsJSON(t, w, nil, false)
	})
	mux.HandleFunc("/radiohead-creep-lyrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testLyricsPage))
	})

	lyrics, err := client.GetLyrics(context.Background(), "Creep", "Radiohead")

	require.NoError(t, err)
	assert.Equal(t, testLyricsText, lyrics)
}

func TestGetLyricsUnauthorizedAbortsSearch(t *testing.T) {
	mux := http.NewServeMux()
	client, _ := newGeniusClient(t, mux)

	var searchCalls atomic.Int32
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		searchCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	lyrics, err := client.GetLyrics(context.Background(), "Creep", "Radiohead")

	require.NoError(t, err)
	assert.Empty(t, lyrics)
	// второй проход поиска не выполняется, остаётся только slug-фоллбэк
	assert.Equal(t, int32(1), searchCalls.Load())
}

func TestGetLyricsNotFoundIsNotError(t *testing.T) {
	mux := http.NewServeMux()
	client, _ := newGeniusClient(t, mux)

	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		searchHitsJSON(t, w, nil, false)
	})

	lyrics, err := client.GetLyrics(context.Background(), "Nonexistent Song", "Nobody")

	require.NoError(t, err)
	assert.Empty(t, lyrics)
}

func TestGetLyricsSkipsPagesWithoutText(t *testing.T) {
	mux := http.NewServeMux()
	client, server := newGeniusClient(t, mux)

	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		searchHitsJSON(t, w, []searchHit{
			{URL: server.URL + "/pages/lyrics/empty", Title: "Creep", Artist: "Radiohead"},
		}, false)
	})
	mux.HandleFunc("/pages/lyrics/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>Page without lyric containers</p></body></html>"))
	})
	mux.HandleFunc("/radiohead-creep-lyrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testLyricsPage))
	})

	lyrics, err := client.GetLyrics(context.Background(), "Creep", "Radiohead")

	require.NoError(t, err)
	assert.Equal(t, testLyricsText, lyrics, "пустая страница хита не мешает slug-фоллбэку")
}
