package genius

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Creep", "creep"},
		{"feat stripped", "One More Time (feat. Somebody)", "one more time"},
		{"with stripped", "Stay (with Me)", "stay"},
		{"brackets stripped", "Song Title [Live]", "song title"},
		{"remaster suffix stripped", "Bohemian Rhapsody - Remastered 2011", "bohemian rhapsody"},
		{"radio edit stripped", "Around the World - Radio Edit", "around the world"},
		{"smart quote normalized", "Don’t Stop Me Now", "don't stop me now"},
		{"punctuation dropped", "What's Up?!", "what's up"},
		{"spaces collapsed", "  Two   Words  ", "two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.in))
		})
	}
}

func TestSlugPath(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{"simple", "Drake", "Headlines", "drake-headlines-lyrics"},
		{"ampersand", "Simon & Garfunkel", "The Boxer", "simon-and-garfunkel-the-boxer-lyrics"},
		{"decorated title", "Queen", "Bohemian Rhapsody - Remastered 2011", "queen-bohemian-rhapsody-lyrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugPath(tt.artist, tt.title))
		})
	}
}

func TestIsGoodHit(t *testing.T) {
	tests := []struct {
		name      string
		fullTitle string
		path      string
		url       string
		want      bool
	}{
		{"song page", "Drake - Headlines", "/drake-headlines-lyrics", "https://genius.com/api/lyrics/123", true},
		{"tracklist page", "Album Tracklist", "/album-tracklist", "https://genius.com/api/lyrics/124", false},
		{"discography in title", "Drake Discography", "/drake-d", "https://genius.com/api/lyrics/125", false},
		{"contributors page", "Song", "/song-contributors", "https://genius.com/api/lyrics/126", false},
		{"not a lyrics url", "Drake - Headlines", "/drake-headlines", "https://genius.com/artists/drake", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isGoodHit(tt.fullTitle, tt.path, tt.url))
		})
	}
}

func TestExtractLyricsFromHTML(t *testing.T) {
	page := `<html><body>
<div data-lyrics-container="true">Translations<br/>[Verse 1]<br/>Hello darkness my old friend<br/>I&#x27;ve come to talk with you again</div>
<div class="ad">ignored</div>
<div data-lyrics-container="true">[Chorus]<br/>And the vision that was planted in my brain<br/>Still remains</div>
</body></html>`

	got := extractLyricsFromHTML(page)

	want := "Hello darkness my old friend\n" +
		"I've come to talk with you again\n" +
		"And the vision that was planted in my brain\n" +
		"Still remains"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Translations", "всё до первого [Verse] отрезается")
	assert.NotContains(t, got, "[")
}

func TestExtractLyricsFromHTMLNestedDiv(t *testing.T) {
	page := `<div data-lyrics-container="true">[Verse 1]<br/>First line of the song here` +
		`<div class="inner">Second line inside a nested block</div>` +
		`Third line after the nested close<br/>Fourth line keeps the verse going</div>`

	got := extractLyricsFromHTML(page)

	want := "First line of the song here\n" +
		"Second line inside a nested block\n" +
		"Third line after the nested close\n" +
		"Fourth line keeps the verse going"
	assert.Equal(t, want, got, "контейнер читается до парного </div>, а не до первого")
}

func TestExtractLyricsFromHTMLRejections(t *testing.T) {
	t.Run("empty page", func(t *testing.T) {
		assert.Empty(t, extractLyricsFromHTML(""))
	})

	t.Run("no lyric containers", func(t *testing.T) {
		assert.Empty(t, extractLyricsFromHTML("<html><body><p>Not a song page</p></body></html>"))
	})

	t.Run("too few words", func(t *testing.T) {
		page := `<div data-lyrics-container="true">La la la</div>`
		assert.Empty(t, extractLyricsFromHTML(page))
	})

	t.Run("unclosed container", func(t *testing.T) {
		page := `<div data-lyrics-container="true">A verse that never gets a closing tag`
		assert.Empty(t, extractLyricsFromHTML(page))
	})
}
