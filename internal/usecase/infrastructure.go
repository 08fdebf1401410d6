package usecase

import (
	"context"

	"github.com/lyricmix/go-backend/internal/domain"
)

type CatalogInfra interface {
	// CollectPlaylistTracks собирает сиды плейлиста постранично,
	// сохраняя порядок треков между страницами.
	CollectPlaylistTracks(ctx context.Context, accessToken, playlistID string) (*SeedCollection, error)
	// FindTrack ищет лучший трек по названию и (опционально) исполнителю.
	// Возвращает (nil, nil), если ничего не найдено.
	FindTrack(ctx context.Context, accessToken, title, artist string) (*domain.TrackRef, error)
	CreatePlaylist(ctx context.Context, accessToken string, req *CreatePlaylistReq) (string, error)
	AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error
	ListUserPlaylists(ctx context.Context, accessToken string) ([]PlaylistInfo, error)
}

type LyricsInfra interface {
	// GetLyrics возвращает пустую строку, когда лирика не найдена: это штатный исход.
	GetLyrics(ctx context.Context, trackName, artistName string) (string, error)
}

type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
