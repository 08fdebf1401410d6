package usecase

import (
	"context"

	"github.com/lyricmix/go-backend/internal/domain"
)

type EmbeddingRepository interface {
	// Upsert сохраняет записи эмбеддингов с перезаписью по track_id.
	// Возвращает e.ErrWriteCredentialsMissing, если клиент записи не сконфигурирован.
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	// FindSimilar возвращает ближайшие записи по убыванию похожести, не более TopN.
	// Пустое хранилище — это пустой результат, не ошибка.
	FindSimilar(ctx context.Context, req *FindSimilarReq) ([]domain.CandidateResult, error)
}

type UserRepository interface {
	// GetIDBySpotifyID возвращает nil, если пользователь не зарегистрирован.
	GetIDBySpotifyID(ctx context.Context, spotifyID string) (*int64, error)
}

type PlaylistRepository interface {
	Insert(ctx context.Context, req *SavePlaylistReq) (int64, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, event *OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, eventIDs []string) error
}

type LyricsCacheRepository interface {
	// GetLyrics возвращает пустую строку при промахе кэша.
	GetLyrics(ctx context.Context, trackName, artistName string) (string, error)
	SetLyrics(ctx context.Context, trackName, artistName, lyrics string) error
}
