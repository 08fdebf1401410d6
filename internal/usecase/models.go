package usecase

import (
	"time"

	"github.com/lyricmix/go-backend/internal/domain"
)

// PLAYLIST USECASE

// GenerateFromSeedReq — запрос на генерацию плейлиста из сид-плейлиста.
// Идентичность пользователя и токен доступа передаются явно: usecase
// не читает состояние сессии.
type GenerateFromSeedReq struct {
	SpotifyUserID  string
	AccessToken    string
	SeedPlaylistID string
	PlaylistName   string
}

// GenerateFromSeedRes — идентификатор созданного плейлиста и число добавленных треков.
type GenerateFromSeedRes struct {
	PlaylistID string
	Added      int
}

// ListPlaylistsReq — запрос списка плейлистов пользователя.
type ListPlaylistsReq struct {
	AccessToken string
}

// PlaylistInfo — DTO плейлиста каталога для внешнего использования.
type PlaylistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SeedCollection — четыре параллельных списка, выровненных по индексу трека.
type SeedCollection struct {
	ArtistNames []string
	ArtistIDs   []string
	TrackIDs    []string
	TrackNames  []string
}

// Len возвращает количество собранных сидов.
func (s *SeedCollection) Len() int {
	return len(s.TrackIDs)
}

// INFRASTRUCTURE

type CreatePlaylistReq struct {
	OwnerID     string
	Name        string
	Description string
	Public      bool
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// REPOSITORIES

type FindSimilarReq struct {
	Vector          []float32
	TopN            int
	ExcludeTrackIDs []string
}

type SavePlaylistReq struct {
	UserID            *int64
	Name              string
	SpotifyPlaylistID string
	SeedPlaylistID    string
	Seeds             []domain.SeedTrack
}

// OutboxEvent — событие транзакционного outbox для публикации в Kafka.
type OutboxEvent struct {
	EventID   string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// MAPPERS

func NewGenerateFromSeedReq(spotifyUserID, accessToken, seedPlaylistID, playlistName string) *GenerateFromSeedReq {
	return &GenerateFromSeedReq{
		SpotifyUserID:  spotifyUserID,
		AccessToken:    accessToken,
		SeedPlaylistID: seedPlaylistID,
		PlaylistName:   playlistName,
	}
}

func NewGenerateFromSeedRes(playlistID string, added int) *GenerateFromSeedRes {
	return &GenerateFromSeedRes{
		PlaylistID: playlistID,
		Added:      added,
	}
}

func NewSeedCollection(artistNames, artistIDs, trackIDs, trackNames []string) *SeedCollection {
	return &SeedCollection{
		ArtistNames: artistNames,
		ArtistIDs:   artistIDs,
		TrackIDs:    trackIDs,
		TrackNames:  trackNames,
	}
}

func NewFindSimilarReq(vector []float32, topN int, excludeTrackIDs []string) *FindSimilarReq {
	return &FindSimilarReq{
		Vector:          vector,
		TopN:            topN,
		ExcludeTrackIDs: excludeTrackIDs,
	}
}

func NewCreatePlaylistReq(ownerID, name, description string, public bool) *CreatePlaylistReq {
	return &CreatePlaylistReq{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Public:      public,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
