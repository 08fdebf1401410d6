package pgdb

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/tr"
)

// PlaylistRepo хранит метаданные сгенерированных плейлистов.
type PlaylistRepo struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepo(pool *pgxpool.Pool) *PlaylistRepo {
	return &PlaylistRepo{
		pool: pool,
	}
}

// seedModel — форма сида для JSONB-колонки seeds.
type seedModel struct {
	TrackID    string `json:"track_id"`
	TrackName  string `json:"track_name"`
	ArtistID   string `json:"artist_id"`
	ArtistName string `json:"artist_name"`
}

// Insert сохраняет связь сгенерированного плейлиста с исходным и его сидами.
// user_id допускает NULL для незарегистрированных пользователей.
func (p *PlaylistRepo) Insert(ctx context.Context, req *usecase.SavePlaylistReq) (int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	seeds := make([]seedModel, 0, len(req.Seeds))
	for _, seed := range req.Seeds {
		seeds = append(seeds, seedModel{
			TrackID:    seed.TrackID,
			TrackName:  seed.TrackName,
			ArtistID:   seed.ArtistID,
			ArtistName: seed.ArtistName,
		})
	}

	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO playlists (
			user_id,
			name,
			spotify_playlist_id,
			seed_playlist_id,
			seeds
		) VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING id;
	`

	var id int64
	err = tx.QueryRow(ctx, query,
		req.UserID,
		req.Name,
		req.SpotifyPlaylistID,
		req.SeedPlaylistID,
		string(seedsJSON),
	).Scan(&id)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return id, nil
}
