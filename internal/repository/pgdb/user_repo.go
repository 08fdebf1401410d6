package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/tr"
)

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		pool: pool,
	}
}

// GetIDBySpotifyID возвращает внутренний идентификатор пользователя по его
// Spotify ID. Незарегистрированный пользователь — это nil, не ошибка:
// плейлисты без владельца в базе сохраняются анонимно.
func (u *UserRepo) GetIDBySpotifyID(ctx context.Context, spotifyID string) (*int64, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id
		FROM users
		WHERE spotify_id = $1
	`

	var id int64
	err = tx.QueryRow(ctx, query, spotifyID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &id, nil
}
