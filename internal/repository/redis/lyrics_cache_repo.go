package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/clients"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
	r "github.com/redis/go-redis/v9"
)

// LyricsCacheRepo кэширует тексты песен, чтобы не ходить к провайдеру лирики
// за одним и тем же треком при каждой генерации.
type LyricsCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewLyricsCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *LyricsCacheRepo {
	return &LyricsCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetLyrics возвращает закэшированный текст или пустую строку при промахе.
func (l *LyricsCacheRepo) GetLyrics(ctx context.Context, trackName, artistName string) (string, error) {
	lyrics, err := l.client.Client.Get(ctx, l.lyricsKey(trackName, artistName)).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return "", nil
		}

		l.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return lyrics, nil
}

// SetLyrics кэширует текст с заданным TTL. Ошибка записи логируется и не
// возвращается: кэш — это ускорение, не источник истины.
func (l *LyricsCacheRepo) SetLyrics(ctx context.Context, trackName, artistName, lyrics string) error {
	if lyrics == "" {
		return nil
	}

	key := l.lyricsKey(trackName, artistName)
	if err := l.client.Client.Set(ctx, key, lyrics, l.cfg.LyricsTTL).Err(); err != nil {
		l.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// lyricsKey формирует Redis-ключ трека, нечувствительный к регистру.
func (l *LyricsCacheRepo) lyricsKey(trackName, artistName string) string {
	return fmt.Sprintf("lyrics:%s:%s",
		strings.ToLower(strings.TrimSpace(artistName)),
		strings.ToLower(strings.TrimSpace(trackName)),
	)
}
