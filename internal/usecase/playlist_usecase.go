package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/internal/domain"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
)

const playlistDescription = "Lyrics-aware mix seeded from your playlist"

// PlaylistUseCase реализует пайплайн генерации лирически похожего плейлиста:
// сбор сидов, дедупликация, лирика, эмбеддинги, векторный поиск,
// резолв кандидатов и материализация нового плейлиста.
type PlaylistUseCase struct {
	catalog       CatalogInfra
	lyrics        LyricsInfra
	generator     *EmbeddingGenerator
	embeddingRepo EmbeddingRepository
	userRepo      UserRepository
	playlistRepo  PlaylistRepository
	outboxRepo    OutboxRepository
	lyricsCache   LyricsCacheRepository
	dbPool        transaction.Transactional
	similarity    TitleSimilarity
	cfg           *cfg.RecommenderCfg
	logger        logger.Logger
}

func NewPlaylistUC(
	catalog CatalogInfra,
	lyrics LyricsInfra,
	generator *EmbeddingGenerator,
	embeddingRepo EmbeddingRepository,
	userRepo UserRepository,
	playlistRepo PlaylistRepository,
	outboxRepo OutboxRepository,
	lyricsCache LyricsCacheRepository,
	dbPool transaction.Transactional,
	similarity TitleSimilarity,
	cfg *cfg.RecommenderCfg,
	logger logger.Logger,
) *PlaylistUseCase {
	if similarity == nil {
		similarity = DiffRatio
	}

	return &PlaylistUseCase{
		catalog:       catalog,
		lyrics:        lyrics,
		generator:     generator,
		embeddingRepo: embeddingRepo,
		userRepo:      userRepo,
		playlistRepo:  playlistRepo,
		outboxRepo:    outboxRepo,
		lyricsCache:   lyricsCache,
		dbPool:        dbPool,
		similarity:    similarity,
		cfg:           cfg,
		logger:        logger,
	}
}

// GenerateFromSeed выполняет полный прогон пайплайна. Единственное фатальное
// условие после сбора сидов — ни одного построенного эмбеддинга (e.ErrNoEmbeddings);
// остальные сбои по отдельным трекам логируются и пропускаются.
func (p *PlaylistUseCase) GenerateFromSeed(ctx context.Context, req *GenerateFromSeedReq) (*GenerateFromSeedRes, error) {
	const op = "PlaylistUseCase.GenerateFromSeed"

	if err := p.validateRequest(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Сбор сидов из исходного плейлиста
	seeds, err := p.catalog.CollectPlaylistTracks(ctx, req.AccessToken, req.SeedPlaylistID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	p.logger.Infof("gen: seeds collected | playlist=%s tracks=%d", req.SeedPlaylistID, seeds.Len())

	// Дедупликация сидов: тот же исполнитель и почти то же название
	uniqueSeeds, seedSigs := p.dedupSeeds(seeds)
	p.logger.Infof("gen: unique seeds | count=%d", len(uniqueSeeds))

	// Лирика и эмбеддинги по каждому уникальному сиду
	vectors, err := p.embedSeeds(ctx, uniqueSeeds)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(vectors) == 0 {
		p.logger.Errorf(e.ErrNoEmbeddings, "gen: abort | playlist=%s", req.SeedPlaylistID)
		return nil, e.Wrap(op, e.ErrNoEmbeddings)
	}

	// Усреднение в единый вектор настроения плейлиста
	moodVector := meanVectors(vectors)

	// Векторный поиск похожих песен
	candidates := p.searchSimilar(ctx, moodVector, seeds)
	p.logger.Infof("gen: similar songs | count=%d", len(candidates))

	// Дедупликация кандидатов против сидов и уже принятых + резолв в каталоге
	trackURIs := p.resolveCandidates(ctx, req.AccessToken, candidates, p.allSeedSignatures(seeds, seedSigs))
	p.logger.Infof("gen: candidate uris | count=%d", len(trackURIs))

	// Материализация нового плейлиста
	playlistID, err := p.catalog.CreatePlaylist(ctx, req.AccessToken,
		NewCreatePlaylistReq(req.SpotifyUserID, req.PlaylistName, playlistDescription, false))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	added := 0
	if len(trackURIs) > 0 {
		if err := p.catalog.AddTracks(ctx, req.AccessToken, playlistID, trackURIs); err != nil {
			return nil, e.Wrap(op, err)
		}
		added = len(trackURIs)
	}
	p.logger.Infof("gen: created | id=%s added=%d", playlistID, added)

	// Метаданные сохраняются best-effort: сбой не отменяет успешную генерацию
	if err := p.persistMetadata(ctx, req, playlistID, uniqueSeeds); err != nil {
		p.logger.Warnf("gen: metadata persist failed: %v", e.Wrap(op, err))
	}

	return NewGenerateFromSeedRes(playlistID, added), nil
}

// ListPlaylists возвращает плейлисты пользователя из каталога.
func (p *PlaylistUseCase) ListPlaylists(ctx context.Context, req *ListPlaylistsReq) ([]PlaylistInfo, error) {
	const op = "PlaylistUseCase.ListPlaylists"

	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, e.Wrap(op, e.ErrAccessTokenRequired)
	}

	playlists, err := p.catalog.ListUserPlaylists(ctx, req.AccessToken)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return playlists, nil
}

// dedupSeeds отбрасывает почти-дубликаты, сохраняя исходный порядок выживших.
func (p *PlaylistUseCase) dedupSeeds(seeds *SeedCollection) ([]domain.SeedTrack, SignatureSet) {
	sigs := make(SignatureSet, seeds.Len())
	unique := make([]domain.SeedTrack, 0, seeds.Len())

	for i := 0; i < seeds.Len(); i++ {
		name := seeds.TrackNames[i]
		artist := seeds.ArtistNames[i]
		if IsDuplicate(name, artist, sigs, p.cfg.DedupThreshold, p.similarity) {
			p.logger.Infof("gen: skip duplicate seed | %s - %s", artist, name)
			continue
		}
		sigs.Add(NewDedupSignature(artist, name))
		unique = append(unique, domain.SeedTrack{
			TrackID:    seeds.TrackIDs[i],
			TrackName:  name,
			ArtistID:   seeds.ArtistIDs[i],
			ArtistName: artist,
		})
	}

	return unique, sigs
}

// embedSeeds запрашивает лирику и строит эмбеддинг по каждому сиду.
// Отсутствие лирики или неудача векторизации — штатный пропуск трека.
func (p *PlaylistUseCase) embedSeeds(ctx context.Context, seeds []domain.SeedTrack) ([][]float32, error) {
	vectors := make([][]float32, 0, len(seeds))

	for i, seed := range seeds {
		p.logger.Infof("gen: [%d/%d] lyrics | %s - %s", i+1, len(seeds), seed.ArtistName, seed.TrackName)

		lyrics := p.fetchLyrics(ctx, seed)
		if lyrics == "" {
			p.logger.Warnf("gen: no lyrics | %s - %s", seed.ArtistName, seed.TrackName)
			continue
		}

		vec, err := p.generator.Embed(ctx, lyrics)
		if err != nil {
			p.logger.Warnf("gen: embedding failed | %s - %s: %v", seed.ArtistName, seed.TrackName, err)
			continue
		}
		if vec == nil {
			p.logger.Warnf("gen: skip embedding | %s - %s: text too short or all chunks failed", seed.ArtistName, seed.TrackName)
			continue
		}

		if err := p.storeEmbedding(ctx, seed, lyrics, vec); err != nil {
			// Отсутствие прав записи — ошибка конфигурации, она фатальна сразу
			if errors.Is(err, e.ErrWriteCredentialsMissing) {
				return nil, err
			}
			p.logger.Warnf("gen: embedding store failed | %s: %v", seed.TrackID, err)
		}

		vectors = append(vectors, vec)
		p.logger.Infof("gen: embedded | total=%d", len(vectors))
	}

	return vectors, nil
}

// fetchLyrics читает лирику из кэша, при промахе идёт к провайдеру
// и дописывает результат в кэш best-effort.
func (p *PlaylistUseCase) fetchLyrics(ctx context.Context, seed domain.SeedTrack) string {
	cached, err := p.lyricsCache.GetLyrics(ctx, seed.TrackName, seed.ArtistName)
	if err != nil {
		p.logger.Warnf("gen: lyrics cache read failed: %v", err)
	}
	if cached != "" {
		return cached
	}

	lyrics, err := p.lyrics.GetLyrics(ctx, seed.TrackName, seed.ArtistName)
	if err != nil {
		p.logger.Warnf("gen: lyrics fetch failed | %s - %s: %v", seed.ArtistName, seed.TrackName, err)
		return ""
	}

	if lyrics != "" {
		if err := p.lyricsCache.SetLyrics(ctx, seed.TrackName, seed.ArtistName, lyrics); err != nil {
			p.logger.Warnf("gen: lyrics cache write failed: %v", err)
		}
	}

	return lyrics
}

// storeEmbedding сохраняет запись эмбеддинга с перезаписью по track_id.
func (p *PlaylistUseCase) storeEmbedding(ctx context.Context, seed domain.SeedTrack, lyrics string, vec []float32) error {
	snippet := lyrics
	if runes := []rune(snippet); len(runes) > p.cfg.SnippetMaxChars {
		snippet = string(runes[:p.cfg.SnippetMaxChars])
	}

	payload := domain.NewPayload(seed.TrackID, seed.TrackName, seed.ArtistName, snippet)
	embedding := domain.NewEmbedding(pointID(seed.TrackID), vec, payload)

	return p.embeddingRepo.Upsert(ctx, []domain.Embedding{*embedding})
}

// searchSimilar выполняет векторный поиск; любая ошибка поиска даёт пустой
// список кандидатов, а не отказ пайплайна.
func (p *PlaylistUseCase) searchSimilar(ctx context.Context, moodVector []float32, seeds *SeedCollection) []domain.CandidateResult {
	var exclude []string
	if p.cfg.ExcludeSeedByID {
		exclude = seeds.TrackIDs
	}

	candidates, err := p.embeddingRepo.FindSimilar(ctx, NewFindSimilarReq(moodVector, p.cfg.SearchTopN, exclude))
	if err != nil {
		p.logger.Warnf("gen: vector search failed: %v", err)
		return nil
	}

	return candidates
}

// allSeedSignatures строит сигнатуры всех исходных сидов (включая отброшенные
// дубликаты) плюс уже накопленные: кандидат не должен совпасть ни с одним
// треком исходного плейлиста.
func (p *PlaylistUseCase) allSeedSignatures(seeds *SeedCollection, seedSigs SignatureSet) SignatureSet {
	sigs := make(SignatureSet, seeds.Len()+len(seedSigs))
	for sig := range seedSigs {
		sigs.Add(sig)
	}
	for i := 0; i < seeds.Len(); i++ {
		sigs.Add(NewDedupSignature(seeds.ArtistNames[i], seeds.TrackNames[i]))
	}

	return sigs
}

// resolveCandidates идёт по кандидатам в порядке убывания похожести,
// отсекает дубликаты и резолвит выживших в играбельные URI каталога:
// сначала точный запрос название+исполнитель, затем запрос только по названию.
// Нерезолвящийся кандидат пропускается молча.
func (p *PlaylistUseCase) resolveCandidates(ctx context.Context, accessToken string, candidates []domain.CandidateResult, sigs SignatureSet) []string {
	uris := make([]string, 0, len(candidates))

	for _, cand := range candidates {
		if len(uris) >= p.cfg.MaxPlaylistSize {
			break
		}

		if IsDuplicate(cand.TrackName, cand.ArtistName, sigs, p.cfg.DedupThreshold, p.similarity) {
			p.logger.Infof("gen: skip duplicate rec | %s - %s", cand.ArtistName, cand.TrackName)
			continue
		}

		track, err := p.catalog.FindTrack(ctx, accessToken, cand.TrackName, cand.ArtistName)
		if err != nil {
			p.logger.Warnf("gen: track search failed | %s - %s: %v", cand.ArtistName, cand.TrackName, err)
			continue
		}
		if track == nil {
			track, err = p.catalog.FindTrack(ctx, accessToken, cand.TrackName, "")
			if err != nil {
				p.logger.Warnf("gen: fallback track search failed | %s: %v", cand.TrackName, err)
				continue
			}
		}
		if track == nil {
			continue
		}

		uris = append(uris, track.URI)
		sigs.Add(NewDedupSignature(cand.ArtistName, cand.TrackName))
	}

	return uris
}

// persistMetadata записывает связь нового плейлиста с сидами и событие outbox
// в одной транзакции.
func (p *PlaylistUseCase) persistMetadata(ctx context.Context, req *GenerateFromSeedReq, playlistID string, seeds []domain.SeedTrack) error {
	const op = "PlaylistUseCase.persistMetadata"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	userID, err := p.userRepo.GetIDBySpotifyID(ctx, req.SpotifyUserID)
	if err != nil {
		return e.Wrap(op, err)
	}

	_, err = p.playlistRepo.Insert(ctx, &SavePlaylistReq{
		UserID:            userID,
		Name:              req.PlaylistName,
		SpotifyPlaylistID: playlistID,
		SeedPlaylistID:    req.SeedPlaylistID,
		Seeds:             seeds,
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	event, err := newPlaylistCreatedEvent(req, playlistID, seeds)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err = p.outboxRepo.Insert(ctx, event); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (p *PlaylistUseCase) validateRequest(req *GenerateFromSeedReq) error {
	if strings.TrimSpace(req.SeedPlaylistID) == "" {
		return e.ErrPlaylistIDRequired
	}

	if strings.TrimSpace(req.AccessToken) == "" {
		return e.ErrAccessTokenRequired
	}

	if strings.TrimSpace(req.SpotifyUserID) == "" {
		return e.ErrUserIDRequired
	}

	return nil
}

// pointID детерминированно выводит идентификатор точки хранилища из track_id,
// чтобы повторный upsert того же трека перезаписывал прежнюю запись.
func pointID(trackID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trackID)).String()
}

type playlistCreatedPayload struct {
	EventID           string    `json:"event_id"`
	SpotifyUserID     string    `json:"spotify_user_id"`
	SpotifyPlaylistID string    `json:"spotify_playlist_id"`
	SeedPlaylistID    string    `json:"seed_playlist_id"`
	PlaylistName      string    `json:"playlist_name"`
	SeedArtists       []string  `json:"seed_artists"`
	CreatedAt         time.Time `json:"created_at"`
}

func newPlaylistCreatedEvent(req *GenerateFromSeedReq, playlistID string, seeds []domain.SeedTrack) (*OutboxEvent, error) {
	artists := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		artists = append(artists, seed.ArtistName)
	}

	eventID := uuid.NewString()
	createdAt := time.Now().UTC()

	payload, err := json.Marshal(playlistCreatedPayload{
		EventID:           eventID,
		SpotifyUserID:     req.SpotifyUserID,
		SpotifyPlaylistID: playlistID,
		SeedPlaylistID:    req.SeedPlaylistID,
		PlaylistName:      req.PlaylistName,
		SeedArtists:       artists,
		CreatedAt:         createdAt,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: "playlist.created",
		Payload:   payload,
		CreatedAt: createdAt,
	}, nil
}
