package qdrant

import (
	"context"

	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/internal/domain"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

// EmbeddingRepo репозиторий эмбеддингов лирики в Qdrant. Чтение и запись
// разведены по разным клиентам: writeClient может отсутствовать, если
// сервис сконфигурирован только ключом чтения.
type EmbeddingRepo struct {
	readClient  *qdrant.Client
	writeClient *qdrant.Client
	cfg         *cfg.QdrantCfg
}

func NewEmbeddingRepo(readClient, writeClient *qdrant.Client, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		readClient:  readClient,
		writeClient: writeClient,
		cfg:         cfg,
	}
}

// Upsert сохраняет или перезаписывает векторы в коллекции. Без клиента записи
// операция завершается ошибкой сразу, ничего не отправляя.
func (q *EmbeddingRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	if q.writeClient == nil {
		return e.Wrap(whereami.WhereAmI(), e.ErrWriteCredentialsMissing)
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		if len(vector.Vector) == 0 {
			continue
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vector.ID),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(vector.Payload),
		})
	}

	if len(points) == 0 {
		return nil
	}

	_, err := q.writeClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// FindSimilar выполняет поиск ближайших соседей по косинусной близости.
func (q *EmbeddingRepo) FindSimilar(ctx context.Context, req *usecase.FindSimilarReq) ([]domain.CandidateResult, error) {
	if len(req.Vector) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmptyQueryVector)
	}

	limit := uint64(req.TopN)
	query := &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(req.ExcludeTrackIDs) > 0 {
		query.Filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatchKeywords("track_id", req.ExcludeTrackIDs...),
			},
		}
	}

	points, err := q.readClient.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toCandidates(points), nil
}

// toCandidates переводит точки Qdrant в доменные результаты поиска.
// Точки без названия трека в payload отбрасываются.
func toCandidates(points []*qdrant.ScoredPoint) []domain.CandidateResult {
	candidates := make([]domain.CandidateResult, 0, len(points))
	for _, point := range points {
		trackName := stringField(point.Payload, "track_name")
		if trackName == "" {
			continue
		}

		candidates = append(candidates, *domain.NewCandidateResult(
			trackName,
			stringField(point.Payload, "artist_name"),
			point.Score,
		))
	}

	return candidates
}

func stringField(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}

	return value.GetStringValue()
}
