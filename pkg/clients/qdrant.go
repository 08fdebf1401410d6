package clients

import (
	"context"
	"fmt"

	"github.com/jimlawless/whereami"
	config "github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantClients держит пару клиентов Qdrant: ключ чтения используется для
// поиска, ключ записи — для upsert'ов. Write равен nil, если ключ записи
// не сконфигурирован.
type QdrantClients struct {
	Read  *qdrant.Client
	Write *qdrant.Client
	cfg   *config.QdrantCfg
}

func NewQdrantClients(cfg *config.QdrantCfg) (*QdrantClients, error) {
	readClient, err := newClient(cfg, cfg.ReadApiKey)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var writeClient *qdrant.Client
	if cfg.WriteApiKey != "" {
		writeClient, err = newClient(cfg, cfg.WriteApiKey)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return &QdrantClients{
		Read:  readClient,
		Write: writeClient,
		cfg:   cfg,
	}, nil
}

func newClient(cfg *config.QdrantCfg, apiKey string) (*qdrant.Client, error) {
	return qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: apiKey,
		UseTLS: cfg.UseTLS,
	})
}

// EnsureCollection создаёт коллекцию эмбеддингов, если её ещё нет.
// Требует клиента записи.
func EnsureCollection(ctx context.Context, clients *QdrantClients) error {
	if clients.Write == nil {
		return nil
	}

	exists, err := clients.Write.CollectionExists(ctx, clients.cfg.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		if err := clients.Write.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: clients.cfg.CollectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     clients.cfg.VectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	return nil
}
