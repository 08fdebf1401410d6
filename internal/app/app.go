package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	config "github.com/lyricmix/go-backend/internal/cfg"
	v1Http "github.com/lyricmix/go-backend/internal/delivery/v1/http"
	"github.com/lyricmix/go-backend/internal/infrastructure/embedder"
	"github.com/lyricmix/go-backend/internal/infrastructure/genius"
	kafkaInfra "github.com/lyricmix/go-backend/internal/infrastructure/kafka"
	"github.com/lyricmix/go-backend/internal/infrastructure/spotify"
	"github.com/lyricmix/go-backend/internal/repository/pgdb"
	qdrantRepo "github.com/lyricmix/go-backend/internal/repository/qdrant"
	redisRepo "github.com/lyricmix/go-backend/internal/repository/redis"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/clients"
	"github.com/lyricmix/go-backend/pkg/closer"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
	"github.com/lyricmix/go-backend/pkg/postgres"
)

const (
	shutdownTimeout = 10 * time.Second
	ensureTimeout   = 10 * time.Second
)

// App собирает зависимости сервиса и управляет их жизненным циклом.
type App struct {
	cfg          *config.Config
	logger       logger.Logger
	httpSrv      *v1Http.Server
	outboxWorker *kafkaInfra.OutboxWorker
	closer       *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	c := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	qdrantClients, err := clients.NewQdrantClients(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), ensureTimeout)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClients); err != nil {
		qdrantCancel()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCancel()
	c.Add(func(ctx context.Context) error {
		if err := qdrantClients.Read.Close(); err != nil {
			return err
		}
		if qdrantClients.Write != nil {
			return qdrantClients.Write.Close()
		}
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	embeddingRepo := qdrantRepo.NewEmbeddingRepo(qdrantClients.Read, qdrantClients.Write, cfg.Qdrant)
	userRepo := pgdb.NewUserRepo(db.Pool)
	playlistRepo := pgdb.NewPlaylistRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)
	lyricsCache := redisRepo.NewLyricsCacheRepo(redisClient, cfg.Redis, log)

	catalog := spotify.NewClient(nil, cfg.Spotify, log)
	lyrics := genius.NewClient(nil, cfg.Genius, log)
	provider := embedder.NewEmbedder(nil, cfg.Embedder, log)
	generator := usecase.NewEmbeddingGenerator(provider, cfg.Embedder.MaxChunkChars, cfg.Embedder.MinTextChars, log)

	producer, err := kafkaInfra.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(ensureTimeout); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	outboxWorker := kafkaInfra.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	playlistUC := usecase.NewPlaylistUC(
		catalog,
		lyrics,
		generator,
		embeddingRepo,
		userRepo,
		playlistRepo,
		outboxRepo,
		lyricsCache,
		db.Pool,
		nil,
		cfg.Recommender,
		log,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(playlistUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:          cfg,
		logger:       log,
		httpSrv:      httpSrv,
		outboxWorker: outboxWorker,
		closer:       c,
	}, nil
}

// Run запускает HTTP-сервер и outbox-воркер, блокируется до сигнала
// завершения или фатальной ошибки сервера.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	a.outboxWorker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	workerCancel()
	a.outboxWorker.Stop()
	a.logger.Infof("Outbox worker stopped")

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resource shutdown error")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
