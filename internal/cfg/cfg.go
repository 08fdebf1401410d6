package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
)

type Config struct {
	Http        *HTTPConfig
	Db          *PGDBCfg
	Qdrant      *QdrantCfg
	Redis       *RedisCfg
	Spotify     *SpotifyCfg
	Genius      *GeniusCfg
	Embedder    *EmbedderCfg
	Kafka       *KafkaCfg
	Recommender *RecommenderCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Host           string
	Port           int
	ReadApiKey     string
	WriteApiKey    string // пустое значение означает, что запись в хранилище недоступна
	CollectionName string
	UseTLS         bool
	VectorSize     uint64
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	LyricsTTL   time.Duration
}

type SpotifyCfg struct {
	BaseURL    string
	MaxRetries int
	PageLimit  int
}

type GeniusCfg struct {
	BaseURL  string
	SiteURL  string
	ApiToken string
	Timeout  time.Duration
}

type EmbedderCfg struct {
	BaseURL       string
	ApiKey        string
	Model         string
	MaxRetries    int
	MaxChunkChars int
	MinTextChars  int
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type RecommenderCfg struct {
	DedupThreshold  float64
	SearchTopN      int
	MaxPlaylistSize int
	ExcludeSeedByID bool
	SnippetMaxChars int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedder, err := loadEmbedderCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommender, err := loadRecommenderCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:        http,
		Db:          db,
		Qdrant:      qdrant,
		Redis:       redis,
		Spotify:     loadSpotifyCfg(),
		Genius:      loadGeniusCfg(log),
		Embedder:    embedder,
		Kafka:       kafka,
		Recommender: recommender,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

// loadQdrantCfg загружает конфигурацию Qdrant. Ключ чтения обязателен,
// ключ записи опционален: без него пайплайн не сможет сохранять новые эмбеддинги.
func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "1536" // text-embedding-3-small
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:           getEnv("QDRANT_HOST"),
		Port:           port,
		ReadApiKey:     getEnv("QDRANT_READ_API_KEY"),
		WriteApiKey:    getEnv("QDRANT_WRITE_API_KEY"),
		CollectionName: getEnvOrDefault("COLLECTION_NAME", "song_embeddings"),
		UseTLS:         useTLS,
		VectorSize:     vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultLyricsTTL    = 24 * time.Hour
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	lyricsTTL, err := parseDurationEnv("LYRICS_TTL", defaultLyricsTTL)
	if err != nil {
		log.Errorf(err, "invalid LYRICS_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		LyricsTTL:   lyricsTTL,
	}, nil
}

func loadSpotifyCfg() *SpotifyCfg {
	const (
		defaultBaseURL    = "https://api.spotify.com/v1"
		defaultMaxRetries = 3
		defaultPageLimit  = 100
	)

	return &SpotifyCfg{
		BaseURL:    getEnvOrDefault("SPOTIFY_API_BASE_URL", defaultBaseURL),
		MaxRetries: defaultMaxRetries,
		PageLimit:  defaultPageLimit,
	}
}

func loadGeniusCfg(log logger.Logger) *GeniusCfg {
	const (
		defaultBaseURL = "https://api.genius.com"
		defaultSiteURL = "https://genius.com"
		defaultTimeout = 12 * time.Second
	)

	token := getEnv("GENIUS_API_KEY")
	if token == "" {
		log.Warnf("GENIUS_API_KEY is not set, lyrics lookup will rely on canonical slugs only")
	}

	return &GeniusCfg{
		BaseURL:  getEnvOrDefault("GENIUS_API_BASE_URL", defaultBaseURL),
		SiteURL:  getEnvOrDefault("GENIUS_SITE_URL", defaultSiteURL),
		ApiToken: token,
		Timeout:  defaultTimeout,
	}
}

func loadEmbedderCfg() (*EmbedderCfg, error) {
	const (
		defaultBaseURL       = "https://api.openai.com/v1"
		defaultModel         = "text-embedding-3-small"
		defaultMaxRetries    = 3
		defaultMaxChunkChars = 20000
		defaultMinTextChars  = 50
	)

	apiKey := getEnv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	maxChunkChars, err := parseIntEnv("EMBEDDER_MAX_CHUNK_CHARS", defaultMaxChunkChars)
	if err != nil {
		return nil, e.Wrap("EMBEDDER_MAX_CHUNK_CHARS", err)
	}

	return &EmbedderCfg{
		BaseURL:       getEnvOrDefault("EMBEDDER_BASE_URL", defaultBaseURL),
		ApiKey:        apiKey,
		Model:         getEnvOrDefault("EMBEDDER_MODEL", defaultModel),
		MaxRetries:    defaultMaxRetries,
		MaxChunkChars: maxChunkChars,
		MinTextChars:  defaultMinTextChars,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadRecommenderCfg() (*RecommenderCfg, error) {
	const (
		defaultDedupThreshold  = "0.90"
		defaultSearchTopN      = 50
		defaultMaxPlaylistSize = 100
		defaultSnippetMaxChars = 240
	)

	threshold, err := strconv.ParseFloat(getEnvOrDefault("DEDUP_THRESHOLD", defaultDedupThreshold), 64)
	if err != nil {
		return nil, e.Wrap("DEDUP_THRESHOLD", err)
	}

	excludeSeeds, err := strconv.ParseBool(getEnvOrDefault("EXCLUDE_SEED_TRACKS", "true"))
	if err != nil {
		return nil, e.Wrap("EXCLUDE_SEED_TRACKS", err)
	}

	return &RecommenderCfg{
		DedupThreshold:  threshold,
		SearchTopN:      defaultSearchTopN,
		MaxPlaylistSize: defaultMaxPlaylistSize,
		ExcludeSeedByID: excludeSeeds,
		SnippetMaxChars: defaultSnippetMaxChars,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
