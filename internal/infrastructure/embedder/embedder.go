package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/jitter"
	"github.com/lyricmix/go-backend/pkg/logger"
)

// Embedder клиент внешнего провайдера эмбеддингов (OpenAI-совместимый API).
type Embedder struct {
	httpClient *http.Client
	cfg        *cfg.EmbedderCfg
	logger     logger.Logger
}

func NewEmbedder(httpClient *http.Client, cfg *cfg.EmbedderCfg, logger logger.Logger) *Embedder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Embedder{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// CreateEmbedding векторизует текст с retry-логикой и экспоненциальной задержкой.
func (m *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	const (
		op         = "Embedder.CreateEmbedding"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	for attempt := 0; attempt < m.cfg.MaxRetries; attempt++ {
		vector, err := m.createOnce(ctx, text)
		if err == nil {
			return vector, nil
		}

		if attempt == m.cfg.MaxRetries-1 {
			return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %w", m.cfg.MaxRetries, err))
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		m.logger.Warnf("embedding failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("unreachable"))
}

func (m *Embedder) createOnce(ctx context.Context, text string) ([]float32, error) {
	const op = "Embedder.createOnce"

	body, err := json.Marshal(embeddingRequest{
		Model: m.cfg.Model,
		Input: text,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	endpoint := m.cfg.BaseURL + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("provider responded with status %d", resp.StatusCode))
	}

	var res embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(res.Data) == 0 || len(res.Data[0].Embedding) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("provider returned no embedding data"))
	}

	return res.Data[0].Embedding, nil
}
