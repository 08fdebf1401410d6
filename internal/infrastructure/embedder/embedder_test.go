package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc, maxRetries int) *Embedder {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewEmbedder(server.Client(), &cfg.EmbedderCfg{
		BaseURL:    server.URL,
		ApiKey:     "provider-key",
		Model:      "text-embedding-3-small",
		MaxRetries: maxRetries,
	}, logger.NewSlogLogger())
}

func TestCreateEmbedding(t *testing.T) {
	var gotAuth string
	var gotReq embeddingRequest

	em := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		var res embeddingResponse
		res.Data = append(res.Data, struct {
			Embedding []float32 `json:"embedding"`
		}{Embedding: []float32{0.1, 0.2, 0.3}})
		require.NoError(t, json.NewEncoder(w).Encode(res))
	}, 1)

	vec, err := em.CreateEmbedding(context.Background(), "some lyrics text")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer provider-key", gotAuth)
	assert.Equal(t, "text-embedding-3-small", gotReq.Model)
	assert.Equal(t, "some lyrics text", gotReq.Input)
}

func TestCreateEmbeddingRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	em := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		var res embeddingResponse
		res.Data = append(res.Data, struct {
			Embedding []float32 `json:"embedding"`
		}{Embedding: []float32{1}})
		require.NoError(t, json.NewEncoder(w).Encode(res))
	}, 3)

	vec, err := em.CreateEmbedding(context.Background(), "text")

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateEmbeddingEmptyData(t *testing.T) {
	em := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse{}))
	}, 1)

	_, err := em.CreateEmbedding(context.Background(), "text")

	require.Error(t, err)
	assert.ErrorContains(t, err, "no embedding data")
	assert.ErrorContains(t, err, "all 1 attempts failed")
}
