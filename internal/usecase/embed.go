package usecase

import (
	"context"

	"github.com/lyricmix/go-backend/pkg/logger"
)

// EmbeddingGenerator превращает текст лирики в один вектор фиксированной размерности:
// текст режется на чанки под лимит провайдера, каждый чанк векторизуется отдельно,
// итог — покомпонентное среднее векторов чанков.
type EmbeddingGenerator struct {
	provider      EmbeddingProvider
	maxChunkChars int
	minTextChars  int
	logger        logger.Logger
}

func NewEmbeddingGenerator(provider EmbeddingProvider, maxChunkChars, minTextChars int, logger logger.Logger) *EmbeddingGenerator {
	return &EmbeddingGenerator{
		provider:      provider,
		maxChunkChars: maxChunkChars,
		minTextChars:  minTextChars,
		logger:        logger,
	}
}

// Embed возвращает вектор текста либо nil, если текст слишком короткий
// или ни один чанк не удалось векторизовать. Ошибка отдельного чанка
// логируется и не прерывает обработку остальных.
func (g *EmbeddingGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	runes := []rune(text)
	if len(runes) < g.minTextChars {
		return nil, nil
	}

	chunks := splitChunks(runes, g.maxChunkChars)

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := g.provider.CreateEmbedding(ctx, chunk)
		if err != nil {
			g.logger.Warnf("embedding chunk %d/%d failed: %v", i+1, len(chunks), err)
			continue
		}
		if len(vec) == 0 {
			g.logger.Warnf("embedding chunk %d/%d returned empty vector", i+1, len(chunks))
			continue
		}
		vectors = append(vectors, vec)
	}

	if len(vectors) == 0 {
		return nil, nil
	}

	return meanVectors(vectors), nil
}

// splitChunks режет текст на чанки фиксированной длины в рунах.
// Границы чанков детерминированы для данной длины текста и maxChunkChars.
func splitChunks(runes []rune, maxChunkChars int) []string {
	chunks := make([]string, 0, len(runes)/maxChunkChars+1)
	for i := 0; i < len(runes); i += maxChunkChars {
		end := i + maxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}

	return chunks
}

// meanVectors считает покомпонентное среднее арифметическое.
// Векторы с размерностью, отличной от первого, пропускаются.
func meanVectors(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	count := 0
	for _, vec := range vectors {
		if len(vec) != dim {
			continue
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
		count++
	}

	mean := make([]float32, dim)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(count))
	}

	return mean
}
