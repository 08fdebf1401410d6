package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет эмбеддинг лирики одного трека
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewPayload формирует payload записи эмбеддинга. Полный текст лирики
// в хранилище не попадает: сохраняется только сниппет ограниченной длины.
func NewPayload(trackID, trackName, artistName, lyricsSnippet string) Payload {
	return Payload{
		"track_id":    trackID,
		"track_name":  trackName,
		"artist_name": artistName,
		"lyrics":      lyricsSnippet,
		"created_at":  time.Now().UTC().UnixNano(),
	}
}
