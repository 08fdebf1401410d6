package domain

// CandidateResult — результат векторного поиска до резолва в каталоге.
type CandidateResult struct {
	TrackName  string
	ArtistName string
	Similarity float32
}

func NewCandidateResult(trackName, artistName string, similarity float32) *CandidateResult {
	return &CandidateResult{
		TrackName:  trackName,
		ArtistName: artistName,
		Similarity: similarity,
	}
}
