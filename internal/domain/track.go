package domain

// TrackRef описывает трек каталога: идентичность задаётся полем ID.
// Создаётся сборщиком сидов и резолвером кандидатов, после создания не изменяется.
type TrackRef struct {
	ID            string
	Name          string
	PrimaryArtist string
	URI           string
}

func NewTrackRef(id, name, primaryArtist, uri string) *TrackRef {
	return &TrackRef{
		ID:            id,
		Name:          name,
		PrimaryArtist: primaryArtist,
		URI:           uri,
	}
}

// SeedTrack — трек исходного плейлиста, прошедший дедупликацию сидов.
type SeedTrack struct {
	TrackID    string
	TrackName  string
	ArtistID   string
	ArtistName string
}
