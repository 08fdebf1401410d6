package spotify

// Wire-модели ответов каталога. Поля ограничены тем, что реально читает пайплайн.

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type trackObject struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	URI     string         `json:"uri"`
	Artists []artistObject `json:"artists"`
}

type playlistItem struct {
	Track *trackObject `json:"track"`
}

type playlistTracksPage struct {
	Items []playlistItem `json:"items"`
	Next  *string        `json:"next"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackObject `json:"items"`
	} `json:"tracks"`
}

type playlistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type playlistsPage struct {
	Items []playlistObject `json:"items"`
	Next  *string          `json:"next"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}
