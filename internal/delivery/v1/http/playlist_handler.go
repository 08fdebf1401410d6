package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
)

type PlaylistHandler struct {
	playlistUsecase usecase.PlaylistUC
	logger          logger.Logger
}

func NewPlaylistHandler(playlistUsecase usecase.PlaylistUC, logger logger.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlistUsecase: playlistUsecase, logger: logger}
}

type generatePlaylistRequest struct {
	SeedPlaylistID string `json:"seed_playlist_id"`
	PlaylistName   string `json:"playlist_name"`
}

type generatePlaylistResponse struct {
	PlaylistID string `json:"playlist_id"`
	Added      int    `json:"added"`
}

// generatePlaylist
//
//	@Summary		Генерация лирически похожего плейлиста
//	@Description	Собирает сиды из исходного плейлиста, строит вектор настроения по текстам песен и создаёт новый плейлист из похожих треков
//	@Tags			playlists
//	@Accept			json
//	@Produce		json
//	@Param			Authorization		header		string					true	"Bearer токен каталога"
//	@Param			X-Spotify-User-Id	header		string					true	"Идентификатор пользователя каталога"
//	@Param			request				body		generatePlaylistRequest	true	"Параметры генерации"
//	@Success		201					{object}	generatePlaylistResponse	"Плейлист создан"
//	@Failure		400					{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		401					{object}	ErrorResponse	"Нет токена доступа"
//	@Failure		422					{object}	ErrorResponse	"Ни одного эмбеддинга по сидам"
//	@Router			/playlists/generate [post]
func (p *PlaylistHandler) generatePlaylist(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)
	spotifyUserID := strings.TrimSpace(r.Header.Get("X-Spotify-User-Id"))

	var req generatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.logger.Warnf("%d invalid request body: %s", http.StatusBadRequest, err.Error())
		WriteError(w, e.ErrPlaylistIDRequired)
		return
	}

	playlistName := strings.TrimSpace(req.PlaylistName)
	if playlistName == "" {
		playlistName = "Lyric Mix"
	}

	res, err := p.playlistUsecase.GenerateFromSeed(r.Context(),
		usecase.NewGenerateFromSeedReq(spotifyUserID, accessToken, req.SeedPlaylistID, playlistName))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, generatePlaylistResponse{
		PlaylistID: res.PlaylistID,
		Added:      res.Added,
	})
}

// listPlaylists
//
//	@Summary		Плейлисты пользователя
//	@Description	Возвращает плейлисты текущего пользователя из каталога
//	@Tags			playlists
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer токен каталога"
//	@Success		200				{array}		usecase.PlaylistInfo	"Список плейлистов"
//	@Failure		401				{object}	ErrorResponse	"Нет токена доступа"
//	@Router			/playlists [get]
func (p *PlaylistHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)

	playlists, err := p.playlistUsecase.ListPlaylists(r.Context(), &usecase.ListPlaylistsReq{AccessToken: accessToken})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, playlists)
}
