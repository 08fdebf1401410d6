package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/internal/domain"
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/jitter"
	"github.com/lyricmix/go-backend/pkg/logger"
)

// Client клиент каталога Spotify Web API. Токен доступа принадлежит запросу,
// а не клиенту: один экземпляр обслуживает всех пользователей.
type Client struct {
	httpClient *http.Client
	cfg        *cfg.SpotifyCfg
	logger     logger.Logger
}

func NewClient(httpClient *http.Client, cfg *cfg.SpotifyCfg, logger logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// CollectPlaylistTracks постранично собирает треки плейлиста, сохраняя порядок.
// Треки без идентификатора (локальные файлы, удалённые записи) пропускаются.
func (c *Client) CollectPlaylistTracks(ctx context.Context, accessToken, playlistID string) (*usecase.SeedCollection, error) {
	const op = "spotify.Client.CollectPlaylistTracks"

	var artistNames, artistIDs, trackIDs, trackNames []string

	nextURL := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(playlistID), c.cfg.PageLimit)

	for nextURL != "" {
		var page playlistTracksPage
		if err := c.getJSON(ctx, accessToken, nextURL, &page); err != nil {
			return nil, e.Wrap(op, err)
		}

		for _, item := range page.Items {
			track := item.Track
			if track == nil || track.ID == "" || track.Name == "" || len(track.Artists) == 0 {
				continue
			}

			artistID, artistName := primaryArtist(track)
			artistNames = append(artistNames, artistName)
			artistIDs = append(artistIDs, artistID)
			trackIDs = append(trackIDs, track.ID)
			trackNames = append(trackNames, track.Name)
		}

		if page.Next != nil {
			nextURL = *page.Next
		} else {
			nextURL = ""
		}
	}

	return usecase.NewSeedCollection(artistNames, artistIDs, trackIDs, trackNames), nil
}

// FindTrack ищет трек по названию и (опционально) исполнителю.
// Пустой результат поиска — это (nil, nil), не ошибка.
func (c *Client) FindTrack(ctx context.Context, accessToken, title, artist string) (*domain.TrackRef, error) {
	const op = "spotify.Client.FindTrack"

	query := fmt.Sprintf("track:%s", title)
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}

	searchURL := fmt.Sprintf("%s/search?q=%s&type=track&limit=1",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query))

	var res searchResponse
	if err := c.getJSON(ctx, accessToken, searchURL, &res); err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(res.Tracks.Items) == 0 {
		return nil, nil
	}

	track := res.Tracks.Items[0]
	_, artistName := primaryArtist(&track)

	return domain.NewTrackRef(track.ID, track.Name, artistName, track.URI), nil
}

// CreatePlaylist создаёт пустой плейлист и возвращает его идентификатор.
func (c *Client) CreatePlaylist(ctx context.Context, accessToken string, req *usecase.CreatePlaylistReq) (string, error) {
	const op = "spotify.Client.CreatePlaylist"

	endpoint := fmt.Sprintf("%s/users/%s/playlists",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(req.OwnerID))

	body := createPlaylistRequest{
		Name:        req.Name,
		Description: req.Description,
		Public:      req.Public,
	}

	var created playlistObject
	if err := c.postJSON(ctx, accessToken, endpoint, body, &created); err != nil {
		return "", e.Wrap(op, err)
	}

	if created.ID == "" {
		return "", e.Wrap(op, fmt.Errorf("catalog returned playlist without id"))
	}

	return created.ID, nil
}

// AddTracks добавляет треки в плейлист батчами, не превышающими лимит каталога.
func (c *Client) AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error {
	const op = "spotify.Client.AddTracks"

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += c.cfg.PageLimit {
		end := start + c.cfg.PageLimit
		if end > len(uris) {
			end = len(uris)
		}

		if err := c.postJSON(ctx, accessToken, endpoint, addTracksRequest{URIs: uris[start:end]}, nil); err != nil {
			return e.Wrap(op, err)
		}
	}

	return nil
}

// ListUserPlaylists возвращает плейлисты текущего пользователя постранично.
func (c *Client) ListUserPlaylists(ctx context.Context, accessToken string) ([]usecase.PlaylistInfo, error) {
	const op = "spotify.Client.ListUserPlaylists"

	playlists := make([]usecase.PlaylistInfo, 0)
	nextURL := fmt.Sprintf("%s/me/playlists?limit=%d", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PageLimit)

	for nextURL != "" {
		var page playlistsPage
		if err := c.getJSON(ctx, accessToken, nextURL, &page); err != nil {
			return nil, e.Wrap(op, err)
		}

		for _, item := range page.Items {
			playlists = append(playlists, usecase.PlaylistInfo{ID: item.ID, Name: item.Name})
		}

		if page.Next != nil {
			nextURL = *page.Next
		} else {
			nextURL = ""
		}
	}

	return playlists, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, rawURL string, out any) error {
	return c.doJSON(ctx, http.MethodGet, accessToken, rawURL, nil, out)
}

func (c *Client) postJSON(ctx context.Context, accessToken, rawURL string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	return c.doJSON(ctx, http.MethodPost, accessToken, rawURL, body, out)
}

// doJSON выполняет запрос с retry-логикой и экспоненциальной задержкой.
// Повторяются только 429 и 5xx; Retry-After каталога имеет приоритет над backoff.
func (c *Client) doJSON(ctx context.Context, method, accessToken, rawURL string, body []byte, out any) error {
	const (
		baseJitter = 500 * time.Millisecond
		maxJitter  = 10 * time.Second
	)

	var lastStatus int
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		status, retryAfter, err := c.doOnce(ctx, method, accessToken, rawURL, body, out)
		if err != nil {
			return err
		}
		if !retryableStatus(status) {
			if status >= http.StatusBadRequest {
				return fmt.Errorf("catalog responded with status %d", status)
			}
			return nil
		}
		lastStatus = status

		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt, jitter.DefaultJitter)
		if retryAfter > 0 {
			sleepTime = retryAfter
		}

		c.logger.Warnf("catalog request failed with status %d, retrying in %v (attempt %d)", status, sleepTime, attempt+1)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("catalog request failed after %d attempts, last status %d", c.cfg.MaxRetries, lastStatus)
}

func (c *Client) doOnce(ctx context.Context, method, accessToken, rawURL string, body []byte, out any) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if retryableStatus(resp.StatusCode) || resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, parseRetryAfter(resp), nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, 0, err
		}
	}

	return resp.StatusCode, 0, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// parseRetryAfter читает заголовок Retry-After (секунды или HTTP-дата).
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

// primaryArtist возвращает первого исполнителя трека.
func primaryArtist(track *trackObject) (id, name string) {
	if len(track.Artists) == 0 {
		return "", ""
	}

	return track.Artists[0].ID, track.Artists[0].Name
}
