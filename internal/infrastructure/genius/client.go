package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lyricmix/go-backend/internal/cfg"
	"github.com/lyricmix/go-backend/pkg/e"
	"github.com/lyricmix/go-backend/pkg/logger"
)

const maxSearchHits = 5

// Client добывает тексты песен: сначала поиск через API, затем фоллбэк
// на канонический slug страницы. Отсутствие лирики — штатный исход,
// а не ошибка пайплайна.
type Client struct {
	httpClient *http.Client
	cfg        *cfg.GeniusCfg
	logger     logger.Logger
}

func NewClient(httpClient *http.Client, cfg *cfg.GeniusCfg, logger logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

type searchHit struct {
	URL    string
	Title  string
	Artist string
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL           string `json:"url"`
				Path          string `json:"path"`
				Title         string `json:"title"`
				FullTitle     string `json:"full_title"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// GetLyrics ищет текст песни: пробует результаты поиска по очереди,
// затем канонический slug. Пустая строка означает, что текст не найден.
func (c *Client) GetLyrics(ctx context.Context, trackName, artistName string) (string, error) {
	title := cleanTitle(trackName)
	artist := cleanTitle(artistName)

	hits := c.searchHits(ctx, title, artist)
	for _, hit := range hits {
		if !strings.Contains(strings.ToLower(hit.URL), "/lyrics") {
			continue
		}

		lyrics := c.scrapeLyrics(ctx, hit.URL)
		if lyrics != "" {
			c.logger.Infof("genius: using %s - %s (%s)", hit.Artist, hit.Title, hit.URL)
			return lyrics, nil
		}
	}

	slugURL := strings.TrimRight(c.cfg.SiteURL, "/") + "/" + slugPath(artist, title)
	lyrics := c.scrapeLyrics(ctx, slugURL)
	if lyrics != "" {
		c.logger.Infof("genius: used canonical slug %s", slugURL)
		return lyrics, nil
	}

	c.logger.Warnf("genius: no lyrics for %s - %s after all passes", artistName, trackName)
	return "", nil
}

// searchHits выполняет два прохода поиска: название с исполнителем,
// затем только название. Ошибки поиска приводят к пустому списку.
func (c *Client) searchHits(ctx context.Context, title, artist string) []searchHit {
	const op = "genius.Client.searchHits"

	queries := []string{
		strings.TrimSpace(normText(title) + " " + normText(artist)),
		normText(title),
	}

	hits := make([]searchHit, 0, maxSearchHits)
	for _, q := range queries {
		res, status, err := c.search(ctx, q)
		if err != nil {
			c.logger.Warnf("genius: search error for q=%s: %v", q, e.Wrap(op, err))
			continue
		}

		// Заблокированный токен не лечится повтором второго прохода
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			c.logger.Warnf("genius: search forbidden/unauthorized for q=%s", q)
			return nil
		}
		if status != http.StatusOK {
			c.logger.Warnf("genius: search status %d for q=%s", status, q)
			continue
		}

		for _, hit := range res.Response.Hits {
			result := hit.Result
			if !isGoodHit(result.FullTitle, result.Path, result.URL) {
				continue
			}

			hits = append(hits, searchHit{
				URL:    result.URL,
				Title:  result.Title,
				Artist: result.PrimaryArtist.Name,
			})
			if len(hits) >= maxSearchHits {
				return hits
			}
		}
	}

	return hits
}

func (c *Client) search(ctx context.Context, query string) (*searchResponse, int, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, 0, err
	}
	c.setBrowserHeaders(req)
	if c.cfg.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ApiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var res searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, resp.StatusCode, err
	}

	return &res, resp.StatusCode, nil
}

// scrapeLyrics скачивает страницу и извлекает текст песни.
// Любая ошибка сети или пустая страница дают пустую строку.
func (c *Client) scrapeLyrics(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		c.logger.Warnf("genius: bad page url %s: %v", pageURL, err)
		return ""
	}
	c.setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("genius: fetch error %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	pageHTML, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warnf("genius: read error %v", err)
		return ""
	}

	return extractLyricsFromHTML(string(pageHTML))
}

// setBrowserHeaders выставляет браузерные заголовки: страницы лирики
// отдаются не всем клиентам.
func (c *Client) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")
}
