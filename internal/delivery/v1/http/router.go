package http

import (
	"github.com/go-chi/chi/v5"
	_ "github.com/lyricmix/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/lyricmix/go-backend/internal/usecase"
	"github.com/lyricmix/go-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(plUC usecase.PlaylistUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		plHandler := NewPlaylistHandler(plUC, r.logger)
		registerPlaylistRoutes(v1, plHandler)
	})
}

func registerPlaylistRoutes(router chi.Router, plHandler *PlaylistHandler) {
	router.Route("/playlists", func(pl chi.Router) {
		pl.Get("/", plHandler.listPlaylists)
		pl.Post("/generate", plHandler.generatePlaylist)
	})
}
