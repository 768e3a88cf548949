package series

import (
	"github.com/hondanabooks/hondana/pkg/auth"
	"github.com/hondanabooks/hondana/pkg/books"
	"github.com/hondanabooks/hondana/pkg/collections"
	"github.com/hondanabooks/hondana/pkg/config"
	"github.com/hondanabooks/hondana/pkg/events"
	"github.com/hondanabooks/hondana/pkg/jobs"
	"github.com/hondanabooks/hondana/pkg/libraries"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers series routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware, publisher events.Publisher) {
	seriesService := NewService(
		db,
		books.NewService(db),
		libraries.NewService(db),
		collections.NewService(db),
		jobs.NewService(db),
		publisher,
	)

	h := &handler{
		cfg:           cfg,
		seriesService: seriesService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/books", h.addBooks)
	g.POST("/:id/sort", h.sortBooks)
	g.GET("/:id/cover", h.cover)
	g.POST("/:id/thumbnail", h.uploadThumbnail)
	g.POST("/:id/read-progress", h.markRead, authMiddleware.Authenticate)
	g.DELETE("/:id/read-progress", h.deleteReadProgress, authMiddleware.Authenticate)
}
