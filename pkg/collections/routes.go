package collections

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers collection routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		collectionService: NewService(db),
	}

	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.POST("/:id/series", h.addSeries)
}
