package users

import (
	"github.com/hondanabooks/hondana/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		userService: NewService(db),
	}

	g := e.Group("/users")
	g.POST("", h.create, authMiddleware.AuthenticateOptional)
	g.GET("", h.list, authMiddleware.Authenticate)
	g.GET("/:id", h.retrieve, authMiddleware.Authenticate)
}
