package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hondanabooks/hondana/pkg/auth"
	"github.com/hondanabooks/hondana/pkg/binder"
	"github.com/hondanabooks/hondana/pkg/books"
	"github.com/hondanabooks/hondana/pkg/collections"
	"github.com/hondanabooks/hondana/pkg/config"
	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/events"
	"github.com/hondanabooks/hondana/pkg/libraries"
	"github.com/hondanabooks/hondana/pkg/series"
	"github.com/hondanabooks/hondana/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, publisher events.Publisher) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and get the auth service.
	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	users.RegisterRoutes(e, db, authMiddleware)

	seriesGroup := e.Group("/series")
	seriesGroup.Use(authMiddleware.AuthenticateOptional)
	series.RegisterRoutesWithGroup(seriesGroup, db, cfg, authMiddleware, publisher)

	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.AuthenticateOptional)
	books.RegisterRoutesWithGroup(booksGroup, db)

	librariesGroup := e.Group("/libraries")
	librariesGroup.Use(authMiddleware.AuthenticateOptional)
	libraries.RegisterRoutesWithGroup(librariesGroup, db)

	collectionsGroup := e.Group("/collections")
	collectionsGroup.Use(authMiddleware.AuthenticateOptional)
	collections.RegisterRoutesWithGroup(collectionsGroup, db)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
