package collections

import (
	"net/http"
	"strconv"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	collectionService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateCollectionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection := &models.Collection{Name: params.Name}
	err := h.collectionService.CreateCollection(ctx, collection)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, collection))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}

func (h *handler) addSeries(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Collection")
	}

	// Bind params.
	params := AddSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	collection, err := h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.collectionService.AddSeries(ctx, collection.ID, params.SeriesID)
	if err != nil {
		return errors.WithStack(err)
	}

	collection, err = h.collectionService.RetrieveCollection(ctx, RetrieveCollectionOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, collection))
}
