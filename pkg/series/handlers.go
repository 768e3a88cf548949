package series

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hondanabooks/hondana/pkg/config"
	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

type handler struct {
	cfg           *config.Config
	seriesService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, total, err := h.seriesService.ListSeriesWithTotal(ctx, ListSeriesOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Series []*models.Series `json:"series"`
		Total  int              `json:"total"`
	}{series, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.CreateSeries(ctx, &models.Series{
		Name:      params.Name,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, series))
}

func (h *handler) addBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	// Bind params.
	params := AddBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	booksToAdd := make([]*models.Book, len(params.Books))
	for i, input := range params.Books {
		booksToAdd[i] = &models.Book{
			Name:      input.Name,
			LibraryID: input.LibraryID,
			Number:    series.BookCount + i + 1,
		}
	}

	err = h.seriesService.AddBooks(ctx, series, booksToAdd)
	if err != nil {
		return errors.WithStack(err)
	}

	// Renumber so the new books settle into natural order.
	err = h.seriesService.SortBooks(ctx, series)
	if err != nil {
		return errors.WithStack(err)
	}

	series, err = h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, series))
}

func (h *handler) sortBooks(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.seriesService.SortBooks(ctx, series)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	// Bind params.
	params := DeleteSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID:             &id,
		IncludeDeleted: params.Permanent,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.Permanent {
		err = h.seriesService.DeleteMany(ctx, []*models.Series{series})
	} else {
		err = h.seriesService.SoftDeleteMany(ctx, []*models.Series{series})
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) cover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	// Bind params.
	params := CoverQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	userID := 0
	if user, ok := c.Get("user").(*models.User); ok {
		userID = user.ID
	}

	data, err := h.seriesService.GetThumbnailBytes(ctx, series, userID)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(data) == 0 {
		return errcodes.NotFound("Cover")
	}

	if params.Size != nil {
		resized, err := resizeCover(data, *params.Size)
		if err == nil {
			return errors.WithStack(c.Blob(http.StatusOK, "image/jpeg", resized))
		}
	}

	return errors.WithStack(c.Blob(http.StatusOK, mimetype.Detect(data).String(), data))
}

func (h *handler) uploadThumbnail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errcodes.MalformedPayload()
	}
	f, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.WithStack(err)
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), "image/jpeg", "image/png", "image/webp") {
		return errcodes.UnsupportedMediaType()
	}

	dir := filepath.Join(h.cfg.ThumbnailDir, strconv.Itoa(series.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	url := filepath.Join(dir, fmt.Sprintf("%s%s", uuid.NewString(), mime.Extension()))
	if err := os.WriteFile(url, data, 0o644); err != nil {
		return errors.WithStack(err)
	}

	thumbnail := &models.SeriesThumbnail{
		SeriesID: series.ID,
		URL:      url,
		Type:     models.ThumbnailTypeUploaded,
		Selected: c.FormValue("selected") == "true",
	}
	err = h.seriesService.AddThumbnail(ctx, thumbnail)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, thumbnail))
}

func (h *handler) markRead(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Forbidden("You must be logged in to track read progress.")
	}

	err = h.seriesService.MarkReadProgressCompleted(ctx, id, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) deleteReadProgress(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Forbidden("You must be logged in to track read progress.")
	}

	err = h.seriesService.DeleteReadProgress(ctx, id, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// resizeCover scales the image down so its longest edge is size pixels,
// re-encoding as JPEG. Images already smaller are re-encoded as-is.
func resizeCover(data []byte, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > h && w > size {
		h = h * size / w
		w = size
	} else if h >= w && h > size {
		w = w * size / h
		h = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	buf := &bytes.Buffer{}
	err = jpeg.Encode(buf, dst, &jpeg.Options{Quality: 85})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
