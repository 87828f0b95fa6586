package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/filmdocs/internal/models"
)

func (h *Handler) handleFilm(c *gin.Context) {
	if h.config.IsDocumentFormat(c.Query(h.config.API.Format)) {
		h.handleFilmDocument(c)
		return
	}
	h.handleFilmData(c)
}

func (h *Handler) handleFilmData(c *gin.Context) {
	q := h.filmQuery(c)
	h.services.Logger.Debugf("[Handler] data request %s", q.Fingerprint())

	var body models.FilmBody
	err := h.run(c, func(ctx context.Context) error {
		var err error
		body, err = h.services.Film.Body(ctx, q)
		return err
	})
	if err != nil {
		h.errorPage(c, err)
		return
	}

	h.services.Logger.Infof("[Handler] film data served as %s", body.ContentType)
	c.Data(http.StatusOK, body.ContentType, body.Data)
}

func (h *Handler) handleFilmDocument(c *gin.Context) {
	q := h.filmQuery(c)
	h.services.Logger.Debugf("[Handler] document request %s", q.Fingerprint())

	var data []byte
	err := h.run(c, func(ctx context.Context) error {
		var err error
		data, err = h.services.Film.Document(ctx, q)
		return err
	})
	if err != nil {
		h.errorDocument(c, err)
		return
	}

	h.services.Logger.Infof("[Handler] film document served (%d bytes)", len(data))
	h.attachment(c, http.StatusOK, data)
}

func (h *Handler) attachment(c *gin.Context, status int, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+h.config.Document.Filename)
	c.Data(status, h.config.Document.MimeType, data)
}

// filmQuery reads the public parameters. Unknown parameters are ignored;
// title and id keep the difference between absent and empty.
func (h *Handler) filmQuery(c *gin.Context) models.FilmQuery {
	api := h.config.API
	q := models.FilmQuery{
		Year:   strings.TrimSpace(c.Query(api.Year)),
		Plot:   c.Query(api.Plot),
		Format: c.Query(api.Format),
	}
	if v, ok := c.GetQuery(api.Title); ok {
		q.Title = &v
	}
	if v, ok := c.GetQuery(api.ID); ok {
		q.ID = &v
	}
	return q
}
