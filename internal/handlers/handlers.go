// Package handlers implements the HTTP handlers of the film service.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/constants"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/services"
	"github.com/amaumene/filmdocs/pkg/worker"
)

// Handler handles HTTP requests for the film service.
type Handler struct {
	services *services.Container
	config   *config.Config
}

// New creates a new Handler with the provided services and configuration.
func New(services *services.Container, config *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.handleHome)
	r.GET("/health", h.handleHealth)
	r.GET("/metrics", gin.WrapH(h.services.Metrics.Handler()))

	// /film picks the representation from the format parameter
	r.GET("/film", h.handleFilm)
	r.GET("/film/data", h.handleFilmData)
	r.GET("/film/document", h.handleFilmDocument)
}

func (h *Handler) handleHome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to %s %s! Request /film?%s=<title> or /film?%s=<imdb id>.",
		h.config.AppName, constants.AppVersion, h.config.API.Title, h.config.API.ID)
}

func (h *Handler) handleHealth(c *gin.Context) {
	resp := gin.H{"status": "ok", "version": constants.AppVersion}
	if h.services.Pool != nil {
		stats := h.services.Pool.Stats()
		resp["workers"] = gin.H{"running": stats.Workers, "busy": stats.Busy, "queued": stats.Queued}
	}
	c.JSON(http.StatusOK, resp)
}

// run executes task on the worker pool bound to the request context.
func (h *Handler) run(c *gin.Context, task worker.Task) error {
	if h.services.Pool == nil {
		return task(c.Request.Context())
	}

	err := h.services.Pool.Do(c.Request.Context(), task)
	if errors.Is(err, worker.ErrPoolExhausted) || errors.Is(err, worker.ErrPoolClosed) {
		h.services.Metrics.PoolRejected()
		return apperrors.New(apperrors.KindPoolExhausted, "Server is too busy, retry later", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDataGatheringError(err)
	}
	return err
}
