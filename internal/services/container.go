// Package services provides the film services and the dependency injection
// container that holds them.
package services

import (
	"context"

	"github.com/amaumene/filmdocs/internal/cache"
	"github.com/amaumene/filmdocs/internal/database"
	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/pkg/logger"
	"github.com/amaumene/filmdocs/pkg/worker"
)

// Container holds all application services for dependency injection.
type Container struct {
	Film      FilmService
	OMDb      *OMDb
	Bodies    *cache.LRUCache
	Documents *cache.LRUCache
	DB        database.Database
	Pool      *worker.Pool
	Cleanup   *CleanupService
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

// FilmService defines the operations exposed over HTTP.
type FilmService interface {
	URL(q models.FilmQuery) (string, error)
	Body(ctx context.Context, q models.FilmQuery) (models.FilmBody, error)
	Document(ctx context.Context, q models.FilmQuery) ([]byte, error)
}
