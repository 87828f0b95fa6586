package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/constants"
	"github.com/amaumene/filmdocs/internal/database"
	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/pkg/httputil"
	"github.com/amaumene/filmdocs/pkg/logger"
	"github.com/amaumene/filmdocs/pkg/ratelimiter"
	"github.com/amaumene/filmdocs/pkg/security"
)

// OMDb fetches film data and posters. Data source answers can be kept in an
// optional on-disk cache; posters are always fetched.
type OMDb struct {
	keyParam    string
	db          database.Database
	dbTTL       time.Duration
	rateLimiter ratelimiter.RateLimiter
	httpClient  *http.Client
	logger      logger.Logger
	validator   *security.APIKeyValidator
	metrics     *metrics.Metrics
}

// NewOMDb creates a client paced by the configured rate limit.
func NewOMDb(cfg *config.Config, log logger.Logger) *OMDb {
	validator := security.NewAPIKeyValidator()

	if key := cfg.DataSource.APIKey; key == "" {
		log.Warnf("[OMDb] no API key configured, the data source will likely refuse requests")
	} else if !validator.IsValidOMDbKey(key) {
		log.Warnf("[OMDb] API key has an unexpected format (key: %s)", validator.MaskAPIKey(key))
	}

	return &OMDb{
		keyParam:    cfg.DataSource.Params.APIKey,
		dbTTL:       cfg.CacheTTL(),
		rateLimiter: ratelimiter.NewTokenBucket(cfg.DataSource.RateBurst, cfg.DataSource.RateLimit),
		httpClient:  httputil.NewHTTPClient(cfg.FetchTimeout()),
		logger:      log,
		validator:   validator,
	}
}

func (o *OMDb) SetDB(db database.Database) {
	o.db = db
}

func (o *OMDb) SetMetrics(m *metrics.Metrics) {
	o.metrics = m
}

// FetchText returns the data source answer for rawURL as a string.
func (o *OMDb) FetchText(ctx context.Context, rawURL string) (string, error) {
	body, _, err := o.FetchBody(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBody returns the data source answer for rawURL with its content type.
func (o *OMDb) FetchBody(ctx context.Context, rawURL string) ([]byte, string, error) {
	display := o.validator.MaskURL(rawURL, o.keyParam)

	if cached := o.cached(display); cached != nil {
		o.logger.Debugf("[OMDb] disk cache hit for %s", display)
		return cached.Body, cached.ContentType, nil
	}

	if err := o.rateLimiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter: %w", err)
	}

	o.logger.Debugf("[OMDb] fetching %s", display)
	start := time.Now()
	body, contentType, err := httputil.GetBytes(ctx, o.httpClient, rawURL, display, constants.MaxProviderBodyBytes)
	o.metrics.ObserveFetch("text", err, time.Since(start))
	if err != nil {
		o.logger.Errorf("[OMDb] failed to fetch %s: %v", display, err)
		return nil, "", err
	}

	o.store(display, body, contentType)
	return body, contentType, nil
}

// FetchBytes downloads a poster image.
func (o *OMDb) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	o.logger.Debugf("[OMDb] fetching poster %s", rawURL)
	start := time.Now()
	data, _, err := httputil.GetBytes(ctx, o.httpClient, rawURL, rawURL, constants.MaxPosterBytes)
	o.metrics.ObserveFetch("bytes", err, time.Since(start))
	if err != nil {
		o.logger.Errorf("[OMDb] failed to fetch poster %s: %v", rawURL, err)
		return nil, err
	}
	return data, nil
}

func (o *OMDb) cached(key string) *database.CachedBody {
	if o.db == nil {
		return nil
	}
	cached, err := o.db.GetCachedBody(key)
	if err != nil {
		o.logger.Warnf("[OMDb] failed to read disk cache: %v", err)
		return nil
	}
	if cached == nil || (o.dbTTL > 0 && time.Since(cached.StoredAt) > o.dbTTL) {
		return nil
	}
	return cached
}

func (o *OMDb) store(key string, body []byte, contentType string) {
	if o.db == nil {
		return
	}
	err := o.db.StoreBody(&database.CachedBody{
		Key:         key,
		Body:        body,
		ContentType: contentType,
		StoredAt:    time.Now(),
	})
	if err != nil {
		o.logger.Errorf("[OMDb] failed to store cache: %v", err)
	}
}
