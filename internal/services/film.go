package services

import (
	"context"
	"strings"

	"github.com/amaumene/filmdocs/internal/assembler"
	"github.com/amaumene/filmdocs/internal/cache"
	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/constants"
	"github.com/amaumene/filmdocs/internal/document"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/pkg/logger"
)

const (
	contentTypeJSON = "application/json"
	contentTypeXML  = "application/xml"
)

// BodyFetcher retrieves a raw data source answer.
type BodyFetcher interface {
	FetchBody(ctx context.Context, rawURL string) ([]byte, string, error)
}

// DocumentAssembler builds a document for a query.
type DocumentAssembler interface {
	Assemble(ctx context.Context, q models.FilmQuery) (*document.Document, error)
}

// Film answers film queries with either the raw data source body or a
// generated document. Results are cached per request fingerprint and
// concurrent identical requests share one build.
type Film struct {
	resolver      assembler.URLResolver
	fetcher       BodyFetcher
	assembler     DocumentAssembler
	bodies        *cache.LRUCache
	documents     *cache.LRUCache
	metrics       *metrics.Metrics
	logger        logger.Logger
	defaultFormat string
}

// NewFilm wires the film service. Either cache may be nil to disable it.
func NewFilm(cfg *config.Config, resolver assembler.URLResolver, fetcher BodyFetcher, asm DocumentAssembler,
	bodies, documents *cache.LRUCache, m *metrics.Metrics, log logger.Logger) *Film {
	return &Film{
		resolver:      resolver,
		fetcher:       fetcher,
		assembler:     asm,
		bodies:        bodies,
		documents:     documents,
		metrics:       m,
		logger:        log,
		defaultFormat: cfg.DefaultFormat,
	}
}

// URL returns the data source URL for q.
func (s *Film) URL(q models.FilmQuery) (string, error) {
	return s.resolver.URL(q)
}

// Body fetches the data source answer for q unchanged. The content type
// follows the requested format.
func (s *Film) Body(ctx context.Context, q models.FilmQuery) (models.FilmBody, error) {
	rawURL, err := s.resolver.URL(q)
	if err != nil {
		return models.FilmBody{}, err
	}

	build := func() (interface{}, error) {
		data, _, err := s.fetcher.FetchBody(ctx, rawURL)
		if err != nil {
			return nil, apperrors.NewDataGatheringError(err)
		}
		return models.FilmBody{Data: data, ContentType: s.contentType(q.Format)}, nil
	}

	v, err := s.cached(s.bodies, "bodies", q.Fingerprint(), build)
	if err != nil {
		return models.FilmBody{}, err
	}
	return v.(models.FilmBody), nil
}

// Document builds the film sheet for q and returns the serialized DOCX.
// The format parameter is always treated as docx.
func (s *Film) Document(ctx context.Context, q models.FilmQuery) ([]byte, error) {
	q.Format = constants.FormatDOCX
	if _, err := s.resolver.URL(q); err != nil {
		return nil, err
	}

	build := func() (interface{}, error) {
		doc, err := s.assembler.Assemble(ctx, q)
		if err != nil {
			return nil, err
		}
		data, err := doc.Bytes()
		if err != nil {
			return nil, apperrors.NewInnerError("failed to serialize document", err)
		}
		s.metrics.DocumentBuilt()
		return data, nil
	}

	v, err := s.cached(s.documents, "documents", q.Fingerprint(), build)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Film) cached(c *cache.LRUCache, name, key string, build func() (interface{}, error)) (interface{}, error) {
	if c == nil {
		return build()
	}
	v, hit, err := c.GetOrCompute(key, build)
	if err != nil {
		return nil, err
	}
	s.metrics.CacheLookup(name, hit)
	if hit {
		s.logger.Debugf("[Film] %s cache hit for %s", name, key)
	}
	return v, nil
}

func (s *Film) contentType(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = s.defaultFormat
	}
	if format == constants.FormatXML {
		return contentTypeXML
	}
	return contentTypeJSON
}
