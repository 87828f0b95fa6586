// Package assembler builds the film sheet document from a validated query.
package assembler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/amaumene/filmdocs/internal/assets"
	"github.com/amaumene/filmdocs/internal/binder"
	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/constants"
	"github.com/amaumene/filmdocs/internal/document"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/internal/record"
	"github.com/amaumene/filmdocs/pkg/logger"
)

// Extensions that make a poster URL worth fetching.
var posterExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// URLResolver turns a query into a data source URL.
type URLResolver interface {
	URL(q models.FilmQuery) (string, error)
}

// Fetcher retrieves remote text and bytes.
type Fetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Assembler produces documents. Each call works on its own copy of the
// template, so one Assembler serves concurrent requests.
type Assembler struct {
	resolver URLResolver
	fetcher  Fetcher
	parser   *record.Parser
	logger   logger.Logger

	appName       string
	ratingsAnchor string
	missing       string
	template      []byte
	fallback      []byte

	now func() time.Time
}

// New creates an assembler. The template and fallback poster come from the
// configured paths when set and from the bundled assets otherwise.
func New(cfg *config.Config, resolver URLResolver, fetcher Fetcher, parser *record.Parser, log logger.Logger) (*Assembler, error) {
	template, err := readAsset(cfg.Document.TemplatePath, assets.Template)
	if err != nil {
		return nil, apperrors.NewInnerError("document template is unavailable", err)
	}
	fallback, err := readAsset(cfg.Document.FallbackImagePath, assets.FallbackPoster)
	if err != nil {
		return nil, apperrors.NewInnerError("fallback poster is unavailable", err)
	}

	return &Assembler{
		resolver:      resolver,
		fetcher:       fetcher,
		parser:        parser,
		logger:        log,
		appName:       cfg.AppName,
		ratingsAnchor: cfg.Document.RatingsAnchor,
		missing:       cfg.Document.MissingValue,
		template:      template,
		fallback:      fallback,
		now:           time.Now,
	}, nil
}

func readAsset(filename string, bundled []byte) ([]byte, error) {
	if filename == "" {
		return bundled, nil
	}
	return os.ReadFile(filename)
}

// Assemble fetches the film described by q and binds it into a fresh copy
// of the template.
func (a *Assembler) Assemble(ctx context.Context, q models.FilmQuery) (*document.Document, error) {
	rawURL, err := a.resolver.URL(q)
	if err != nil {
		return nil, err
	}

	body, err := a.fetcher.FetchText(ctx, rawURL)
	if err != nil {
		return nil, apperrors.NewDataGatheringError(err)
	}

	rec := a.parser.Parse(body)
	if !rec.ResponseOK {
		return nil, apperrors.NewNoDataFoundError(rec.ProviderError)
	}

	doc, err := document.Open(a.template)
	if err != nil {
		return nil, apperrors.NewInnerError("failed to load document template", err)
	}
	tree := doc.Body()

	fields := rec.Fields()
	fields["author"] = a.appName
	fields["currentYear"] = strconv.Itoa(a.now().Year())
	binder.BindFields(tree, fields)

	if len(rec.Ratings) > 0 {
		table := binder.FindTableContaining(tree, a.ratingsAnchor)
		if table == nil {
			a.logger.Warnf("[Assembler] no table contains %q, skipping %d ratings", a.ratingsAnchor, len(rec.Ratings))
		} else if err := binder.BindRows(table, binder.RatingRows(rec.Ratings)); err != nil {
			return nil, apperrors.NewInnerError("failed to bind ratings", err)
		}
	}

	poster, err := a.poster(ctx, rec.PosterURL)
	if err != nil {
		return nil, err
	}
	if _, err := binder.BindImage(tree, constants.PosterField, poster); err != nil {
		return nil, apperrors.NewInnerError("failed to embed poster", err)
	}

	a.logger.Debugf("[Assembler] built document for %q (%d ratings)", rec.Title, len(rec.Ratings))
	return doc, nil
}

// poster fetches the record's poster when its URL names a known image
// extension and falls back to the bundled image otherwise.
func (a *Assembler) poster(ctx context.Context, posterURL string) (models.ImagePayload, error) {
	data := a.fallback
	if isPosterURL(posterURL, a.missing) {
		fetched, err := a.fetcher.FetchBytes(ctx, posterURL)
		if err != nil {
			return models.ImagePayload{}, apperrors.NewDataGatheringError(fmt.Errorf("poster: %w", err))
		}
		data = fetched
	}
	return decodePoster(data)
}

func isPosterURL(raw, missing string) bool {
	if raw == "" || raw == missing {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return posterExtensions[strings.ToLower(path.Ext(u.Path))]
}

func decodePoster(data []byte) (models.ImagePayload, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.ImagePayload{}, apperrors.NewInnerError("failed to decode poster", err)
	}
	return models.ImagePayload{
		Data:        data,
		WidthPx:     cfg.Width,
		HeightPx:    cfg.Height,
		Format:      models.ImageFormat(format),
		LogicalName: constants.PosterName,
	}, nil
}
