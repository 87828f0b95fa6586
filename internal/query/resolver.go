package query

import (
	"strconv"
	"strings"

	"github.com/amaumene/filmdocs/internal/config"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/models"
	"github.com/amaumene/filmdocs/internal/params"
)

// Resolver validates a FilmQuery and turns it into a data source URL.
type Resolver struct {
	mapper *params.Mapper
	cfg    *config.Config
}

// NewResolver creates a resolver.
func NewResolver(cfg *config.Config, mapper *params.Mapper) *Resolver {
	return &Resolver{mapper: mapper, cfg: cfg}
}

// URL validates q and returns the data source URL. Every failure is a
// BAD_INPUT error whose cause names the offending parameter.
func (r *Resolver) URL(q models.FilmQuery) (string, error) {
	api := r.cfg.API
	b := NewBuilder(r.cfg.DataSource.Protocol, r.cfg.DataSource.Host)

	titlePath, err := r.primary(q)
	if err != nil {
		return "", err
	}

	year := strings.TrimSpace(q.Year)
	if titlePath {
		if err := r.add(b, api.Title, *q.Title); err != nil {
			return "", err
		}
		if year != "" {
			n, err := strconv.Atoi(year)
			if err != nil {
				return "", apperrors.NewInvalidValueError(api.Year, q.Year, "year must be a number")
			}
			name, err := r.mapper.TranslateParamName(api.Year)
			if err != nil {
				return "", err
			}
			b.AddInt(name, n)
		}
	} else {
		if err := r.add(b, api.ID, *q.ID); err != nil {
			return "", err
		}
		if year != "" {
			return "", apperrors.NewRedundantParameterError(api.Year, "a release year cannot narrow an id lookup")
		}
	}

	if err := r.add(b, api.Plot, orDefault(q.Plot, r.cfg.DefaultPlot)); err != nil {
		return "", err
	}
	if err := r.add(b, api.Format, orDefault(q.Format, r.cfg.DefaultFormat)); err != nil {
		return "", err
	}

	b.Add(r.cfg.DataSource.Params.APIKey, r.cfg.DataSource.APIKey)
	return b.String(), nil
}

// primary checks the title/id pair and reports whether the title path applies.
func (r *Resolver) primary(q models.FilmQuery) (bool, error) {
	api := r.cfg.API
	switch {
	case q.Title == nil && q.ID == nil:
		return false, apperrors.NewPrimaryParameterOmittedError(api.Title, api.ID)
	case q.Title != nil && q.ID != nil:
		if *q.Title == "" && *q.ID == "" {
			return false, apperrors.NewPrimaryParameterOmittedError(api.Title, api.ID)
		}
		return false, apperrors.NewParametersConflictError(api.Title, api.ID)
	case q.Title != nil:
		if *q.Title == "" {
			return false, apperrors.NewInvalidValueError(api.Title, "", "value cannot be empty")
		}
		return true, nil
	default:
		if *q.ID == "" {
			return false, apperrors.NewInvalidValueError(api.ID, "", "value cannot be empty")
		}
		return false, nil
	}
}

func (r *Resolver) add(b *Builder, publicName, value string) error {
	name, err := r.mapper.TranslateParamName(publicName)
	if err != nil {
		return err
	}
	translated, err := r.mapper.TranslateParamValue(publicName, value)
	if err != nil {
		return err
	}
	b.Add(name, translated)
	return nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
