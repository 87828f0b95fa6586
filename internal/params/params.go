// Package params maps the public request parameter vocabulary onto the data
// source vocabulary.
package params

import (
	"sort"

	"github.com/amaumene/filmdocs/internal/config"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
)

// Entry describes one recognised public parameter.
// AllowedValues is nil for parameters that accept any non-empty value.
type Entry struct {
	PublicName    string
	SourceName    string
	AllowedValues map[string]string
}

// Catalog is the immutable registry of recognised parameters.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog builds the catalog from configuration. Value maps are copied so
// later changes to cfg do not leak in.
func NewCatalog(cfg *config.Config) *Catalog {
	api := cfg.API
	src := cfg.DataSource.Params

	c := &Catalog{entries: make(map[string]Entry, 5)}
	c.add(Entry{PublicName: api.Title, SourceName: src.Title})
	c.add(Entry{PublicName: api.ID, SourceName: src.ID})
	c.add(Entry{PublicName: api.Year, SourceName: src.Year})
	c.add(Entry{PublicName: api.Plot, SourceName: src.Plot, AllowedValues: copyValues(cfg.PlotValues)})
	c.add(Entry{PublicName: api.Format, SourceName: src.Format, AllowedValues: copyValues(cfg.FormatValues)})
	return c
}

func (c *Catalog) add(e Entry) {
	c.entries[e.PublicName] = e
}

// Lookup returns the entry for a public parameter name.
func (c *Catalog) Lookup(publicName string) (Entry, bool) {
	e, ok := c.entries[publicName]
	return e, ok
}

// Names returns the recognised public parameter names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Mapper validates and translates public parameters using a Catalog.
type Mapper struct {
	catalog *Catalog
}

// NewMapper creates a mapper over catalog.
func NewMapper(catalog *Catalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Catalog returns the underlying catalog.
func (m *Mapper) Catalog() *Catalog {
	return m.catalog
}

// TranslateParamName returns the data source name for a public parameter.
func (m *Mapper) TranslateParamName(publicName string) (string, error) {
	e, ok := m.catalog.Lookup(publicName)
	if !ok {
		return "", apperrors.NewUnknownParameterError(publicName)
	}
	return e.SourceName, nil
}

// TranslateParamValue returns the data source value for a public parameter value.
func (m *Mapper) TranslateParamValue(publicName, value string) (string, error) {
	e, ok := m.catalog.Lookup(publicName)
	if !ok {
		return "", apperrors.NewUnknownParameterError(publicName)
	}
	if value == "" {
		return "", apperrors.NewInvalidValueError(publicName, value, "value cannot be empty")
	}
	if e.AllowedValues == nil {
		return value, nil
	}
	translated, ok := e.AllowedValues[value]
	if !ok {
		return "", apperrors.NewInvalidValueError(publicName, value, "not one of the allowed values")
	}
	return translated, nil
}

// IsValueValid reports whether value is acceptable for publicName.
func (m *Mapper) IsValueValid(publicName, value string) bool {
	_, err := m.TranslateParamValue(publicName, value)
	return err == nil
}
