// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amaumene/filmdocs/internal/constants"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
	// Default dotenv file name
	defaultEnvFile = ".env"
)

// APIParams holds the public (inbound) parameter names.
type APIParams struct {
	Title  string `json:"title" yaml:"title"`
	ID     string `json:"id" yaml:"id"`
	Year   string `json:"year" yaml:"year"`
	Plot   string `json:"plot" yaml:"plot"`
	Format string `json:"format" yaml:"format"`
}

// SourceParams holds the data source (outbound) parameter names.
type SourceParams struct {
	Title  string `json:"title" yaml:"title"`
	ID     string `json:"id" yaml:"id"`
	Year   string `json:"year" yaml:"year"`
	Plot   string `json:"plot" yaml:"plot"`
	Format string `json:"format" yaml:"format"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

// DataSource describes the film metadata provider.
type DataSource struct {
	Protocol string       `json:"protocol" yaml:"protocol"`
	Host     string       `json:"host" yaml:"host"`
	APIKey   string       `json:"api_key" yaml:"api_key"`
	Params   SourceParams `json:"params" yaml:"params"`

	TimeoutSeconds int   `json:"timeout_seconds" yaml:"timeout_seconds"`
	RateLimit      int64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst      int64 `json:"rate_burst" yaml:"rate_burst"`
}

// Async configures the request worker pool.
type Async struct {
	CorePoolSize        int    `json:"core_pool_size" yaml:"core_pool_size"`
	MaxPoolSize         int    `json:"max_pool_size" yaml:"max_pool_size"`
	QueueSize           int    `json:"queue_size" yaml:"queue_size"`
	ThreadNamePrefix    string `json:"thread_name_prefix" yaml:"thread_name_prefix"`
	WaitTasksOnShutdown bool   `json:"wait_for_tasks_to_complete_on_shutdown" yaml:"wait_for_tasks_to_complete_on_shutdown"`
}

// Cache configures the response caches.
type Cache struct {
	BodiesMaxSize    int `json:"bodies_max_size" yaml:"bodies_max_size"`
	DocumentsMaxSize int `json:"documents_max_size" yaml:"documents_max_size"`
	TTLMinutes       int `json:"ttl_minutes" yaml:"ttl_minutes"`
}

// Document configures the produced DOCX.
type Document struct {
	Filename          string `json:"filename" yaml:"filename"`
	MimeType          string `json:"mime_type" yaml:"mime_type"`
	TemplatePath      string `json:"template_path" yaml:"template_path"`
	FallbackImagePath string `json:"fallback_image_path" yaml:"fallback_image_path"`
	RatingsAnchor     string `json:"ratings_anchor" yaml:"ratings_anchor"`
	MissingValue      string `json:"missing_value" yaml:"missing_value"`
}

// Config holds the application configuration.
// It is populated once at startup and passed by pointer; it is never re-read per request.
type Config struct {
	AppName  string `json:"app_name" yaml:"app_name"`
	Port     string `json:"port" yaml:"port"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	// PlotValues and FormatValues map public enum values to data source values.
	API           APIParams         `json:"api" yaml:"api"`
	PlotValues    map[string]string `json:"plot_values" yaml:"plot_values"`
	FormatValues  map[string]string `json:"format_values" yaml:"format_values"`
	DefaultPlot   string            `json:"default_plot" yaml:"default_plot"`
	DefaultFormat string            `json:"default_format" yaml:"default_format"`

	DataSource DataSource `json:"data_source" yaml:"data_source"`
	Async      Async      `json:"async" yaml:"async"`
	Cache      Cache      `json:"cache" yaml:"cache"`
	Document   Document   `json:"document" yaml:"document"`

	// DatabasePath enables the on-disk provider body cache when set.
	DatabasePath string `json:"database_path" yaml:"database_path"`
	SentryDSN    string `json:"sentry_dsn" yaml:"sentry_dsn"`
	Environment  string `json:"environment" yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppName:  constants.AppName,
		Port:     constants.DefaultPort,
		LogLevel: constants.DefaultLogLevel,
		API: APIParams{
			Title:  constants.ParamTitle,
			ID:     constants.ParamID,
			Year:   constants.ParamYear,
			Plot:   constants.ParamPlot,
			Format: constants.ParamFormat,
		},
		PlotValues: map[string]string{
			constants.PlotShort: constants.PlotShort,
			constants.PlotFull:  constants.PlotFull,
		},
		FormatValues: map[string]string{
			constants.FormatJSON: constants.FormatJSON,
			constants.FormatXML:  constants.FormatXML,
			// documents are always built from the JSON answer
			constants.FormatDOCX: constants.FormatJSON,
		},
		DefaultPlot:   constants.PlotShort,
		DefaultFormat: constants.FormatJSON,
		DataSource: DataSource{
			Protocol: constants.DataSourceProtocol,
			Host:     constants.DataSourceHost,
			Params: SourceParams{
				Title:  constants.SourceParamTitle,
				ID:     constants.SourceParamID,
				Year:   constants.SourceParamYear,
				Plot:   constants.SourceParamPlot,
				Format: constants.SourceParamFormat,
				APIKey: constants.SourceParamAPIKey,
			},
			TimeoutSeconds: constants.FetchTimeoutSeconds,
			RateLimit:      constants.DataSourceRateLimit,
			RateBurst:      constants.DataSourceRateBurst,
		},
		Async: Async{
			CorePoolSize:        constants.DefaultCorePoolSize,
			MaxPoolSize:         constants.DefaultMaxPoolSize,
			QueueSize:           constants.DefaultQueueSize,
			ThreadNamePrefix:    constants.DefaultThreadPrefix,
			WaitTasksOnShutdown: true,
		},
		Cache: Cache{
			BodiesMaxSize:    constants.DefaultBodiesCacheSize,
			DocumentsMaxSize: constants.DefaultDocumentsCacheSize,
			TTLMinutes:       constants.DefaultCacheTTLMinutes,
		},
		Document: Document{
			Filename:      constants.DocumentFilename,
			MimeType:      constants.DocumentMimeType,
			RatingsAnchor: constants.RatingsAnchor,
			MissingValue:  constants.MissingValue,
		},
	}
}

// Load reads configuration from an optional .env file, an optional JSON or YAML
// config file and environment variables, in that order of increasing precedence.
// Returns an error if the configuration is invalid.
func Load() (*Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a JSON or YAML file, chosen by extension.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	// enum maps given in the file replace the defaults instead of merging
	plot, format := c.PlotValues, c.FormatValues
	c.PlotValues, c.FormatValues = nil, nil

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}

	if c.PlotValues == nil {
		c.PlotValues = plot
	}
	if c.FormatValues == nil {
		c.FormatValues = format
	}
	return err
}

// loadFromEnv applies environment variable overrides.
func (c *Config) loadFromEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DataSource.APIKey, "OMDB_API_KEY")
	setString(&c.DataSource.Host, "DATA_SOURCE_HOST")
	setString(&c.DataSource.Protocol, "DATA_SOURCE_PROTOCOL")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.SentryDSN, "SENTRY_DSN")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.Document.TemplatePath, "TEMPLATE_PATH")
	setString(&c.Document.FallbackImagePath, "FALLBACK_IMAGE_PATH")

	ints := []struct {
		key string
		dst *int
	}{
		{"WORKER_CORE_POOL_SIZE", &c.Async.CorePoolSize},
		{"WORKER_MAX_POOL_SIZE", &c.Async.MaxPoolSize},
		{"WORKER_QUEUE_SIZE", &c.Async.QueueSize},
		{"CACHE_BODIES_MAX_SIZE", &c.Cache.BodiesMaxSize},
		{"CACHE_DOCUMENTS_MAX_SIZE", &c.Cache.DocumentsMaxSize},
		{"FETCH_TIMEOUT_SECONDS", &c.DataSource.TimeoutSeconds},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = n
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataSource.Protocol == "" || c.DataSource.Host == "" {
		return errors.New("data source protocol and host are required")
	}
	if c.API.Title == "" || c.API.ID == "" || c.API.Year == "" || c.API.Plot == "" || c.API.Format == "" {
		return errors.New("all public parameter names are required")
	}
	p := c.DataSource.Params
	if p.Title == "" || p.ID == "" || p.Year == "" || p.Plot == "" || p.Format == "" || p.APIKey == "" {
		return errors.New("all data source parameter names are required")
	}
	if _, ok := c.PlotValues[c.DefaultPlot]; !ok {
		return fmt.Errorf("default plot %q is not an allowed plot value", c.DefaultPlot)
	}
	if _, ok := c.FormatValues[c.DefaultFormat]; !ok {
		return fmt.Errorf("default format %q is not an allowed format value", c.DefaultFormat)
	}
	if c.Async.CorePoolSize <= 0 || c.Async.MaxPoolSize < c.Async.CorePoolSize {
		return fmt.Errorf("invalid worker pool sizes: core=%d max=%d", c.Async.CorePoolSize, c.Async.MaxPoolSize)
	}
	if c.Async.QueueSize < 0 {
		return fmt.Errorf("invalid worker queue size %d", c.Async.QueueSize)
	}
	if c.Cache.BodiesMaxSize <= 0 || c.Cache.DocumentsMaxSize <= 0 {
		return errors.New("cache sizes must be positive")
	}
	if c.DataSource.TimeoutSeconds <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.Document.Filename == "" || c.Document.MimeType == "" {
		return errors.New("result document filename and mime type are required")
	}
	if strings.TrimSpace(c.Document.RatingsAnchor) == "" {
		return errors.New("ratings anchor text is required")
	}
	return nil
}

// FetchTimeout returns the data source timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// CacheTTL returns the response cache TTL; zero disables expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// IsDocumentFormat reports whether format selects the document output.
// Matching is exact, like every other enum value.
func (c *Config) IsDocumentFormat(format string) bool {
	return format == constants.FormatDOCX
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
