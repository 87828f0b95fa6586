// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "filmdocs"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	// Public request parameter names
	ParamTitle  = "title"
	ParamID     = "id"
	ParamYear   = "year"
	ParamPlot   = "plot"
	ParamFormat = "format"

	// Public enum values
	PlotShort  = "short"
	PlotFull   = "full"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatDOCX = "docx"

	// Data source defaults (OMDb vocabulary)
	DataSourceProtocol   = "http"
	DataSourceHost       = "www.omdbapi.com"
	SourceParamTitle     = "t"
	SourceParamID        = "i"
	SourceParamYear      = "y"
	SourceParamPlot      = "plot"
	SourceParamFormat    = "r"
	SourceParamAPIKey    = "apikey"
	DataSourceRateLimit  = 10 // requests per second
	DataSourceRateBurst  = 10 // burst capacity
	FetchTimeoutSeconds  = 15
	MaxProviderBodyBytes = 4 << 20
	MaxPosterBytes       = 16 << 20

	// Worker pool
	DefaultCorePoolSize = 4
	DefaultMaxPoolSize  = 16
	DefaultQueueSize    = 64
	DefaultThreadPrefix = "film-exec-"

	// Response caches
	DefaultBodiesCacheSize    = 1000
	DefaultDocumentsCacheSize = 100
	DefaultCacheTTLMinutes    = 60

	// Result document
	DocumentFilename = "film.docx"
	DocumentMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	RatingsAnchor    = "Metascore"
	PosterField      = "poster"
	PosterName       = "Poster"

	// MissingValue replaces any field absent from the provider response.
	MissingValue = "—"
)
