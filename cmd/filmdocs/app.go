package main

import (
	"os"

	"github.com/amaumene/filmdocs/internal/assembler"
	"github.com/amaumene/filmdocs/internal/cache"
	"github.com/amaumene/filmdocs/internal/config"
	"github.com/amaumene/filmdocs/internal/constants"
	"github.com/amaumene/filmdocs/internal/database"
	"github.com/amaumene/filmdocs/internal/handlers"
	"github.com/amaumene/filmdocs/internal/metrics"
	"github.com/amaumene/filmdocs/internal/params"
	"github.com/amaumene/filmdocs/internal/query"
	"github.com/amaumene/filmdocs/internal/record"
	"github.com/amaumene/filmdocs/internal/services"
	"github.com/amaumene/filmdocs/pkg/logger"
	"github.com/amaumene/filmdocs/pkg/security"
	"github.com/amaumene/filmdocs/pkg/telemetry"
	"github.com/amaumene/filmdocs/pkg/worker"
)

var (
	Logger           logger.Logger
	Config           *config.Config
	DB               database.Database
	handler          *handlers.Handler
	serviceContainer *services.Container
)

func InitializeLogger() {
	Logger = logger.New()
}

func InitializeConfig() {
	var err error
	Config, err = config.Load()
	if err != nil {
		Logger.Fatalf("[App] failed to load configuration: %v", err)
	}

	// Log level validation (for user feedback)
	if !logger.ValidLevel(Config.LogLevel) {
		Logger.Warnf("[App] warning: unknown log level '%s', defaulting to info", Config.LogLevel)
	}
	Logger = logger.NewWithOutput(os.Stdout, Config.LogLevel)

	Config.DataSource.APIKey = security.NewAPIKeyValidator().SanitizeAPIKey(Config.DataSource.APIKey)
}

func InitializeTelemetry() {
	enabled, err := telemetry.InitSentry(Config.SentryDSN, Config.Environment, constants.AppVersion)
	if err != nil {
		Logger.Errorf("[App] failed to initialize Sentry: %v", err)
		return
	}
	if enabled {
		Logger.Infof("[App] Sentry error reporting enabled")
	}
}

// InitializeDatabase opens the on-disk body cache when DATABASE_PATH is set.
func InitializeDatabase() {
	if Config.DatabasePath == "" {
		Logger.Infof("[App] no database path configured, disk cache disabled")
		return
	}

	db, err := database.NewBolt(Config.DatabasePath)
	if err != nil {
		Logger.Fatalf("[App] failed to initialize database: %v", err)
	}
	DB = db

	Logger.Infof("[App] bolt database initialized at %s", Config.DatabasePath)
}

func InitializeServices() {
	m := metrics.New()

	mapper := params.NewMapper(params.NewCatalog(Config))
	resolver := query.NewResolver(Config, mapper)
	parser := record.NewParser(Config.Document.MissingValue, Logger)

	omdb := services.NewOMDb(Config, Logger)
	omdb.SetMetrics(m)
	if DB != nil {
		omdb.SetDB(DB)
	}

	asm, err := assembler.New(Config, resolver, omdb, parser, Logger)
	if err != nil {
		Logger.Fatalf("[App] failed to initialize document assembler: %v", err)
	}

	bodies := cache.New(Config.Cache.BodiesMaxSize, Config.CacheTTL())
	documents := cache.New(Config.Cache.DocumentsMaxSize, Config.CacheTTL())

	pool := worker.New(worker.Config{
		CoreSize:       Config.Async.CorePoolSize,
		MaxSize:        Config.Async.MaxPoolSize,
		QueueSize:      Config.Async.QueueSize,
		NamePrefix:     Config.Async.ThreadNamePrefix,
		WaitOnShutdown: Config.Async.WaitTasksOnShutdown,
	})

	cleanup := services.NewCleanupService(DB, Logger, bodies, documents)
	cleanup.SetRetentionPeriod(Config.CacheTTL())

	serviceContainer = &services.Container{
		Film:      services.NewFilm(Config, resolver, omdb, asm, bodies, documents, m, Logger),
		OMDb:      omdb,
		Bodies:    bodies,
		Documents: documents,
		DB:        DB,
		Pool:      pool,
		Cleanup:   cleanup,
		Metrics:   m,
		Logger:    Logger,
	}

	handler = handlers.New(serviceContainer, Config)

	Logger.Infof("[App] services initialized successfully")
}
