package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-pipeline/internal/database"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/handlers"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/memory"
	"media-pipeline/internal/metrics"
	"media-pipeline/internal/middleware"
	"media-pipeline/internal/startup"
	"media-pipeline/internal/transcoder"

	"github.com/gorilla/mux"
)

const (
	metricsInterval = 30 * time.Second
	pruneInterval   = time.Hour
	shutdownTimeout = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	startup.LogMemoryConfig(memory.ConfigureFromEnv())
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	if config.MetricsEnabled {
		filesystem.SetObserver(metrics.NewFilesystemObserver())
		metrics.InitializeMetrics()
		info := startup.GetBuildInfo()
		metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	}

	// Initialize the history ledger
	var db *database.Database
	var collector *metrics.Collector
	if config.HistoryEnabled {
		dbStart := time.Now()
		db, err = database.New(context.Background(), config.DatabasePath)
		if err != nil {
			startup.LogFatal("Failed to initialize database: %v", err)
		}
		startup.LogDatabaseInit(time.Since(dbStart))

		go pruneHistory(db, config.HistoryRetention)

		if config.MetricsEnabled {
			collector = metrics.NewCollector(db, metricsInterval)
			collector.Start()
		}
	}

	// Initialize transcoder
	opts := transcoder.Options{
		MaxCapacity:  config.MaxBufferBytes,
		Backpressure: monitor,
	}
	if config.MetricsEnabled {
		opts.Observer = metrics.NewTranscoderObserver()
	}
	trans := transcoder.New(opts)
	startup.LogTranscoderInit(trans, config.Workers)

	// Initialize handlers
	h := handlers.New(trans, db, monitor, handlers.Options{
		MaxBufferBytes: config.MaxBufferBytes,
		MaxBatchSize:   config.MaxBatchSize,
		Workers:        config.Workers,
	})

	// Setup router
	router := setupRouter(h, config.MetricsEnabled)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      0, // streamed responses set per-write deadlines
		IdleTimeout:       60 * time.Second,
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		handleShutdown(srv, monitor, collector, db)
		close(done)
	}()

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		HistoryEnabled:  config.HistoryEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	}

	// API routes sit on the root router so a wrong method on a known path
	// reaches MethodNotAllowedHandler.
	var instrument func(http.Handler) http.Handler
	if metricsEnabled {
		instrument = middleware.Metrics(middleware.DefaultMetricsConfig())
	}
	api := func(path string, fn http.HandlerFunc, method string) {
		var handler http.Handler = fn
		if instrument != nil {
			handler = instrument(handler)
		}
		r.Handle(path, handler).Methods(method)
	}
	api("/api/transform", h.Transform, "POST")
	api("/api/transform/raw/{kind}/{op}", h.TransformRaw, "POST")
	api("/api/batch", h.Batch, "POST")
	api("/api/formats", h.GetFormats, "GET")
	api("/api/history", h.GetHistory, "GET")
	api("/api/stats", h.GetStats, "GET")

	return r
}

// pruneHistory deletes rows older than retention once an hour.
func pruneHistory(db *database.Database, retention time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for range ticker.C {
		n, err := db.PruneBefore(context.Background(), time.Now().Add(-retention))
		if err != nil {
			logging.Warn("Failed to prune transform history: %v", err)
			continue
		}
		if n > 0 {
			logging.Info("Pruned %d transform history records older than %v", n, retention)
		}
	}
}

func handleShutdown(srv *http.Server, monitor *memory.Monitor, collector *metrics.Collector, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if db != nil {
		startup.LogShutdownStep("Closing database")
		if err := db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Database closed")
		}
	}

	startup.LogShutdownComplete()
}
