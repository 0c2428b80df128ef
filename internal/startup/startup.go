package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/memory"
	"media-pipeline/internal/transcoder"
	"media-pipeline/internal/workers"

	"github.com/gorilla/mux"
)

// Version, Commit and BuildTime are set with -ldflags -X at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is the body of GET /version.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo reports the running binary.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Defaults for values read by LoadConfig.
const (
	DefaultPort           = "8080"
	DefaultDatabaseDir    = "/database"
	DefaultMaxBufferBytes = transcoder.DefaultMaxCapacity
	DefaultMaxBatchSize   = 32
	DatabaseFileName      = "pipeline.db"

	// DefaultHistoryRetentionHours keeps a week of transform history.
	DefaultHistoryRetentionHours = 7 * 24
)

// Config is the server configuration read by LoadConfig.
type Config struct {
	Port            string
	DatabaseDir     string
	MaxBufferBytes  int
	MaxBatchSize    int
	Workers         int
	HistoryEnabled  bool
	MetricsEnabled  bool
	LogHealthChecks bool

	// HistoryRetention is the age after which history rows are pruned.
	HistoryRetention time.Duration

	// Derived
	DatabasePath string
}

// LoadConfig prints the startup banner, reads the environment and, when the
// history ledger is enabled, makes sure the database directory is writable.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logSection("CONFIGURATION")

	config, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  MAX_BUFFER_BYTES:    %d", config.MaxBufferBytes)
	logging.Info("  MAX_BATCH_SIZE:      %d", config.MaxBatchSize)
	logging.Info("  %-20s %d", workers.EnvOverride+":", config.Workers)
	logging.Info("  HISTORY_ENABLED:     %v", config.HistoryEnabled)
	logging.Info("  HISTORY_RETENTION:   %v", config.HistoryRetention)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if !config.HistoryEnabled {
		logging.Info("")
		logging.Info("  History ledger disabled, skipping database directory setup")
		return config, nil
	}

	logSection("DIRECTORY SETUP")
	logging.Info("  Database directory (absolute): %s", config.DatabaseDir)

	if err := ensureDirectory(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return config, nil
}

// configFromEnv reads the environment without touching the filesystem.
func configFromEnv() (*Config, error) {
	databaseDir, err := filepath.Abs(getEnv("DATABASE_DIR", DefaultDatabaseDir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}

	config := &Config{
		Port:            getEnv("PORT", DefaultPort),
		DatabaseDir:     databaseDir,
		MaxBufferBytes:  getEnvInt("MAX_BUFFER_BYTES", DefaultMaxBufferBytes),
		MaxBatchSize:    getEnvInt("MAX_BATCH_SIZE", DefaultMaxBatchSize),
		Workers:         workers.ForCPU(0),
		HistoryEnabled:  getEnvBool("HISTORY_ENABLED", true),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		DatabasePath:    filepath.Join(databaseDir, DatabaseFileName),

		HistoryRetention: time.Duration(getEnvInt("HISTORY_RETENTION_HOURS", DefaultHistoryRetentionHours)) * time.Hour,
	}

	if _, err := strconv.ParseUint(config.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid PORT %q", config.Port)
	}
	return config, nil
}

// LogMemoryConfig prints where the soft memory limit came from.
func LogMemoryConfig(result memory.ConfigResult) {
	logSection("MEMORY CONFIGURATION")

	switch result.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %d bytes (from environment)", result.GoMemLimit)
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %d bytes", result.ContainerLimit)
		logging.Info("  GOMEMLIMIT:      %d bytes (%.0f%%)", result.GoMemLimit, result.Ratio*100)
	default:
		logging.Info("  No memory limit configured, batch backpressure disabled")
	}
}

// LogDatabaseInit reports how long opening the ledger took.
func LogDatabaseInit(duration time.Duration) {
	logSection("DATABASE INITIALIZATION")
	logging.Info("  [OK] History ledger initialized in %v", duration)
}

// LogTranscoderInit prints the capacity bound and the registered strategies.
func LogTranscoderInit(t *transcoder.Transcoder, numWorkers int) {
	logSection("TRANSCODER INITIALIZATION")
	logging.Info("  Max capacity:    %d bytes", t.MaxCapacity())
	logging.Info("  Batch workers:   %d", numWorkers)

	regs := t.Registry().Formats()
	logging.Info("  Strategies:      %d registered", len(regs))
	for _, reg := range regs {
		logging.Debug("    %s", reg)
	}
}

// RouteInfo is one method and path pair from the router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes walks router and returns one entry per method.
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes lists the routes grouped by prefix when debug logging is on.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logSection("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			label := group
			if label == "" {
				label = "root"
			}
			logging.Debug("  [%s]", label)
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup returns "api/<name>" for API routes and the first segment otherwise.
func getRouteGroup(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if parts[0] == "api" && len(parts) > 1 {
		return "api/" + parts[1]
	}
	return parts[0]
}

// ServerConfig is what LogServerStarted prints.
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	HistoryEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted prints the endpoint summary.
func LogServerStarted(config ServerConfig) {
	logSection("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s/api", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("    History:       %s", enabledString(config.HistoryEnabled))
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
	logging.Info("")
}

// LogShutdownInitiated, LogShutdownStep, LogShutdownStepComplete and
// LogShutdownComplete narrate graceful shutdown.
func LogShutdownInitiated(signal string) {
	logSection("SHUTDOWN INITIATED (received %s)", signal)
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...any) {
	logging.Fatal(format, args...)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

const rule = "------------------------------------------------------------"

// logSection starts a titled block in the startup log.
func logSection(format string, args ...any) {
	logging.Info("")
	logging.Info(rule)
	logging.Info(format, args...)
	logging.Info(rule)
}

func printBanner() {
	banner := "\n" + rule + `
                   _ _                   _            _ _
  _ __ ___   ___ __| (_) __ _      _ __ (_)_ __   ___| (_)_ __   ___
 | '_ ' _ \ / _ \/ _' | |/ _' |____| '_ \| | '_ \ / _ \ | | '_ \ / _ \
 | | | | | |  __/ (_| | | (_| |____| |_) | | |_) |  __/ | | | | |  __/
 |_| |_| |_|\___|\__,_|_|\__,_|    | .__/|_| .__/ \___|_|_|_| |_|\___|
                                   |_|     |_|
` + rule
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logSection("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
	logging.Info("")
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := filesystem.WriteFile(testFile, []byte("test"), 0o644, filesystem.DefaultRetryConfig()); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envParsed reads key with parse, warning and using fallback when the value
// does not parse.
func envParsed[T any](key string, fallback T, what string, parse func(string) (T, bool)) T {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, ok := parse(raw)
	if !ok {
		logging.Warn("Invalid %s for %s: %q, using default: %v", what, key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	return envParsed(key, fallback, "boolean value", func(raw string) (bool, bool) {
		v, err := strconv.ParseBool(raw)
		return v, err == nil
	})
}

func getEnvInt(key string, fallback int) int {
	return envParsed(key, fallback, "positive integer", func(raw string) (int, bool) {
		v, err := strconv.Atoi(raw)
		return v, err == nil && v > 0
	})
}
