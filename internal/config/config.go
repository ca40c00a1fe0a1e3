package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fpl-insights/internal/platform/logging"
	"github.com/riskibarqy/fpl-insights/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	LogLevel           logging.Level

	// DBURL is optional: when empty refresh runs are kept in memory only.
	DBURL                   string
	DBDisablePreparedBinary bool

	RefreshHours []int
	ViewCacheTTL time.Duration

	StatsBaseURL      string
	StatsSeason       string
	StatsSeasonStart  time.Time
	StatsTimeout      time.Duration
	StatsMaxRetries   int
	StatsProbeSpan    int
	StatsProbeWorkers int
	StatsCircuit      resilience.CircuitBreakerConfig

	FPLBaseURL      string
	FPLTimeout      time.Duration
	FPLMaxRetries   int
	FPLBootstrapTTL time.Duration
	FPLCircuit      resilience.CircuitBreakerConfig

	HeadlineEndpoint   string
	HeadlineAPIKey     string
	HeadlineTimeout    time.Duration
	HeadlineMaxRetries int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	refreshHours, err := parseHours(getEnv("REFRESH_HOURS", "5,17"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_HOURS: %w", err)
	}

	viewCacheTTL, err := time.ParseDuration(getEnv("VIEW_CACHE_TTL", "12h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse VIEW_CACHE_TTL: %w", err)
	}
	if viewCacheTTL <= 0 {
		return Config{}, fmt.Errorf("VIEW_CACHE_TTL must be > 0")
	}

	statsTimeout, err := time.ParseDuration(getEnv("STATS_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_TIMEOUT: %w", err)
	}
	if statsTimeout <= 0 {
		return Config{}, fmt.Errorf("STATS_TIMEOUT must be > 0")
	}
	statsMaxRetries, err := getEnvAsInt("STATS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_MAX_RETRIES: %w", err)
	}
	if statsMaxRetries < 0 {
		return Config{}, fmt.Errorf("STATS_MAX_RETRIES must be >= 0")
	}
	statsProbeSpan, err := getEnvAsInt("STATS_PROBE_SPAN", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_PROBE_SPAN: %w", err)
	}
	if statsProbeSpan < 1 {
		return Config{}, fmt.Errorf("STATS_PROBE_SPAN must be >= 1")
	}
	statsProbeWorkers, err := getEnvAsInt("STATS_PROBE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_PROBE_WORKERS: %w", err)
	}
	if statsProbeWorkers < 1 {
		return Config{}, fmt.Errorf("STATS_PROBE_WORKERS must be >= 1")
	}
	statsSeasonStart, err := time.Parse("2006-01-02", getEnv("STATS_SEASON_START", "2025-08-16"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_SEASON_START: %w", err)
	}
	statsCircuit, err := loadCircuit("STATS")
	if err != nil {
		return Config{}, err
	}

	fplTimeout, err := time.ParseDuration(getEnv("FPL_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_TIMEOUT: %w", err)
	}
	if fplTimeout <= 0 {
		return Config{}, fmt.Errorf("FPL_TIMEOUT must be > 0")
	}
	fplMaxRetries, err := getEnvAsInt("FPL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_MAX_RETRIES: %w", err)
	}
	if fplMaxRetries < 0 {
		return Config{}, fmt.Errorf("FPL_MAX_RETRIES must be >= 0")
	}
	fplBootstrapTTL, err := time.ParseDuration(getEnv("FPL_BOOTSTRAP_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_BOOTSTRAP_TTL: %w", err)
	}
	if fplBootstrapTTL <= 0 {
		return Config{}, fmt.Errorf("FPL_BOOTSTRAP_TTL must be > 0")
	}
	fplCircuit, err := loadCircuit("FPL")
	if err != nil {
		return Config{}, err
	}

	headlineTimeout, err := time.ParseDuration(getEnv("HEADLINE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HEADLINE_TIMEOUT: %w", err)
	}
	if headlineTimeout <= 0 {
		return Config{}, fmt.Errorf("HEADLINE_TIMEOUT must be > 0")
	}
	headlineMaxRetries, err := getEnvAsInt("HEADLINE_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse HEADLINE_MAX_RETRIES: %w", err)
	}
	if headlineMaxRetries < 0 {
		return Config{}, fmt.Errorf("HEADLINE_MAX_RETRIES must be >= 0")
	}
	headlineEndpoint := strings.TrimSpace(getEnv("HEADLINE_ENDPOINT", ""))
	headlineAPIKey := strings.TrimSpace(getEnv("HEADLINE_API_KEY", ""))
	if headlineEndpoint != "" && headlineAPIKey == "" {
		return Config{}, fmt.Errorf("HEADLINE_API_KEY is required when HEADLINE_ENDPOINT is set")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "fpl-insights-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     swaggerEnabled,
		LogLevel:           logLevel,

		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		RefreshHours: refreshHours,
		ViewCacheTTL: viewCacheTTL,

		StatsBaseURL:      strings.TrimSpace(getEnv("STATS_BASE_URL", "")),
		StatsSeason:       strings.TrimSpace(getEnv("STATS_SEASON", "2025-2026")),
		StatsSeasonStart:  statsSeasonStart,
		StatsTimeout:      statsTimeout,
		StatsMaxRetries:   statsMaxRetries,
		StatsProbeSpan:    statsProbeSpan,
		StatsProbeWorkers: statsProbeWorkers,
		StatsCircuit:      statsCircuit,

		FPLBaseURL:      strings.TrimSpace(getEnv("FPL_BASE_URL", "")),
		FPLTimeout:      fplTimeout,
		FPLMaxRetries:   fplMaxRetries,
		FPLBootstrapTTL: fplBootstrapTTL,
		FPLCircuit:      fplCircuit,

		HeadlineEndpoint:   headlineEndpoint,
		HeadlineAPIKey:     headlineAPIKey,
		HeadlineTimeout:    headlineTimeout,
		HeadlineMaxRetries: headlineMaxRetries,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		UptraceCaptureRequestBody:  uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes: uptraceRequestBodyMaxBytes,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// loadCircuit reads one upstream's circuit breaker settings, e.g. the
// STATS prefix maps to STATS_CIRCUIT_ENABLED and friends.
func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", strconv.FormatBool(defaults.Enabled)))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureThreshold, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureThreshold < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String()))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}
	halfOpenMaxCalls, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", defaults.HalfOpenMaxCalls)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxCalls < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxCalls: halfOpenMaxCalls,
	}, nil
}

// parseHours parses a comma-separated list of UTC hours like "5,17".
func parseHours(raw string) ([]int, error) {
	parts := splitCSV(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one hour is required")
	}

	out := make([]int, 0, len(parts))
	for _, part := range parts {
		hour, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q: %w", part, err)
		}
		if hour < 0 || hour > 23 {
			return nil, fmt.Errorf("hour %d is out of range", hour)
		}
		out = append(out, hour)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
