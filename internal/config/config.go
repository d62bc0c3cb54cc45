package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Drivers selectable through STORE_DRIVER and AUTH_DRIVER.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           logging.Level
	LogFormat          logging.Format
	CORSAllowedOrigins []string
	SwaggerEnabled     bool

	StoreDriver string
	AuthDriver  string

	SupabaseURL                   string
	SupabaseAnonKey               string
	SupabaseTimeout               time.Duration
	SupabaseCircuitEnabled        bool
	SupabaseCircuitFailureCount   int
	SupabaseCircuitOpenTimeout    time.Duration
	SupabaseCircuitHalfOpenMaxReq int

	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SessionFile       string
	SessionRevalidate bool
	MemoryAuthSecret  string

	UnscopedListEnabled bool
	CascadeWorkers      int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

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
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	storeDriver, err := parseDriver("STORE_DRIVER", getEnv("STORE_DRIVER", DriverSupabase))
	if err != nil {
		return Config{}, err
	}
	authDefault := storeDriver
	if storeDriver == DriverPostgres {
		authDefault = DriverMemory
	}
	authDriver, err := parseDriver("AUTH_DRIVER", getEnv("AUTH_DRIVER", authDefault))
	if err != nil {
		return Config{}, err
	}
	if authDriver == DriverPostgres {
		return Config{}, fmt.Errorf("AUTH_DRIVER=postgres is not supported: use %s or %s", DriverSupabase, DriverMemory)
	}

	supabaseURL := strings.TrimRight(strings.TrimSpace(getEnv("SUPABASE_URL", "")), "/")
	supabaseAnonKey := strings.TrimSpace(getEnv("SUPABASE_ANON_KEY", ""))
	if storeDriver == DriverSupabase || authDriver == DriverSupabase {
		if supabaseURL == "" {
			return Config{}, fmt.Errorf("SUPABASE_URL is required when the supabase driver is selected")
		}
		if supabaseAnonKey == "" {
			return Config{}, fmt.Errorf("SUPABASE_ANON_KEY is required when the supabase driver is selected")
		}
	}

	supabaseTimeout, err := time.ParseDuration(getEnv("SUPABASE_TIMEOUT", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_TIMEOUT: %w", err)
	}
	if supabaseTimeout < 0 {
		return Config{}, fmt.Errorf("SUPABASE_TIMEOUT must be >= 0")
	}

	supabaseCircuitEnabled, err := strconv.ParseBool(getEnv("SUPABASE_CIRCUIT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_ENABLED: %w", err)
	}
	supabaseCircuitFailureCount, err := getEnvAsInt("SUPABASE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if supabaseCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SUPABASE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	supabaseCircuitOpenTimeout, err := time.ParseDuration(getEnv("SUPABASE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if supabaseCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SUPABASE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	supabaseCircuitHalfOpenMaxReq, err := getEnvAsInt("SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if supabaseCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SUPABASE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == DriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	dbConnMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}

	sessionRevalidate, err := strconv.ParseBool(getEnv("SESSION_REVALIDATE", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_REVALIDATE: %w", err)
	}

	memoryAuthSecret := getEnv("MEMORY_AUTH_SECRET", "")
	if authDriver == DriverMemory && strings.TrimSpace(memoryAuthSecret) == "" {
		return Config{}, fmt.Errorf("MEMORY_AUTH_SECRET is required when AUTH_DRIVER=memory")
	}

	unscopedListEnabled, err := strconv.ParseBool(getEnv("UNSCOPED_LIST_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UNSCOPED_LIST_ENABLED: %w", err)
	}
	cascadeWorkers, err := getEnvAsInt("CASCADE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse CASCADE_WORKERS: %w", err)
	}
	if cascadeWorkers < 1 {
		return Config{}, fmt.Errorf("CASCADE_WORKERS must be >= 1")
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

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	logFormat, err := logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatJSON)))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_FORMAT: %w", err)
	}

	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "competition-manager-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		ShutdownTimeout:               shutdownTimeout,
		LogLevel:                      logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                     logFormat,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:                swaggerEnabled,
		StoreDriver:                   storeDriver,
		AuthDriver:                    authDriver,
		SupabaseURL:                   supabaseURL,
		SupabaseAnonKey:               supabaseAnonKey,
		SupabaseTimeout:               supabaseTimeout,
		SupabaseCircuitEnabled:        supabaseCircuitEnabled,
		SupabaseCircuitFailureCount:   supabaseCircuitFailureCount,
		SupabaseCircuitOpenTimeout:    supabaseCircuitOpenTimeout,
		SupabaseCircuitHalfOpenMaxReq: supabaseCircuitHalfOpenMaxReq,
		DBURL:                         dbURL,
		DBMaxOpenConns:                dbMaxOpenConns,
		DBMaxIdleConns:                dbMaxIdleConns,
		DBConnMaxLifetime:             dbConnMaxLifetime,
		SessionFile:                   strings.TrimSpace(getEnv("SESSION_FILE", "data/session.json")),
		SessionRevalidate:             sessionRevalidate,
		MemoryAuthSecret:              memoryAuthSecret,
		UnscopedListEnabled:           unscopedListEnabled,
		CascadeWorkers:                cascadeWorkers,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
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

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
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

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseDriver(key, v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case DriverSupabase, DriverPostgres, DriverMemory:
		return value, nil
	default:
		return "", fmt.Errorf("invalid %s %q: valid values are %s, %s, %s", key, v, DriverSupabase, DriverPostgres, DriverMemory)
	}
}
