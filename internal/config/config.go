package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikdesigns/esports-track/internal/platform/logging"
	"github.com/nikdesigns/esports-track/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string

	CacheEnabled       bool
	CacheDir           string
	CacheMirrorEnabled bool
	CacheTTLMatches    time.Duration
	CacheTTLHeroes     time.Duration
	CacheTTLHeroStats  time.Duration
	CacheTTLRankings   time.Duration
	CacheTTLTeams      time.Duration
	CacheTTLVideogames time.Duration

	PandaScoreAPIKey     string
	PandaScoreBaseURL    string
	PandaScoreTimeout    time.Duration
	PandaScoreMaxRetries int
	PandaScoreCircuit    resilience.CircuitBreakerConfig

	StratzAPIURL     string
	StratzAPIKey     string
	StratzTimeout    time.Duration
	StratzMaxRetries int
	StratzCircuit    resilience.CircuitBreakerConfig

	OpenDotaBaseURL    string
	OpenDotaTimeout    time.Duration
	OpenDotaMaxRetries int
	OpenDotaCircuit    resilience.CircuitBreakerConfig

	UpstreamBackoffBase time.Duration
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}

	corsAllowedOrigins := splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(corsAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	cacheEnabled, err := getEnvAsBool("CACHE_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	cacheMirrorEnabled, err := getEnvAsBool("CACHE_MIRROR_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	cacheDir := strings.TrimSpace(os.Getenv("CACHE_DIR"))
	if cacheMirrorEnabled && cacheDir == "" {
		return Config{}, fmt.Errorf("CACHE_DIR is required when CACHE_MIRROR_ENABLED=true")
	}

	cacheTTLMatches, err := getEnvAsDuration("CACHE_TTL_MATCHES", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	cacheTTLHeroes, err := getEnvAsDuration("CACHE_TTL_HEROES", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cacheTTLHeroStats, err := getEnvAsDuration("CACHE_TTL_HERO_STATS", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTLRankings, err := getEnvAsDuration("CACHE_TTL_RANKINGS", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTLTeams, err := getEnvAsDuration("CACHE_TTL_TEAMS", time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTLVideogames, err := getEnvAsDuration("CACHE_TTL_VIDEOGAMES", time.Minute)
	if err != nil {
		return Config{}, err
	}

	pandaScoreTimeout, err := getEnvAsDuration("PANDASCORE_TIMEOUT", 12*time.Second)
	if err != nil {
		return Config{}, err
	}
	pandaScoreMaxRetries, err := getEnvAsRetries("PANDASCORE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	pandaScoreCircuit, err := parseCircuit("PANDASCORE")
	if err != nil {
		return Config{}, err
	}

	stratzTimeout, err := getEnvAsDuration("STRATZ_TIMEOUT", 12*time.Second)
	if err != nil {
		return Config{}, err
	}
	stratzMaxRetries, err := getEnvAsRetries("STRATZ_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, err
	}
	stratzCircuit, err := parseCircuit("STRATZ")
	if err != nil {
		return Config{}, err
	}

	openDotaTimeout, err := getEnvAsDuration("OPENDOTA_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	openDotaMaxRetries, err := getEnvAsRetries("OPENDOTA_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	openDotaCircuit, err := parseCircuit("OPENDOTA")
	if err != nil {
		return Config{}, err
	}

	upstreamBackoffBase, err := getEnvAsDuration("UPSTREAM_BACKOFF_BASE", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "esports-track-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: corsAllowedOrigins,

		CacheEnabled:       cacheEnabled,
		CacheDir:           cacheDir,
		CacheMirrorEnabled: cacheMirrorEnabled,
		CacheTTLMatches:    cacheTTLMatches,
		CacheTTLHeroes:     cacheTTLHeroes,
		CacheTTLHeroStats:  cacheTTLHeroStats,
		CacheTTLRankings:   cacheTTLRankings,
		CacheTTLTeams:      cacheTTLTeams,
		CacheTTLVideogames: cacheTTLVideogames,

		PandaScoreAPIKey:     strings.TrimSpace(getEnv("PANDASCORE_API_KEY", "")),
		PandaScoreBaseURL:    strings.TrimSpace(getEnv("PANDASCORE_BASE_URL", "https://api.pandascore.co")),
		PandaScoreTimeout:    pandaScoreTimeout,
		PandaScoreMaxRetries: pandaScoreMaxRetries,
		PandaScoreCircuit:    pandaScoreCircuit,

		// no default URL: an absent Stratz configuration must leave the
		// GraphQL feed unconfigured so the aggregator skips it
		StratzAPIURL:     strings.TrimSpace(os.Getenv("STRATZ_API_URL")),
		StratzAPIKey:     strings.TrimSpace(getEnv("STRATZ_API_KEY", "")),
		StratzTimeout:    stratzTimeout,
		StratzMaxRetries: stratzMaxRetries,
		StratzCircuit:    stratzCircuit,

		OpenDotaBaseURL:    strings.TrimSpace(getEnv("OPENDOTA_BASE_URL", "https://api.opendota.com/api")),
		OpenDotaTimeout:    openDotaTimeout,
		OpenDotaMaxRetries: openDotaMaxRetries,
		OpenDotaCircuit:    openDotaCircuit,

		UpstreamBackoffBase: upstreamBackoffBase,
	}, nil
}

func parseCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	enabled, err := getEnvAsBool(prefix+"_CIRCUIT_ENABLED", true)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	if failureCount < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", 15*time.Second)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	if halfOpenMaxReq < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}, nil
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

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsRetries(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, err
	}
	if out < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
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
