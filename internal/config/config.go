package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	DefaultFavoritePlayers   = "SINNER,DJOKOVIC,DJOKOVIĆ,ALCARAZ"
	DefaultReferenceTimezone = "Asia/Kolkata"
	DefaultReminderTime      = "18:41"
	DefaultFeedSources       = "ATP=https://site.api.espn.com/apis/site/v2/sports/tennis/atp/scoreboard," +
		"WTA=https://site.api.espn.com/apis/site/v2/sports/tennis/wta/scoreboard"
)

// FeedSource is one configured scoreboard feed.
type FeedSource struct {
	ID  string
	URL string
}

type CircuitConfig struct {
	Enabled        bool
	FailureCount   int
	OpenTimeout    time.Duration
	HalfOpenMaxReq int
}

// Config stores runtime configuration for the service. It is read once at
// startup and not changed afterwards.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	MetricsEnabled     bool

	FavoritePlayers []string
	Location        *time.Location

	ReminderEnabled   bool
	ReminderTime      string
	ReminderHour      int
	ReminderMinute    int
	ReminderBuffer    time.Duration
	ReminderSkipEmpty bool
	DeliveryWorkers   int

	FeedSources      []FeedSource
	FeedUserAgent    string
	FeedTimeout      time.Duration
	FeedMaxRetries   int
	FeedRetryBackoff time.Duration
	FeedCircuit      CircuitConfig
	FeedCacheTTL     time.Duration
	FeedWarmupCron   string

	TelegramEnabled        bool
	TelegramToken          string
	TelegramBaseURL        string
	TelegramTimeout        time.Duration
	TelegramParseMode      string
	TelegramPollingEnabled bool
	TelegramPollTimeout    time.Duration
	TelegramCircuit        CircuitConfig

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

// Load reads the optional YAML file named by APP_CONFIG_FILE, overlays the
// process environment and validates the result. Keys are the environment
// variable names; the YAML file may spell them in lower case.
func Load() (Config, error) {
	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load APP_CONFIG_FILE %q: %w", path, err)
		}
	}
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	return parse(source{k: k})
}

func parse(src source) (Config, error) {
	appEnv, err := parseAppEnv(src.get("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(src.get("APP_SERVICE_NAME", "tennis-reminder")),
		ServiceVersion:     strings.TrimSpace(src.get("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(src.get("APP_HTTP_ADDR", ":8080")),
		LogLevel:           logging.ParseLevel(src.get("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(src.get("CORS_ALLOWED_ORIGINS", "*")),
		FavoritePlayers:    splitCSV(src.get("FAVORITE_PLAYERS", DefaultFavoritePlayers)),
		FeedUserAgent:      strings.TrimSpace(src.get("FEED_USER_AGENT", "Mozilla/5.0")),
		FeedWarmupCron:     strings.TrimSpace(src.get("FEED_WARMUP_CRON", "")),
		TelegramToken:      strings.TrimSpace(src.get("TELEGRAM_TOKEN", "")),
		TelegramBaseURL:    strings.TrimSpace(src.get("TELEGRAM_BASE_URL", "https://api.telegram.org")),
		TelegramParseMode:  strings.TrimSpace(src.get("TELEGRAM_PARSE_MODE", "Markdown")),
		UptraceDSN:         strings.TrimSpace(src.get("UPTRACE_DSN", "")),
		PyroscopeAppName:   strings.TrimSpace(src.get("PYROSCOPE_APP_NAME", "tennis-reminder")),
		PprofAddr:          strings.TrimSpace(src.get("PPROF_ADDR", ":6060")),
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("APP_HTTP_ADDR must not be empty")
	}
	if len(cfg.FavoritePlayers) == 0 {
		return Config{}, fmt.Errorf("FAVORITE_PLAYERS must list at least one name")
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	if cfg.SwaggerEnabled, err = src.getBool("SWAGGER_ENABLED", swaggerDefault); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = src.getBool("METRICS_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = src.getPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = src.getPositiveDuration("APP_WRITE_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = src.getPositiveDuration("APP_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	zone := strings.TrimSpace(src.get("REFERENCE_TIMEZONE", DefaultReferenceTimezone))
	cfg.Location, err = time.LoadLocation(zone)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFERENCE_TIMEZONE: %w", err)
	}

	if cfg.ReminderEnabled, err = src.getBool("REMINDER_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	cfg.ReminderTime = strings.TrimSpace(src.get("REMINDER_TIME", DefaultReminderTime))
	cfg.ReminderHour, cfg.ReminderMinute, err = parseClock(cfg.ReminderTime)
	if err != nil {
		return Config{}, fmt.Errorf("parse REMINDER_TIME: %w", err)
	}
	if cfg.ReminderBuffer, err = src.getDuration("REMINDER_BUFFER", "2s"); err != nil {
		return Config{}, err
	}
	if cfg.ReminderBuffer < 0 {
		return Config{}, fmt.Errorf("REMINDER_BUFFER must be >= 0")
	}
	if cfg.ReminderSkipEmpty, err = src.getBool("REMINDER_SKIP_EMPTY", "true"); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryWorkers, err = src.getInt("DELIVERY_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryWorkers < 1 {
		return Config{}, fmt.Errorf("DELIVERY_WORKERS must be >= 1")
	}

	if cfg.FeedSources, err = parseFeedSources(src.get("FEED_SOURCES", DefaultFeedSources)); err != nil {
		return Config{}, fmt.Errorf("parse FEED_SOURCES: %w", err)
	}
	if cfg.FeedTimeout, err = src.getPositiveDuration("FEED_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.FeedMaxRetries, err = src.getInt("FEED_MAX_RETRIES", 1); err != nil {
		return Config{}, err
	}
	if cfg.FeedMaxRetries < 0 {
		return Config{}, fmt.Errorf("FEED_MAX_RETRIES must be >= 0")
	}
	if cfg.FeedRetryBackoff, err = src.getPositiveDuration("FEED_RETRY_BACKOFF", "300ms"); err != nil {
		return Config{}, err
	}
	if cfg.FeedCircuit, err = src.getCircuit("FEED"); err != nil {
		return Config{}, err
	}
	if cfg.FeedCacheTTL, err = src.getDuration("FEED_CACHE_TTL", "0s"); err != nil {
		return Config{}, err
	}
	if cfg.FeedCacheTTL < 0 {
		return Config{}, fmt.Errorf("FEED_CACHE_TTL must be >= 0")
	}
	if cfg.FeedWarmupCron != "" && cfg.FeedCacheTTL == 0 {
		return Config{}, fmt.Errorf("FEED_WARMUP_CRON requires FEED_CACHE_TTL > 0")
	}

	if cfg.TelegramEnabled, err = src.getBool("TELEGRAM_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.TelegramEnabled && cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_TOKEN is required when TELEGRAM_ENABLED=true")
	}
	if cfg.TelegramTimeout, err = src.getPositiveDuration("TELEGRAM_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.TelegramPollingEnabled, err = src.getBool("TELEGRAM_POLLING_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.TelegramPollingEnabled && !cfg.TelegramEnabled {
		return Config{}, fmt.Errorf("TELEGRAM_POLLING_ENABLED requires TELEGRAM_ENABLED=true")
	}
	if cfg.TelegramPollTimeout, err = src.getPositiveDuration("TELEGRAM_POLL_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.TelegramCircuit, err = src.getCircuit("TELEGRAM"); err != nil {
		return Config{}, err
	}

	if cfg.UptraceEnabled, err = src.getBool("UPTRACE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(src.get("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = src.getBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(src.get("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAuthToken = strings.TrimSpace(src.get("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(src.get("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(src.get("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = src.getPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = src.getBool("PPROF_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

// source resolves keys against the loaded koanf tree. Blank values fall back.
type source struct {
	k *koanf.Koanf
}

func (s source) get(key, fallback string) string {
	value := s.k.String(strings.ToLower(key))
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (s source) getBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(strings.TrimSpace(s.get(key, fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func (s source) getInt(key string, fallback int) (int, error) {
	out, err := strconv.Atoi(strings.TrimSpace(s.get(key, strconv.Itoa(fallback))))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func (s source) getDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(s.get(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func (s source) getPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := s.getDuration(key, fallback)
	if err != nil {
		return 0, err
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func (s source) getCircuit(prefix string) (CircuitConfig, error) {
	var (
		out CircuitConfig
		err error
	)
	if out.Enabled, err = s.getBool(prefix+"_CIRCUIT_ENABLED", "true"); err != nil {
		return CircuitConfig{}, err
	}
	if out.FailureCount, err = s.getInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return CircuitConfig{}, err
	}
	if out.FailureCount < 1 {
		return CircuitConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	if out.OpenTimeout, err = s.getPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return CircuitConfig{}, err
	}
	if out.HalfOpenMaxReq, err = s.getInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return CircuitConfig{}, err
	}
	if out.HalfOpenMaxReq < 1 {
		return CircuitConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}
	return out, nil
}

// parseClock parses a 24h "HH:MM".
func parseClock(raw string) (int, int, error) {
	hourRaw, minuteRaw, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(hourRaw)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(minuteRaw)
	if err != nil || minute < 0 || minute > 59 || len(minuteRaw) != 2 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}

// parseFeedSources parses "ID=url,ID=url". IDs are upper-cased and must be
// unique; order is kept.
func parseFeedSources(raw string) ([]FeedSource, error) {
	out := make([]FeedSource, 0, 2)
	seen := make(map[string]struct{})
	for _, item := range splitCSV(raw) {
		id, url, ok := strings.Cut(item, "=")
		id = strings.ToUpper(strings.TrimSpace(id))
		url = strings.TrimSpace(url)
		if !ok || id == "" || url == "" {
			return nil, fmt.Errorf("invalid feed item %q, expected ID=url", item)
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return nil, fmt.Errorf("feed %s url must be http(s), got %q", id, url)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate feed id %q", id)
		}
		seen[id] = struct{}{}
		out = append(out, FeedSource{ID: id, URL: url})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one feed is required")
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

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
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
