package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/voterguide-backend/internal/clients/ballotready"
	"github.com/yungbote/voterguide-backend/internal/clients/democracyworks"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/clients/nominatim"
	"github.com/yungbote/voterguide-backend/internal/clients/redis"
	"github.com/yungbote/voterguide-backend/internal/data/db"
	"github.com/yungbote/voterguide-backend/internal/observability"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const devSessionSecret = "voterguide-dev-session-secret"

type Config struct {
	Port        string
	LogMode     string
	Environment string
	CORSOrigins []string

	DB db.Config

	GoogleCivic    googlecivic.Config
	DemocracyWorks democracyworks.Config
	BallotReady    ballotready.Config
	Nominatim      nominatim.Config

	ProviderTimeout  time.Duration
	Redis            redis.Config
	ProviderCacheTTL time.Duration

	SessionSecret     string
	SessionCookieName string
	SessionTTL        time.Duration
	CookieSecure      bool
	ShareSecret       string
	AnalyticsIPSalt   string

	MetricsEnabled bool
	MetricsAddr    string
	Otel           observability.OtelConfig
}

// envBindings maps config keys to their conventional environment names.
var envBindings = map[string]string{
	"port":                          "PORT",
	"log.mode":                      "LOG_MODE",
	"environment":                   "APP_ENV",
	"cors.origins":                  "CORS_ORIGINS",
	"db.driver":                     "DB_DRIVER",
	"db.sqlite_path":                "SQLITE_PATH",
	"db.postgres.host":              "POSTGRES_HOST",
	"db.postgres.port":              "POSTGRES_PORT",
	"db.postgres.user":              "POSTGRES_USER",
	"db.postgres.password":          "POSTGRES_PASSWORD",
	"db.postgres.name":              "POSTGRES_NAME",
	"db.postgres.sslmode":           "POSTGRES_SSLMODE",
	"providers.google_civic.key":    "GOOGLE_CIVIC_API_KEY",
	"providers.google_civic.url":    "GOOGLE_CIVIC_BASE_URL",
	"providers.democracy_works.key": "DEMOCRACY_WORKS_API_KEY",
	"providers.democracy_works.url": "DEMOCRACY_WORKS_BASE_URL",
	"providers.ballotready.key":     "BALLOTREADY_API_KEY",
	"providers.ballotready.url":     "BALLOTREADY_BASE_URL",
	"providers.timeout_seconds":     "PROVIDER_TIMEOUT_SECONDS",
	"providers.cache_ttl_seconds":   "PROVIDER_CACHE_TTL_SECONDS",
	"redis.addr":                    "REDIS_ADDR",
	"redis.password":                "REDIS_PASSWORD",
	"redis.db":                      "REDIS_DB",
	"geocoder.url":                  "NOMINATIM_BASE_URL",
	"geocoder.user_agent":           "GEOCODER_USER_AGENT",
	"geocoder.timeout_seconds":      "GEOCODER_TIMEOUT_SECONDS",
	"session.secret":                "SESSION_SECRET",
	"session.cookie_name":           "SESSION_COOKIE_NAME",
	"session.ttl_hours":             "SESSION_TTL_HOURS",
	"session.cookie_secure":         "SESSION_COOKIE_SECURE",
	"share.secret":                  "SHARE_TOKEN_SECRET",
	"analytics.ip_salt":             "ANALYTICS_IP_SALT",
	"metrics.enabled":               "METRICS_ENABLED",
	"metrics.addr":                  "METRICS_ADDR",
	"otel.enabled":                  "OTEL_ENABLED",
	"otel.service_name":             "OTEL_SERVICE_NAME",
	"otel.endpoint":                 "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel.headers":                  "OTEL_EXPORTER_OTLP_HEADERS",
	"otel.insecure":                 "OTEL_EXPORTER_OTLP_INSECURE",
	"otel.sampler_ratio":            "OTEL_SAMPLER_RATIO",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.mode", "development")
	v.SetDefault("environment", "development")
	v.SetDefault("db.driver", db.DriverPostgres)
	v.SetDefault("db.postgres.host", "localhost")
	v.SetDefault("db.postgres.port", "5432")
	v.SetDefault("db.postgres.user", "postgres")
	v.SetDefault("db.postgres.name", "voterguide")
	v.SetDefault("db.postgres.sslmode", "disable")
	v.SetDefault("providers.timeout_seconds", 15)
	v.SetDefault("providers.cache_ttl_seconds", 900)
	v.SetDefault("geocoder.user_agent", nominatim.DefaultUserAgent)
	v.SetDefault("geocoder.timeout_seconds", 10)
	v.SetDefault("session.cookie_name", "voter-guide-session")
	v.SetDefault("session.ttl_hours", 365*24)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("otel.service_name", "voterguide")
	v.SetDefault("otel.sampler_ratio", 0.1)
}

// LoadConfig reads defaults, then an optional voterguide.yaml, then the
// environment. Later sources win.
func LoadConfig(log *logger.Logger) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := strings.TrimSpace(os.Getenv("VOTERGUIDE_CONFIG")); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("voterguide")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	} else if log != nil {
		log.Info("Loaded config file", "path", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return fromViper(v, log), nil
}

func fromViper(v *viper.Viper, log *logger.Logger) Config {
	timeout := seconds(v, "providers.timeout_seconds")
	cfg := Config{
		Port:        v.GetString("port"),
		LogMode:     v.GetString("log.mode"),
		Environment: v.GetString("environment"),
		CORSOrigins: splitList(v.GetString("cors.origins")),
		DB: db.Config{
			Driver:           v.GetString("db.driver"),
			PostgresHost:     v.GetString("db.postgres.host"),
			PostgresPort:     v.GetString("db.postgres.port"),
			PostgresUser:     v.GetString("db.postgres.user"),
			PostgresPassword: v.GetString("db.postgres.password"),
			PostgresName:     v.GetString("db.postgres.name"),
			PostgresSSLMode:  v.GetString("db.postgres.sslmode"),
			SQLitePath:       v.GetString("db.sqlite_path"),
		},
		GoogleCivic: googlecivic.Config{
			APIKey:  v.GetString("providers.google_civic.key"),
			BaseURL: v.GetString("providers.google_civic.url"),
			Timeout: timeout,
		},
		DemocracyWorks: democracyworks.Config{
			APIKey:  v.GetString("providers.democracy_works.key"),
			BaseURL: v.GetString("providers.democracy_works.url"),
			Timeout: timeout,
		},
		BallotReady: ballotready.Config{
			APIKey:  v.GetString("providers.ballotready.key"),
			BaseURL: v.GetString("providers.ballotready.url"),
			Timeout: timeout,
		},
		Nominatim: nominatim.Config{
			BaseURL:   v.GetString("geocoder.url"),
			UserAgent: v.GetString("geocoder.user_agent"),
			Timeout:   seconds(v, "geocoder.timeout_seconds"),
		},
		ProviderTimeout: timeout,
		Redis: redis.Config{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		ProviderCacheTTL:  seconds(v, "providers.cache_ttl_seconds"),
		SessionSecret:     v.GetString("session.secret"),
		SessionCookieName: v.GetString("session.cookie_name"),
		SessionTTL:        time.Duration(v.GetInt("session.ttl_hours")) * time.Hour,
		CookieSecure:      v.GetBool("session.cookie_secure"),
		ShareSecret:       v.GetString("share.secret"),
		AnalyticsIPSalt:   v.GetString("analytics.ip_salt"),
		MetricsEnabled:    v.GetBool("metrics.enabled"),
		MetricsAddr:       v.GetString("metrics.addr"),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("otel.enabled"),
			ServiceName: v.GetString("otel.service_name"),
			Environment: v.GetString("environment"),
			Endpoint:    v.GetString("otel.endpoint"),
			Insecure:    v.GetBool("otel.insecure"),
			Headers:     observability.ParseHeaders(v.GetString("otel.headers")),
			SampleRatio: v.GetFloat64("otel.sampler_ratio"),
		},
	}

	if cfg.SessionSecret == "" {
		if log != nil {
			log.Warn("SESSION_SECRET not set; using development secret")
		}
		cfg.SessionSecret = devSessionSecret
	}
	if cfg.ShareSecret == "" {
		cfg.ShareSecret = cfg.SessionSecret
	}
	if cfg.AnalyticsIPSalt == "" {
		cfg.AnalyticsIPSalt = cfg.SessionSecret
	}
	if cfg.GoogleCivic.APIKey == "" && log != nil {
		log.Warn("GOOGLE_CIVIC_API_KEY not set; live ballot lookups disabled")
	}
	return cfg
}

func seconds(v *viper.Viper, key string) time.Duration {
	n := v.GetInt(key)
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
