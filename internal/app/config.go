package app

import (
	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/persistence"
	"github.com/yungbote/competence-ledger/internal/platform/envutil"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/realtime"
)

type Config struct {
	Environment  string
	Port         string
	TaxonomyPath string
	CORSOrigins  []string

	StoreMode      string
	StoreKey       string
	FileDir        string
	SQLitePath     string
	PostgresHost   string
	PostgresPort   string
	PostgresUser   string
	PostgresPass   string
	PostgresName   string
	RedisAddr      string
	RedisKeyPrefix string
	RedisChannel   string
	NotifyRedis    bool

	MaxImportBytes int64
	MetricsEnabled bool
	OTel           observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.GetEnv("APP_ENV", "development", log)
	return Config{
		Environment:  env,
		Port:         envutil.GetEnv("PORT", "8080", log),
		TaxonomyPath: envutil.GetEnv("LEDGER_TAXONOMY_PATH", "", log),
		CORSOrigins:  envutil.GetEnvAsList("CORS_ALLOWED_ORIGINS", log),

		StoreMode:      envutil.GetEnv("LEDGER_STORE_MODE", string(StoreModeFile), log),
		StoreKey:       envutil.GetEnv("LEDGER_STORE_KEY", persistence.DefaultKey, log),
		FileDir:        envutil.GetEnv("LEDGER_FILE_DIR", "data", log),
		SQLitePath:     envutil.GetEnv("LEDGER_SQLITE_PATH", "data/ledger.db", log),
		PostgresHost:   envutil.GetEnv("POSTGRES_HOST", "localhost", log),
		PostgresPort:   envutil.GetEnv("POSTGRES_PORT", "5432", log),
		PostgresUser:   envutil.GetEnv("POSTGRES_USER", "postgres", log),
		PostgresPass:   envutil.GetEnv("POSTGRES_PASSWORD", "", log),
		PostgresName:   envutil.GetEnv("POSTGRES_NAME", "competence_ledger", log),
		RedisAddr:      envutil.GetEnv("REDIS_ADDR", "", log),
		RedisKeyPrefix: envutil.GetEnv("REDIS_KEY_PREFIX", "ledger:", log),
		RedisChannel:   envutil.GetEnv("REDIS_CHANNEL", realtime.DefaultChannel, log),
		NotifyRedis:    envutil.GetEnvAsBool("LEDGER_NOTIFY_REDIS", false, log),

		MaxImportBytes: int64(envutil.GetEnvAsInt("MAX_IMPORT_BYTES", persistence.DefaultMaxImportBytes, log)),
		MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", false, log),
		OTel: observability.OtelConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", observability.DefaultServiceName, log),
			Environment: env,
			Version:     envutil.GetEnv("APP_VERSION", "dev", log),
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}
