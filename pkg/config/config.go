package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	API          APIConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	BigQuery     BigQueryConfig
	PubSub       PubSubConfig
	Toast        ToastConfig
	Square       SquareConfig
	Weather      WeatherConfig
	Correlation  CorrelationConfig
	Sync         SyncConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TABLESIGHT_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLESIGHT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLESIGHT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLESIGHT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TABLESIGHT_SERVICE_KIND" default:"api"`
}

// APIConfig holds HTTP surface settings.
type APIConfig struct {
	CORSAllowedOrigins []string      `envconfig:"TABLESIGHT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	SyncRateLimit      int           `envconfig:"TABLESIGHT_API_SYNC_RATE_LIMIT" default:"6"`
	SyncRateWindow     time.Duration `envconfig:"TABLESIGHT_API_SYNC_RATE_WINDOW" default:"1h"`
	ReadTimeout        time.Duration `envconfig:"TABLESIGHT_API_READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"TABLESIGHT_API_WRITE_TIMEOUT" default:"5m"`
	ShutdownTimeout    time.Duration `envconfig:"TABLESIGHT_API_SHUTDOWN_TIMEOUT" default:"20s"`
}

type DBConfig struct {
	DSN    string `envconfig:"TABLESIGHT_DB_DSN"`
	Driver string `envconfig:"TABLESIGHT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABLESIGHT_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLESIGHT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLESIGHT_DB_USER"`
	LegacyPassword string `envconfig:"TABLESIGHT_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLESIGHT_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLESIGHT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLESIGHT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLESIGHT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLESIGHT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLESIGHT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLESIGHT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABLESIGHT_REDIS_ADDR"`
	Password     string        `envconfig:"TABLESIGHT_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLESIGHT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLESIGHT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLESIGHT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLESIGHT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLESIGHT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLESIGHT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"TABLESIGHT_AUTO_MIGRATE" default:"false"`
	WarehouseExport bool `envconfig:"TABLESIGHT_FEATURE_WAREHOUSE_EXPORT" default:"false"`
	PublishEvents   bool `envconfig:"TABLESIGHT_FEATURE_PUBLISH_EVENTS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TABLESIGHT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TABLESIGHT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TABLESIGHT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"TABLESIGHT_BIGQUERY_DATASET" default:"tablesight"`
	DailyRevenueTable   string `envconfig:"TABLESIGHT_BIGQUERY_DAILY_REVENUE_TABLE" default:"daily_revenue_facts"`
	DaypartTable        string `envconfig:"TABLESIGHT_BIGQUERY_DAYPART_TABLE" default:"daypart_facts"`
	RevenueCenterTable  string `envconfig:"TABLESIGHT_BIGQUERY_REVENUE_CENTER_TABLE" default:"revenue_center_facts"`
	InsertBatchSize     int    `envconfig:"TABLESIGHT_BIGQUERY_INSERT_BATCH_SIZE" default:"200"`
	InsertMaxAttempts   int    `envconfig:"TABLESIGHT_BIGQUERY_INSERT_MAX_ATTEMPTS" default:"3"`
}

type PubSubConfig struct {
	FactsTopic string `envconfig:"TABLESIGHT_PUBSUB_FACTS_TOPIC" default:"ts-facts-synced"`
}

// ToastConfig holds the Toast REST credentials and the paging budget.
type ToastConfig struct {
	BaseURL           string        `envconfig:"TABLESIGHT_TOAST_BASE_URL" default:"https://ws-api.toasttab.com"`
	AccessToken       string        `envconfig:"TABLESIGHT_TOAST_ACCESS_TOKEN"`
	PageSize          int           `envconfig:"TABLESIGHT_TOAST_PAGE_SIZE" default:"100"`
	RequestsPerMinute int           `envconfig:"TABLESIGHT_TOAST_REQUESTS_PER_MINUTE" default:"120"`
	MaxConcurrent     int           `envconfig:"TABLESIGHT_TOAST_MAX_CONCURRENT" default:"4"`
	MaxRetries        uint64        `envconfig:"TABLESIGHT_TOAST_MAX_RETRIES" default:"5"`
	BaseBackoff       time.Duration `envconfig:"TABLESIGHT_TOAST_BASE_BACKOFF" default:"500ms"`
	MaxBackoff        time.Duration `envconfig:"TABLESIGHT_TOAST_MAX_BACKOFF" default:"30s"`
	RequestTimeout    time.Duration `envconfig:"TABLESIGHT_TOAST_REQUEST_TIMEOUT" default:"30s"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"TABLESIGHT_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"TABLESIGHT_SQUARE_ENV" default:"sandbox"`
	PageLimit   int    `envconfig:"TABLESIGHT_SQUARE_PAGE_LIMIT" default:"500"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// WeatherConfig controls the Open-Meteo archive client and the upstream condition flags.
type WeatherConfig struct {
	BaseURL        string        `envconfig:"TABLESIGHT_WEATHER_BASE_URL" default:"https://archive-api.open-meteo.com"`
	RequestTimeout time.Duration `envconfig:"TABLESIGHT_WEATHER_REQUEST_TIMEOUT" default:"20s"`
	RainyInches    float64       `envconfig:"TABLESIGHT_WEATHER_RAINY_INCHES" default:"0.1"`
	HeatHighF      float64       `envconfig:"TABLESIGHT_WEATHER_HEAT_HIGH_F" default:"90"`
	ColdHighF      float64       `envconfig:"TABLESIGHT_WEATHER_COLD_HIGH_F" default:"35"`
	SevereInches   float64       `envconfig:"TABLESIGHT_WEATHER_SEVERE_INCHES" default:"2"`
	SevereGustMPH  float64       `envconfig:"TABLESIGHT_WEATHER_SEVERE_GUST_MPH" default:"45"`
}

type CorrelationConfig struct {
	AnomalyThresholdPct float64 `envconfig:"TABLESIGHT_CORRELATION_ANOMALY_THRESHOLD_PCT" default:"20"`
	MaxAnomalies        int     `envconfig:"TABLESIGHT_CORRELATION_MAX_ANOMALIES" default:"10"`
	LookbackMonths      int     `envconfig:"TABLESIGHT_CORRELATION_LOOKBACK_MONTHS" default:"12"`
	PromptMaxChars      int     `envconfig:"TABLESIGHT_CORRELATION_PROMPT_MAX_CHARS" default:"1500"`
}

type SyncConfig struct {
	LockTTL           time.Duration `envconfig:"TABLESIGHT_SYNC_LOCK_TTL" default:"30m"`
	NightlyLookback   int           `envconfig:"TABLESIGHT_SYNC_NIGHTLY_LOOKBACK_DAYS" default:"3"`
	CronInterval      time.Duration `envconfig:"TABLESIGHT_SYNC_CRON_INTERVAL" default:"24h"`
	MaxRangeDays      int           `envconfig:"TABLESIGHT_SYNC_MAX_RANGE_DAYS" default:"120"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
