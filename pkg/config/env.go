package config

// EnvPrefix is handed to envconfig; every field carries an explicit TABLESIGHT_ name.
const EnvPrefix = "TABLESIGHT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "TABLESIGHT_APP_ENV"
	EnvPort     = "TABLESIGHT_APP_PORT"
	EnvDBDSN    = "TABLESIGHT_DB_DSN"
	EnvDBHost   = "TABLESIGHT_DB_HOST"
	EnvDBUser   = "TABLESIGHT_DB_USER"
	EnvDBName   = "TABLESIGHT_DB_NAME"
	EnvRedisURL = "TABLESIGHT_REDIS_URL"

	EnvAnomalyThreshold = "TABLESIGHT_CORRELATION_ANOMALY_THRESHOLD_PCT"
	EnvToastMaxRetries  = "TABLESIGHT_TOAST_MAX_RETRIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
