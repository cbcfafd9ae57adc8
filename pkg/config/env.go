package config

// EnvPrefix is handed to envconfig; every field carries an explicit ARES_* name.
const EnvPrefix = "ARES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StoreDriverGorm   = "gorm"
	StoreDriverMemory = "memory"
)

const (
	EnvAppEnv      = "ARES_APP_ENV"
	EnvPort        = "ARES_APP_PORT"
	EnvDBDSN       = "ARES_DB_DSN"
	EnvDBDriver    = "ARES_DB_DRIVER"
	EnvDBHost      = "ARES_DB_HOST"
	EnvDBUser      = "ARES_DB_USER"
	EnvDBPassword  = "ARES_DB_PASSWORD"
	EnvDBName      = "ARES_DB_NAME"
	EnvStoreDriver = "ARES_STORE_DRIVER"
	EnvRedisURL    = "ARES_REDIS_URL"
	EnvJWTSecret   = "ARES_JWT_SECRET"
	EnvJWTIssuer   = "ARES_JWT_ISSUER"
	EnvGCPProject  = "ARES_GCP_PROJECT_ID"
	EnvPubSubTopic = "ARES_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubSub   = "ARES_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvNATSURL     = "ARES_NATS_URL"
	EnvNotifyQueue = "ARES_NOTIFY_QUEUE_SIZE"
	EnvOrigins     = "ARES_REALTIME_ALLOWED_ORIGINS"
)

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
