package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration shared by every cmd/ binary.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Store         StoreConfig
	Redis         RedisConfig
	JWT           JWTConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	NATS          NATSConfig
	Notifications NotificationsConfig
	Realtime      RealtimeConfig
	Roster        RosterConfig
	FeatureFlags  FeatureFlagsConfig
}

// Load reads the ARES_* environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesDatabase() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARES_APP_ENV" required:"true"`
	Port         string `envconfig:"ARES_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ARES_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ARES_LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"ARES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARES_DB_DSN"`
	Driver string `envconfig:"ARES_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ARES_DB_HOST"`
	Port     int    `envconfig:"ARES_DB_PORT" default:"5432"`
	User     string `envconfig:"ARES_DB_USER"`
	Password string `envconfig:"ARES_DB_PASSWORD"`
	Name     string `envconfig:"ARES_DB_NAME"`
	SSLMode  string `envconfig:"ARES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARES_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"ARES_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// StoreConfig picks the backing implementation for alerts and acknowledgments.
type StoreConfig struct {
	Driver string `envconfig:"ARES_STORE_DRIVER" default:"gorm"`
}

// UsesDatabase reports whether repositories are backed by gorm.
func (s StoreConfig) UsesDatabase() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Driver), StoreDriverMemory)
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StoreDriverGorm, StoreDriverMemory:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvStoreDriver, StoreDriverGorm, StoreDriverMemory, s.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"ARES_REDIS_URL"`
	Address      string        `envconfig:"ARES_REDIS_ADDR"`
	Password     string        `envconfig:"ARES_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARES_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ARES_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"ARES_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARES_JWT_ISSUER" default:"ares-connect"`
	ExpirationMinutes int    `envconfig:"ARES_JWT_EXPIRATION_MINUTES" default:"720"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ARES_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"ARES_PUBSUB_NOTIFICATION_TOPIC"`
	NotificationSubscription string `envconfig:"ARES_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

// Enabled reports whether alert events should be published to Pub/Sub.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.NotificationTopic) != ""
}

type NATSConfig struct {
	URL     string `envconfig:"ARES_NATS_URL"`
	Subject string `envconfig:"ARES_NATS_ALERT_SUBJECT" default:"ares.alerts"`
	Name    string `envconfig:"ARES_NATS_CLIENT_NAME" default:"ares-connect-api"`
}

func (n NATSConfig) Enabled() bool {
	return strings.TrimSpace(n.URL) != ""
}

type NotificationsConfig struct {
	Workers        int           `envconfig:"ARES_NOTIFY_WORKERS" default:"2"`
	QueueSize      int           `envconfig:"ARES_NOTIFY_QUEUE_SIZE" default:"256"`
	SendTimeout    time.Duration `envconfig:"ARES_NOTIFY_SEND_TIMEOUT" default:"10s"`
	IdempotencyTTL time.Duration `envconfig:"ARES_NOTIFY_IDEMPOTENCY_TTL" default:"168h"`
	// InboxDirect writes the group feed from the API process instead of the Pub/Sub worker.
	InboxDirect bool `envconfig:"ARES_NOTIFY_INBOX_DIRECT" default:"false"`
}

type RealtimeConfig struct {
	Enabled        bool     `envconfig:"ARES_REALTIME_ENABLED" default:"true"`
	AllowedOrigins []string `envconfig:"ARES_REALTIME_ALLOWED_ORIGINS"`
}

type RosterConfig struct {
	// StaticMemberCount is used when no database-backed roster is available.
	StaticMemberCount int `envconfig:"ARES_ROSTER_STATIC_MEMBER_COUNT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, key := range dsnPartEnvVars {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
