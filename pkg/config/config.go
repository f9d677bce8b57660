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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Sweep        SweepConfig
	Audit        AuditConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"PARKPASS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PARKPASS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARKPASS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PARKPASS_SERVICE_KIND" default:"sweeper-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"PARKPASS_DB_DSN"`
	Driver string `envconfig:"PARKPASS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARKPASS_DB_HOST"`
	LegacyPort     int    `envconfig:"PARKPASS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARKPASS_DB_USER"`
	LegacyPassword string `envconfig:"PARKPASS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARKPASS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARKPASS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARKPASS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARKPASS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARKPASS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARKPASS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PARKPASS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARKPASS_REDIS_ADDR"`
	Password     string        `envconfig:"PARKPASS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARKPASS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARKPASS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARKPASS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARKPASS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARKPASS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARKPASS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARKPASS_AUTO_MIGRATE" default:"false"`
}

// SweepConfig drives the grace-period expiration engine. Both values are
// read once at process start and never recomputed.
type SweepConfig struct {
	GracePeriodMinutes int           `envconfig:"PARKPASS_SWEEP_GRACE_MINUTES" default:"15"`
	Interval           time.Duration `envconfig:"PARKPASS_SWEEP_INTERVAL" default:"60s"`
	StartupDelay       time.Duration `envconfig:"PARKPASS_SWEEP_STARTUP_DELAY" default:"5s"`
	LockTTL            time.Duration `envconfig:"PARKPASS_SWEEP_LOCK_TTL" default:"10m"`
}

// GracePeriod returns the configured grace period as a duration.
func (s SweepConfig) GracePeriod() time.Duration {
	if s.GracePeriodMinutes <= 0 {
		return 0
	}
	return time.Duration(s.GracePeriodMinutes) * time.Minute
}

type AuditConfig struct {
	BatchSize      int `envconfig:"PARKPASS_AUDIT_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PARKPASS_AUDIT_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PARKPASS_AUDIT_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PARKPASS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PARKPASS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PARKPASS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"PARKPASS_PUBSUB_NOTIFICATION_TOPIC" default:"pp-notification-events"`
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
