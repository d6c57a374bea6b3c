package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "payouts"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PAYOUTS_DB_DSN"
	EnvDBHost = "PAYOUTS_DB_HOST"
	EnvDBUser = "PAYOUTS_DB_USER"
	EnvDBName = "PAYOUTS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Policy       PolicyConfig
	Worker       WorkerConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"PAYOUTS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PAYOUTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAYOUTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAYOUTS_SERVICE_KIND" default:"payout-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAYOUTS_DB_DSN"`
	Driver string `envconfig:"PAYOUTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAYOUTS_DB_HOST"`
	LegacyPort     int    `envconfig:"PAYOUTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAYOUTS_DB_USER"`
	LegacyPassword string `envconfig:"PAYOUTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAYOUTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAYOUTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAYOUTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAYOUTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAYOUTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAYOUTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAYOUTS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAYOUTS_REDIS_ADDR"`
	Password     string        `envconfig:"PAYOUTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAYOUTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAYOUTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAYOUTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAYOUTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAYOUTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAYOUTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PAYOUTS_AUTO_MIGRATE" default:"false"`
}

// PolicyConfig is the condition-based refund deduction policy, in whole
// percentage points of the item's original price.
type PolicyConfig struct {
	OpenedDeductionPct  int64 `envconfig:"PAYOUTS_POLICY_OPENED_DEDUCTION_PCT" default:"10"`
	DamagedDeductionPct int64 `envconfig:"PAYOUTS_POLICY_DAMAGED_DEDUCTION_PCT" default:"25"`
}

// WorkerConfig drives the scheduled eligibility sweep.
type WorkerConfig struct {
	SweepInterval     time.Duration `envconfig:"PAYOUTS_WORKER_SWEEP_INTERVAL" default:"1h"`
	EligibilityWindow time.Duration `envconfig:"PAYOUTS_ELIGIBILITY_WINDOW" default:"168h"`
	SweepBatchSize    int           `envconfig:"PAYOUTS_WORKER_SWEEP_BATCH_SIZE" default:"500"`
	RetentionDays     int           `envconfig:"PAYOUTS_OUTBOX_RETENTION_DAYS" default:"30"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PAYOUTS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PAYOUTS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PAYOUTS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PAYOUTS_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"PAYOUTS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"PAYOUTS_PUBSUB_DOMAIN_TOPIC" default:"payout-domain-events"`
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
