package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Scheduling    SchedulingConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Resend        ResendConfig
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
	Env          string `envconfig:"PRESSROUTE_APP_ENV" required:"true"`
	Port         string `envconfig:"PRESSROUTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRESSROUTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRESSROUTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRESSROUTE_DB_DSN"`
	Driver string `envconfig:"PRESSROUTE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRESSROUTE_DB_HOST"`
	LegacyPort     int    `envconfig:"PRESSROUTE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRESSROUTE_DB_USER"`
	LegacyPassword string `envconfig:"PRESSROUTE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRESSROUTE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRESSROUTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRESSROUTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRESSROUTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRESSROUTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRESSROUTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"PRESSROUTE_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRESSROUTE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRESSROUTE_REDIS_ADDR"`
	Password     string        `envconfig:"PRESSROUTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRESSROUTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRESSROUTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRESSROUTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRESSROUTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRESSROUTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRESSROUTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PRESSROUTE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PRESSROUTE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PRESSROUTE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PRESSROUTE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PRESSROUTE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRESSROUTE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRESSROUTE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRESSROUTE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRESSROUTE_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	CodeLength  int           `envconfig:"PRESSROUTE_OTP_CODE_LENGTH" default:"6"`
	TTL         time.Duration `envconfig:"PRESSROUTE_OTP_TTL" default:"10m"`
	MaxAttempts int           `envconfig:"PRESSROUTE_OTP_MAX_ATTEMPTS" default:"5"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	OTPWindow       time.Duration `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_OTP_WINDOW" default:"15m"`
	OTPEmailLimit   int           `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"5"`
	OTPIPLimit      int           `envconfig:"PRESSROUTE_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"30"`
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"PRESSROUTE_RATE_LIMIT_WINDOW" default:"1m"`
	Requests int           `envconfig:"PRESSROUTE_RATE_LIMIT_REQUESTS" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PRESSROUTE_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type SchedulingConfig struct {
	SearchHorizonDays int `envconfig:"PRESSROUTE_SCHEDULING_SEARCH_HORIZON_DAYS" default:"42"`
	DefaultSLADays    int `envconfig:"PRESSROUTE_SCHEDULING_DEFAULT_SLA_DAYS" default:"2"`
	MinLeadDays       int `envconfig:"PRESSROUTE_SCHEDULING_MIN_LEAD_DAYS" default:"1"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRESSROUTE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRESSROUTE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRESSROUTE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PRESSROUTE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PRESSROUTE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"PRESSROUTE_PUBSUB_EVENTS_TOPIC" default:"pr-pickup-events"`
	EventsSubscription string `envconfig:"PRESSROUTE_PUBSUB_EVENTS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset           string `envconfig:"PRESSROUTE_BIGQUERY_DATASET" default:"pressroute"`
	PickupEventsTable string `envconfig:"PRESSROUTE_BIGQUERY_PICKUP_EVENTS_TABLE" default:"pickup_events"`
}

type ResendConfig struct {
	APIKey    string `envconfig:"PRESSROUTE_RESEND_API_KEY"`
	FromEmail string `envconfig:"PRESSROUTE_RESEND_FROM_EMAIL" default:"no-reply@pressroute.app"`
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
