package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env       string `env:"ENV" env-required:"true"`
	HTTP      HTTPConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Sweep     SweepConfig
	Analytics AnalyticsConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	MinConns       int32         `env:"POSTGRES_MIN_CONNS" env-default:"2"`
	ConnLifetime   time.Duration `env:"POSTGRES_CONN_LIFETIME" env-default:"30m"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"timebox"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

type SMTPConfig struct {
	Enabled  bool   `env:"SMTP_ENABLED" env-default:"false"`
	Host     string `env:"SMTP_HOST" env-default:""`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"noreply@timebox.local"`
	SiteURL  string `env:"SITE_URL" env-default:"http://localhost:8080"`
}

type SweepConfig struct {
	Enabled      bool   `env:"SWEEP_ENABLED" env-default:"true"`
	OverdueSpec  string `env:"SWEEP_OVERDUE_SPEC" env-default:"@hourly"`
	UrgentSpec   string `env:"SWEEP_URGENT_SPEC" env-default:"@daily"`
	CleanupSpec  string `env:"SWEEP_CLEANUP_SPEC" env-default:"@weekly"`
	CleanupAfter int    `env:"SWEEP_CLEANUP_AFTER_DAYS" env-default:"90"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL" env-default:"5s"`
}
