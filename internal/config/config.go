package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Password PasswordConfig
	Stats    StatsConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type DatabaseConfig struct {
	Driver         string        `env:"DATABASE_DRIVER" env-default:"postgres"`
	URL            string        `env:"DATABASE_URL" env-required:"true"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"DATABASE_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	SecretKey             string `env:"SECRET_KEY" env-required:"true"`
	Algorithm             string `env:"ALGORITHM" env-default:"HS256"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
	Issuer                string `env:"JWT_ISSUER" env-default:"taskmaster"`
}

func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	Hasher     string `env:"PASSWORD_HASHER" env-default:"argon2id"`
	BcryptCost int    `env:"BCRYPT_COST" env-default:"12"`
}

type StatsConfig struct {
	// ReportSchedule is a cron spec; the report is disabled when empty.
	ReportSchedule string `env:"STATS_REPORT_SCHEDULE"`
}

func (c *Config) Validate() error {
	return validation.Errors{
		"ENV": validation.Validate(c.Env,
			validation.Required, validation.In(EnvDev, EnvProd, EnvLocal)),
		"HTTP_PORT": validation.Validate(c.HTTP.Port, validation.Required),
		"DATABASE_DRIVER": validation.Validate(c.Database.Driver,
			validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		"DATABASE_URL": validation.Validate(c.Database.URL, validation.Required),
		"SECRET_KEY":   validation.Validate(c.JWT.SecretKey, validation.Required),
		"ALGORITHM": validation.Validate(c.JWT.Algorithm,
			validation.Required, validation.In("HS256", "HS384", "HS512")),
		"ACCESS_TOKEN_EXPIRE_MINUTES": validation.Validate(c.JWT.AccessTokenTTLMinutes,
			validation.Required, validation.Min(1)),
		"PASSWORD_HASHER": validation.Validate(c.Password.Hasher,
			validation.Required, validation.In(HasherArgon2id, HasherBcrypt)),
		"BCRYPT_COST": validation.Validate(c.Password.BcryptCost,
			validation.Min(4), validation.Max(31)),
	}.Filter()
}
