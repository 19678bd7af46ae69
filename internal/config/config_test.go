package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", EnvLocal)
	t.Setenv("DATABASE_URL", "postgres://taskmaster@localhost:5432/taskmaster")
	t.Setenv("SECRET_KEY", "test-secret")
}

func TestEnvReader_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30, cfg.JWT.AccessTokenTTLMinutes)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenTTL())
	assert.Equal(t, HasherArgon2id, cfg.Password.Hasher)
	assert.Empty(t, cfg.Stats.ReportSchedule)
}

func TestEnvReader_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_DRIVER", DriverSQLite)
	t.Setenv("ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("PASSWORD_HASHER", HasherBcrypt)

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL())
	assert.Equal(t, HasherBcrypt, cfg.Password.Hasher)
}

func TestEnvReader_MissingSecret(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("DATABASE_URL", "taskmaster.db")
	t.Setenv("SECRET_KEY", "")

	_, err := NewEnvReader().Read()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:      EnvDev,
			HTTP:     HTTPConfig{Port: "8080"},
			Database: DatabaseConfig{Driver: DriverSQLite, URL: "taskmaster.db"},
			JWT: JWTConfig{
				SecretKey:             "secret",
				Algorithm:             "HS256",
				AccessTokenTTLMinutes: 30,
			},
			Password: PasswordConfig{Hasher: HasherArgon2id, BcryptCost: 12},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown env", mutate: func(cfg *Config) { cfg.Env = "staging" }, wantErr: true},
		{name: "unknown driver", mutate: func(cfg *Config) { cfg.Database.Driver = "mysql" }, wantErr: true},
		{name: "asymmetric algorithm", mutate: func(cfg *Config) { cfg.JWT.Algorithm = "RS256" }, wantErr: true},
		{name: "zero ttl", mutate: func(cfg *Config) { cfg.JWT.AccessTokenTTLMinutes = 0 }, wantErr: true},
		{name: "unknown hasher", mutate: func(cfg *Config) { cfg.Password.Hasher = "md5" }, wantErr: true},
		{name: "bcrypt cost too high", mutate: func(cfg *Config) { cfg.Password.BcryptCost = 40 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
