package app

import (
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/config"
)

// ReadConfig reads the config from the environment, a .env file included.
func ReadConfig(logger zerolog.Logger, reader config.Reader) (*config.Config, error) {
	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read env")
		return nil, err
	}
	logger.Info().
		Str("env", cfg.Env).
		Str("database_driver", cfg.Database.Driver).
		Msg("read env")
	return cfg, nil
}
