package config

import (
	"errors"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// dotenvFile is loaded before the environment is read. Variables already set
// in the process environment win over the file.
var dotenvFile = ".env"

// parseEnv overlays cfg with MINUTES_* environment variables. Unset variables
// leave the current value alone. Malformed values panic.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
}
