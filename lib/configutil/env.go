package configutil

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FromEnv parses an `env`-tagged struct from the process environment.
// A .env file in the working directory is loaded first if present, so
// local development does not need real exported variables.
func FromEnv[T any]() (T, error) {
	err := godotenv.Load()
	if err == nil {
		slog.Info("loaded .env file")
	}

	var out T
	err = env.Parse(&out)
	if err != nil {
		return out, err
	}
	return out, nil
}
