package main

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/gooscar/icq2000/config"
)

// Container groups the dependencies the demo wires into a client.Client,
// mirroring the teacher's cmd/server Container/MakeCommonDeps split.
type Container struct {
	cfg    config.Config
	logger *slog.Logger
}

// MakeCommonDeps loads configuration from the environment (populated, if
// present, from the .env-style file init() already loaded with godotenv)
// and builds the logger the rest of the demo shares.
func MakeCommonDeps() (Container, error) {
	c := Container{}
	if err := envconfig.Process("", &c.cfg); err != nil {
		return c, fmt.Errorf("unable to process app config: %w", err)
	}
	c.logger = config.NewLogger(c.cfg)
	return c, nil
}
