// Package progress parses progress service flags and launches the service.
package progress

import (
	"context"
	"flag"

	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
	server "github.com/maisonhq/maison/internal/services/progress/app"
)

// Config holds progress command configuration.
type Config struct {
	Port int `env:"MAISON_PROGRESS_PORT" envDefault:"8081"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The progress HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the progress REST API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProgress, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
