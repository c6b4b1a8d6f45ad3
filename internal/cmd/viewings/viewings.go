// Package viewings parses viewings service flags and launches the service.
package viewings

import (
	"context"
	"flag"

	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
	server "github.com/maisonhq/maison/internal/services/viewings/app"
)

// Config holds viewings command configuration.
type Config struct {
	Port int `env:"MAISON_VIEWINGS_PORT" envDefault:"8083"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The viewings HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the viewings REST API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceViewings, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
