// Package listing parses listing service flags and launches the service.
package listing

import (
	"context"
	"flag"

	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
	server "github.com/maisonhq/maison/internal/services/listing/app"
)

// Config holds listing command configuration.
type Config struct {
	Port int `env:"MAISON_LISTING_PORT" envDefault:"8082"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The listing HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the listing REST API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceListing, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
