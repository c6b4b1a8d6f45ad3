// Package web parses web service flags and launches the service.
package web

import (
	"context"
	"flag"

	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
	server "github.com/maisonhq/maison/internal/services/web/app"
)

// Config holds web command configuration.
type Config struct {
	Port int `env:"MAISON_WEB_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The web HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the timeline web service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
