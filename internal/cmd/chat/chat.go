// Package chat parses chat service flags and launches the service.
package chat

import (
	"context"
	"flag"

	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
	server "github.com/maisonhq/maison/internal/services/chat/app"
)

// Config holds chat command configuration.
type Config struct {
	Port int `env:"MAISON_CHAT_PORT" envDefault:"8084"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The chat HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the chat relay REST API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceChat, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
