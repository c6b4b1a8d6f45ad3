// Package tokenmint signs development bearer tokens so local services and
// tests can authenticate without the identity provider.
package tokenmint

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/maisonhq/maison/internal/auth"
	"github.com/maisonhq/maison/internal/progress"
)

// Config holds configuration for minting a bearer token.
type Config struct {
	UserID string
	Role   string
	TTL    time.Duration
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Role: string(progress.RoleBuyer), TTL: time.Hour}
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "subject user id (required)")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "token role: buyer or seller")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime (default: 1h)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run mints the token using MAISON_AUTH_* signing configuration and writes
// it to out.
func Run(cfg Config, out io.Writer, now func() time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	role, err := progress.ParseRole(cfg.Role)
	if err != nil {
		return err
	}
	authCfg, err := auth.LoadConfigFromEnv(now)
	if err != nil {
		return err
	}
	token, err := auth.Mint(authCfg, cfg.UserID, role, cfg.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
