// Package auth verifies bearer tokens issued by the identity provider and
// exposes the authenticated identity to request handlers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	"github.com/maisonhq/maison/internal/progress"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

// tokenEnv holds raw env values before post-parse validation.
type tokenEnv struct {
	Issuer   string `env:"MAISON_AUTH_ISSUER"`
	Audience string `env:"MAISON_AUTH_AUDIENCE"`
	Secret   string `env:"MAISON_AUTH_SECRET"`
}

// Config defines how bearer tokens are minted and verified.
type Config struct {
	Issuer   string
	Audience string
	Secret   []byte
	Now      func() time.Time
}

// Identity captures the validated caller identity.
type Identity struct {
	UserID string
	Role   progress.Role
}

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// LoadConfigFromEnv reads bearer token configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw tokenEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse auth env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	secret := strings.TrimSpace(raw.Secret)
	if issuer == "" {
		return Config{}, fmt.Errorf("MAISON_AUTH_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("MAISON_AUTH_AUDIENCE is required")
	}
	if secret == "" {
		return Config{}, fmt.Errorf("MAISON_AUTH_SECRET is required")
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Secret:   []byte(secret),
		Now:      now,
	}, nil
}

// Mint signs a bearer token for the given user and role.
// It exists for development tooling and tests; production tokens come from
// the identity provider.
func Mint(cfg Config, userID string, role progress.Role, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperrors.New(apperrors.CodeProgressUserIDRequired, "user id is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}
	if len(cfg.Secret) == 0 {
		return "", errors.New("token signer is not configured")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	issuedAt := now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the caller identity.
func Verify(cfg Config, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperrors.New(apperrors.CodeAuthTokenMissing, "bearer token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Secret) == 0 {
		return Identity{}, errors.New("token verifier is not configured")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeAuthTokenInvalid, "parse bearer token", err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeAuthTokenInvalid,
			"bearer token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeAuthTokenInvalid,
			"bearer token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ExpiresAt == nil {
		return Identity{}, apperrors.New(apperrors.CodeAuthTokenInvalid, "bearer token exp is required")
	}
	now := cfg.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return Identity{}, apperrors.New(apperrors.CodeAuthTokenInvalid, "bearer token is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Identity{}, apperrors.New(apperrors.CodeAuthTokenInvalid, "bearer token not active yet")
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return Identity{}, apperrors.New(apperrors.CodeAuthTokenInvalid, "bearer token subject is required")
	}
	role, err := progress.ParseRole(parsed.Role)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeAuthTokenInvalid, "bearer token role is invalid", err)
	}

	return Identity{UserID: userID, Role: role}, nil
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}
