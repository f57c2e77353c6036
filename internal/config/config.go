package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/sitegear/go-sitegear/pkg/access"
)

// Access modes.
const (
	AccessAllow = "allow"
	AccessDeny  = "deny"
	AccessRedis = "redis"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the process configuration of the sitegear-forms command, read
// from SITEGEAR_* environment variables.
type Config struct {
	LogLevel  string `env:"SITEGEAR_LOG_LEVEL,default=info"`
	LogFormat string `env:"SITEGEAR_LOG_FORMAT,default=text"`

	// AccessMode selects the privilege controller: allow, deny or redis.
	AccessMode string        `env:"SITEGEAR_ACCESS,default=deny"`
	RedisURL   string        `env:"SITEGEAR_REDIS_URL,default=redis://localhost:6379/0"`
	ACLPrefix  string        `env:"SITEGEAR_ACL_PREFIX,default=sitegear:acl:"`
	ACLTimeout time.Duration `env:"SITEGEAR_ACL_TIMEOUT,default=2s"`

	// ThemeFile is a YAML theme manifest. Empty renders unthemed.
	ThemeFile    string `env:"SITEGEAR_THEME_FILE"`
	ThemeName    string `env:"SITEGEAR_THEME"`
	ThemeVariant string `env:"SITEGEAR_THEME_VARIANT"`
}

// Load decodes the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.AccessMode = strings.ToLower(strings.TrimSpace(c.AccessMode))
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.ThemeFile = strings.TrimSpace(c.ThemeFile)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log format %q: want text or json", c.LogFormat))
	}
	switch c.AccessMode {
	case AccessAllow, AccessDeny:
	case AccessRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis access mode requires SITEGEAR_REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("access mode %q: want allow, deny or redis", c.AccessMode))
	}
	if c.ACLTimeout < 0 {
		errs = append(errs, fmt.Errorf("acl timeout %s must not be negative", c.ACLTimeout))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger builds a slog logger writing to w in the configured format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// RedisStore connects to the configured Redis and returns the ACL store with
// a close function.
func (c Config) RedisStore(ctx context.Context) (*access.RedisStore, func() error, error) {
	client, err := access.OpenRedis(ctx, c.RedisURL, c.ACLTimeout)
	if err != nil {
		return nil, nil, err
	}
	return access.NewRedisStore(client, access.WithKeyPrefix(c.ACLPrefix)), client.Close, nil
}

// Controller builds the privilege controller for the configured mode. The
// returned close function is never nil.
func (c Config) Controller(ctx context.Context, logger *slog.Logger) (access.Controller, func() error, error) {
	noop := func() error { return nil }
	switch c.AccessMode {
	case AccessAllow:
		return access.AllowAll{}, noop, nil
	case AccessDeny, "":
		return access.AllowNone{}, noop, nil
	case AccessRedis:
		store, closeFn, err := c.RedisStore(ctx)
		if err != nil {
			return nil, noop, err
		}
		controller := access.NewStoreController(store,
			access.WithTimeout(c.ACLTimeout),
			access.WithLogger(logger),
		)
		return controller, closeFn, nil
	default:
		return nil, noop, fmt.Errorf("%w: access mode %q", ErrInvalidConfig, c.AccessMode)
	}
}
