package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/service/auth"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultAccessTTL      = 15 * time.Minute
	defaultRefreshTTL     = 7 * 24 * time.Hour
	defaultLoginRateLimit = 10
	defaultPurgeInterval  = time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	// If empty, data is kept in memory and lost on restart
	DatabaseDSN string

	// Secrets to sign access and refresh tokens
	AccessSecret  string
	RefreshSecret string

	// Tokens lifetime
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Password hashing cost
	BcryptCost int

	// Environment
	Environment string

	// Errors reporting, disabled if empty
	SentryDSN string

	// Register and login attempts per minute from one IP
	LoginRateLimit int

	// Users registered with these emails become admins
	AdminEmails []string

	// How often expired refresh tokens are removed
	PurgeInterval time.Duration

	// Reverse proxies (IPs or CIDRs) allowed to set X-Forwarded-For
	TrustedProxies []string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		Environment:    defaultEnvironment,
		AccessTTL:      defaultAccessTTL,
		RefreshTTL:     defaultRefreshTTL,
		BcryptCost:     auth.DefaultBcryptCost,
		LoginRateLimit: defaultLoginRateLimit,
		PurgeInterval:  defaultPurgeInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			return (*durationValue)(o).Set(value)
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = strings.Split(value, ",")
			}
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":            setString(&c.ListenAddr),
		"DATABASE_URI":           setString(&c.DatabaseDSN),
		"JWT_SECRET":             setString(&c.AccessSecret),
		"JWT_REFRESH_SECRET":     setString(&c.RefreshSecret),
		"JWT_EXPIRES_IN":         setDuration(&c.AccessTTL),
		"JWT_REFRESH_EXPIRES_IN": setDuration(&c.RefreshTTL),
		"BCRYPT_COST":            setInt(&c.BcryptCost),
		"LOG_LEVEL":              setString(&c.LogLevel),
		"ENVIRONMENT":            setString(&c.Environment),
		"SENTRY_DSN":             setString(&c.SentryDSN),
		"LOGIN_RATE_LIMIT":       setInt(&c.LoginRateLimit),
		"ADMIN_EMAILS":           setList(&c.AdminEmails),
		"TOKEN_PURGE_INTERVAL":   setDuration(&c.PurgeInterval),
		"TRUSTED_PROXIES":        setList(&c.TrustedProxies),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s value. Err: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("starterkit", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.AccessSecret, "secret", "s", c.AccessSecret, "Access token secret")
	fs.StringVarP(&c.RefreshSecret, "refresh-secret", "S", c.RefreshSecret, "Refresh token secret")
	fs.Var((*durationValue)(&c.AccessTTL), "access-ttl", "Access token lifetime (15m, 1h, 7d)")
	fs.Var((*durationValue)(&c.RefreshTTL), "refresh-ttl", "Refresh token lifetime (15m, 1h, 7d)")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "Password hashing cost")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.SentryDSN, "sentry-dsn", c.SentryDSN, "Sentry DSN to report errors to")
	fs.IntVar(&c.LoginRateLimit, "login-rate-limit", c.LoginRateLimit, "Register and login attempts per minute from one IP")
	fs.StringSliceVar(&c.AdminEmails, "admin-emails", c.AdminEmails, "Emails registered as admins")
	fs.Var((*durationValue)(&c.PurgeInterval), "purge-interval", "How often expired refresh tokens are removed")
	fs.StringSliceVar(&c.TrustedProxies, "trusted-proxies", c.TrustedProxies, "Reverse proxies (IPs or CIDRs) allowed to set X-Forwarded-For")

	return fs.Parse(args)
}

// Validate rejects values the server would start with but can't work with
func (c *Config) Validate() error {
	var errs []error

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be in range %d..%d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("access token lifetime must be positive, got %s", c.AccessTTL))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("refresh token lifetime must be positive, got %s", c.RefreshTTL))
	}
	if c.PurgeInterval <= 0 {
		errs = append(errs, fmt.Errorf("purge interval must be positive, got %s", c.PurgeInterval))
	}
	if c.LoginRateLimit < 0 {
		errs = append(errs, fmt.Errorf("login rate limit must not be negative, got %d", c.LoginRateLimit))
	}

	return errors.Join(errs...)
}

// durationValue is time.Duration flag that understands days too: '7d'
type durationValue time.Duration

func (d *durationValue) Set(s string) error {
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

func (d *durationValue) String() string {
	return time.Duration(*d).String()
}

func (d *durationValue) Type() string {
	return "duration"
}

func parseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
