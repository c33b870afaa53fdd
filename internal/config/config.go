// Package config loads server settings. Each setting is resolved in order
// from a command-line flag, the environment, a .env file, and a default.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Metadata MetadataConfig
}

type AppConfig struct {
	Environment string // development, staging or production
}

type LoggerConfig struct {
	Level string
}

// DataConfig locates local storage.
type DataConfig struct {
	// BasePath holds the sqlite database, preference store, search index and covers.
	BasePath string
}

// ServerConfig controls the HTTP listener and how it is announced.
type ServerConfig struct {
	Name          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	AdvertiseMDNS bool
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
}

// MetadataConfig holds credentials for the remote lookup services. An
// empty credential disables that lookup.
type MetadataConfig struct {
	GoogleBooksAPIKey string
	TMDBAPIKey        string
	DiscogsKey        string
	DiscogsSecret     string
	// LookupsPerMinute throttles remote lookups per client. Negative
	// disables the limit.
	LookupsPerMinute int
}

//nolint:gochecknoglobals // Static option lists
var (
	environments = []string{"development", "staging", "production"}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// LoadConfig reads the process flags and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load resolves the configuration from args and the environment.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("monomori", flag.ContinueOnError)
	r := resolver{flags: fs}
	fs.String("env", "", "environment: development, staging or production")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("data-path", "", "directory for the database, index and covers")
	fs.String("server-name", "", "name announced over mDNS")
	fs.String("port", "", "HTTP port (default 8080)")
	fs.String("read-timeout", "", "HTTP read timeout (default 15s)")
	fs.String("write-timeout", "", "HTTP write timeout (default 15s)")
	fs.String("idle-timeout", "", "HTTP idle timeout (default 60s)")
	fs.String("advertise-mdns", "", "announce the server on the local network (default true)")
	fs.String("cors-origins", "", "comma separated CORS origins (default any)")
	fs.String("lookups-per-minute", "", "remote lookups per client and minute, -1 for no limit (default 60)")
	envFile := fs.String("env-file", ".env", "path to a .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// A missing .env file is normal.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", *envFile, err)
	}

	cfg := &Config{
		App:    AppConfig{Environment: r.str("env", "ENV", "development")},
		Logger: LoggerConfig{Level: r.str("log-level", "LOG_LEVEL", "info")},
		Data:   DataConfig{BasePath: r.str("data-path", "DATA_PATH", "")},
		Server: ServerConfig{
			Name:           r.str("server-name", "SERVER_NAME", "Monomori"),
			Port:           r.str("port", "SERVER_PORT", "8080"),
			ReadTimeout:    r.duration("read-timeout", "SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   r.duration("write-timeout", "SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    r.duration("idle-timeout", "SERVER_IDLE_TIMEOUT", time.Minute),
			AdvertiseMDNS:  r.boolean("advertise-mdns", "ADVERTISE_MDNS", true),
			AllowedOrigins: r.list("cors-origins", "CORS_ORIGINS"),
		},
		// Credentials come from the environment only, never from flags that
		// show up in process listings.
		Metadata: MetadataConfig{
			GoogleBooksAPIKey: r.str("", "GOOGLE_BOOKS_API_KEY", ""),
			TMDBAPIKey:        r.str("", "TMDB_API_KEY", ""),
			DiscogsKey:        r.str("", "DISCOGS_API_KEY", ""),
			DiscogsSecret:     r.str("", "DISCOGS_API_SECRET", ""),
			LookupsPerMinute:  r.integer("lookups-per-minute", "LOOKUPS_PER_MINUTE", 60),
		},
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}
	if !slices.Contains(environments, c.App.Environment) {
		return fmt.Errorf("invalid environment: %s (must be one of %s)", c.App.Environment, strings.Join(environments, ", "))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level: %s (must be one of %s)", c.Logger.Level, strings.Join(logLevels, ", "))
	}
	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}
	if (c.Metadata.DiscogsKey == "") != (c.Metadata.DiscogsSecret == "") {
		return errors.New("DISCOGS_API_KEY and DISCOGS_API_SECRET must be set together")
	}
	return nil
}

// DatabasePath is the sqlite file holding the collections.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "monomori.db")
}

// PreferencesPath is the badger directory holding user preferences.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.Data.BasePath, "preferences")
}

// CoversPath is the directory holding downloaded cover images.
func (c *Config) CoversPath() string {
	return filepath.Join(c.Data.BasePath, "covers")
}

// expandDataPath applies the default data directory, expands a leading ~
// and makes the path absolute.
func (c *Config) expandDataPath() error {
	path := c.Data.BasePath
	if path == "" || path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		switch {
		case path == "":
			path = filepath.Join(home, "Monomori", "data")
		case path == "~":
			path = home
		default:
			path = filepath.Join(home, path[2:])
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	c.Data.BasePath = abs
	return nil
}

// resolver looks settings up in a parsed flag set, then the environment.
// Parse failures are collected so every bad value is reported at once.
type resolver struct {
	flags *flag.FlagSet
	errs  []error
}

func (r *resolver) str(flagName, envKey, fallback string) string {
	if flagName != "" {
		if f := r.flags.Lookup(flagName); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// boolean accepts true, 1 and yes in any case; any other value is false.
func (r *resolver) boolean(flagName, envKey string, fallback bool) bool {
	switch raw := strings.ToLower(r.str(flagName, envKey, "")); raw {
	case "":
		return fallback
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (r *resolver) duration(flagName, envKey string, fallback time.Duration) time.Duration {
	raw := r.str(flagName, envKey, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", envKey, raw, err))
		return fallback
	}
	return d
}

func (r *resolver) integer(flagName, envKey string, fallback int) int {
	raw := r.str(flagName, envKey, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", envKey, raw, err))
		return fallback
	}
	return n
}

// list splits a comma separated value, dropping empty entries.
func (r *resolver) list(flagName, envKey string) []string {
	var out []string
	for part := range strings.SplitSeq(r.str(flagName, envKey, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile exports KEY=value lines from path. Blank lines and lines
// starting with # are skipped, values may be quoted, and variables that
// are already set win over the file.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- path is operator supplied
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", n, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); set && os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return scanner.Err()
}
