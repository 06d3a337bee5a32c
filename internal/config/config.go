package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MOVIENIGHT_"

// Config is the top-level client configuration.
type Config struct {
	// Listen is the address of the local web surface.
	Listen string `yaml:"listen"`

	// APIBaseURL is the movie night API root, without the /api suffix.
	APIBaseURL string `yaml:"api_base_url"`

	TMDBAPIKey       string `yaml:"tmdb_api_key"`
	TMDBBaseURL      string `yaml:"tmdb_base_url"`
	TMDBImageBaseURL string `yaml:"tmdb_image_base_url"`

	// DBPath is the SQLite file holding the session.
	DBPath string `yaml:"db_path"`

	// SessionKey, when set, seals the stored bearer token.
	SessionKey string `yaml:"session_key"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start"`

	// Timezone is the IANA zone used to decide what "today" is. Empty
	// means the system zone.
	Timezone string `yaml:"timezone"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func Default() *Config {
	return &Config{
		Listen:           "127.0.0.1:5173",
		APIBaseURL:       "https://localhost:7137",
		TMDBBaseURL:      "https://api.themoviedb.org/3",
		TMDBImageBaseURL: "https://image.tmdb.org/t/p",
		DBPath:           "movienight.db",
		LogLevel:         "info",
		LogFormat:        "text",
		WeekStart:        "sunday",
		RequestTimeout:   15 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional .env file in the
// working directory, an optional YAML file at path and MOVIENIGHT_*
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LISTEN":              &c.Listen,
		"API_BASE_URL":        &c.APIBaseURL,
		"TMDB_API_KEY":        &c.TMDBAPIKey,
		"TMDB_BASE_URL":       &c.TMDBBaseURL,
		"TMDB_IMAGE_BASE_URL": &c.TMDBImageBaseURL,
		"DB_PATH":             &c.DBPath,
		"SESSION_KEY":         &c.SessionKey,
		"LOG_LEVEL":           &c.LogLevel,
		"LOG_FORMAT":          &c.LogFormat,
		"WEEK_START":          &c.WeekStart,
		"TIMEZONE":            &c.Timezone,
	}
	for name, dst := range str {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Normalize fills in missing values so partially-filled configs still work.
func (c *Config) Normalize() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TMDBBaseURL == "" {
		c.TMDBBaseURL = d.TMDBBaseURL
	}
	if c.TMDBImageBaseURL == "" {
		c.TMDBImageBaseURL = d.TMDBImageBaseURL
	}
	c.TMDBImageBaseURL = strings.TrimRight(c.TMDBImageBaseURL, "/")
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "json" {
		c.LogFormat = "text"
	}
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "monday":
		c.WeekStart = "monday"
	default:
		c.WeekStart = "sunday"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
}

// Validate reports settings that cannot be fixed up.
func (c *Config) Validate() error {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// Location returns the configured zone, or time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
