package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent tubestar configuration stored as
// config.toml in the .tubestar/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version       int                 `toml:"version"`
	Database      DatabaseConfig      `toml:"database"`
	YouTube       YouTubeConfig       `toml:"youtube"`
	Ingest        IngestConfig        `toml:"ingest"`
	TimeDimension TimeDimensionConfig `toml:"time_dimension"`
	Models        ModelsConfig        `toml:"models"`
	Cache         CacheConfig         `toml:"cache"`
	Metrics       MetricsConfig       `toml:"metrics"`
}

// DatabaseConfig selects and addresses the warehouse store.
type DatabaseConfig struct {
	Driver     string `toml:"driver,omitempty"`
	Name       string `toml:"name,omitempty"`
	User       string `toml:"user,omitempty"`
	Password   string `toml:"password,omitempty"`
	Host       string `toml:"host,omitempty"`
	Port       uint   `toml:"port,omitempty"`
	SSLMode    string `toml:"sslmode,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// YouTubeConfig holds the platform credentials and transcript preferences.
type YouTubeConfig struct {
	APIKey              string   `toml:"api_key,omitempty"`
	TranscriptLanguages []string `toml:"transcript_languages,omitempty"`

	// ChannelID, when set, files every ingested video under this channel.
	ChannelID string `toml:"channel_id,omitempty"`
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	VolumePath string `toml:"volume_path,omitempty"`
}

// TimeDimensionConfig is the calendar range populated by "tubestar init".
type TimeDimensionConfig struct {
	StartYear int `toml:"start_year,omitempty"`
	EndYear   int `toml:"end_year,omitempty"`
}

// ModelsConfig holds paths to the model artifacts used for enrichment.
type ModelsConfig struct {
	Vectorizer           string `toml:"vectorizer,omitempty"`
	SentimentClassifier  string `toml:"sentiment_classifier,omitempty"`
	Scaler               string `toml:"scaler,omitempty"`
	PopularityClassifier string `toml:"popularity_classifier,omitempty"`
}

// CacheConfig configures the optional Redis metadata cache. An empty
// RedisURL disables caching.
type CacheConfig struct {
	RedisURL string `toml:"redis_url,omitempty"`
	TTL      string `toml:"ttl,omitempty"`
}

// MetricsConfig configures the metrics textfile. An empty Textfile disables
// metrics output.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"`
}

// CacheTTL parses Cache.TTL.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache.ttl: %w", err)
	}
	return ttl, nil
}

// Validate checks values that cannot be caught when they are set.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database.driver %q (available: %s, %s)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Database.Driver == DriverPostgres && c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d", c.Database.Port)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"database.driver": {
		get: func(c *Config) string { return c.Database.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case DriverPostgres, DriverSQLite:
				c.Database.Driver = v
				return nil
			}
			return fmt.Errorf("invalid value for database.driver: %q", v)
		},
	},
	"database.name":        stringKey(func(c *Config) *string { return &c.Database.Name }),
	"database.user":        stringKey(func(c *Config) *string { return &c.Database.User }),
	"database.password":    stringKey(func(c *Config) *string { return &c.Database.Password }),
	"database.host":        stringKey(func(c *Config) *string { return &c.Database.Host }),
	"database.sslmode":     stringKey(func(c *Config) *string { return &c.Database.SSLMode }),
	"database.sqlite_path": stringKey(func(c *Config) *string { return &c.Database.SQLitePath }),
	"database.port": {
		get: func(c *Config) string {
			if c.Database.Port == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Database.Port), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return fmt.Errorf("invalid value for database.port: %w", err)
			}
			c.Database.Port = uint(n)
			return nil
		},
	},
	"youtube.api_key": stringKey(func(c *Config) *string { return &c.YouTube.APIKey }),
	"youtube.transcript_languages": {
		get: func(c *Config) string { return strings.Join(c.YouTube.TranscriptLanguages, ",") },
		set: func(c *Config, v string) error { c.YouTube.TranscriptLanguages = SplitList(v); return nil },
	},
	"youtube.channel_id":           stringKey(func(c *Config) *string { return &c.YouTube.ChannelID }),
	"ingest.volume_path":           stringKey(func(c *Config) *string { return &c.Ingest.VolumePath }),
	"time_dimension.start_year":    intKey("time_dimension.start_year", func(c *Config) *int { return &c.TimeDimension.StartYear }),
	"time_dimension.end_year":      intKey("time_dimension.end_year", func(c *Config) *int { return &c.TimeDimension.EndYear }),
	"models.vectorizer":            stringKey(func(c *Config) *string { return &c.Models.Vectorizer }),
	"models.sentiment_classifier":  stringKey(func(c *Config) *string { return &c.Models.SentimentClassifier }),
	"models.scaler":                stringKey(func(c *Config) *string { return &c.Models.Scaler }),
	"models.popularity_classifier": stringKey(func(c *Config) *string { return &c.Models.PopularityClassifier }),
	"cache.redis_url":              stringKey(func(c *Config) *string { return &c.Cache.RedisURL }),
	"cache.ttl": {
		get: func(c *Config) string { return c.Cache.TTL },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for cache.ttl: %w", err)
			}
			c.Cache.TTL = v
			return nil
		},
	},
	"metrics.textfile": stringKey(func(c *Config) *string { return &c.Metrics.Textfile }),
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
