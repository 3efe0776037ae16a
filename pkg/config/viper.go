package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/tubestar/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read by InitViper.
const EnvPrefix = "TUBESTAR"

// legacyEnv lists the environment variable names used by existing
// deployments. They are consulted after the TUBESTAR_ names.
var legacyEnv = map[string]string{
	"database.name":      "DB_NAME",
	"database.user":      "DB_USER",
	"database.password":  "DB_PASSWORD",
	"database.host":      "DB_HOST",
	"database.port":      "DB_PORT",
	"youtube.api_key":    "YOUTUBE_API_KEY",
	"ingest.volume_path": "VIDEO_VOLUME_PATH",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the TUBESTAR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (TUBESTAR_DATABASE_HOST, then legacy DB_HOST, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: TUBESTAR_DATABASE_HOST, TUBESTAR_YOUTUBE_API_KEY, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", legacy, err)
		}
	}

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Database: DatabaseConfig{
			Driver:     v.GetString("database.driver"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Host:       v.GetString("database.host"),
			Port:       v.GetUint("database.port"),
			SSLMode:    v.GetString("database.sslmode"),
			SQLitePath: v.GetString("database.sqlite_path"),
		},
		YouTube: YouTubeConfig{
			APIKey:              v.GetString("youtube.api_key"),
			TranscriptLanguages: languages(v.GetStringSlice("youtube.transcript_languages")),
			ChannelID:           v.GetString("youtube.channel_id"),
		},
		Ingest: IngestConfig{
			VolumePath: v.GetString("ingest.volume_path"),
		},
		TimeDimension: TimeDimensionConfig{
			StartYear: v.GetInt("time_dimension.start_year"),
			EndYear:   v.GetInt("time_dimension.end_year"),
		},
		Models: ModelsConfig{
			Vectorizer:           v.GetString("models.vectorizer"),
			SentimentClassifier:  v.GetString("models.sentiment_classifier"),
			Scaler:               v.GetString("models.scaler"),
			PopularityClassifier: v.GetString("models.popularity_classifier"),
		},
		Cache: CacheConfig{
			RedisURL: v.GetString("cache.redis_url"),
			TTL:      v.GetString("cache.ttl"),
		},
		Metrics: MetricsConfig{
			Textfile: v.GetString("metrics.textfile"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// languages accepts both TOML arrays and comma separated env values.
func languages(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, SplitList(r)...)
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Database
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.sqlite_path", d.Database.SQLitePath)

	// YouTube
	v.SetDefault("youtube.api_key", d.YouTube.APIKey)
	v.SetDefault("youtube.transcript_languages", d.YouTube.TranscriptLanguages)
	v.SetDefault("youtube.channel_id", d.YouTube.ChannelID)

	// Ingest
	v.SetDefault("ingest.volume_path", d.Ingest.VolumePath)

	// Time dimension
	v.SetDefault("time_dimension.start_year", d.TimeDimension.StartYear)
	v.SetDefault("time_dimension.end_year", d.TimeDimension.EndYear)

	// Models
	v.SetDefault("models.vectorizer", d.Models.Vectorizer)
	v.SetDefault("models.sentiment_classifier", d.Models.SentimentClassifier)
	v.SetDefault("models.scaler", d.Models.Scaler)
	v.SetDefault("models.popularity_classifier", d.Models.PopularityClassifier)

	// Cache
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	// Metrics
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}
