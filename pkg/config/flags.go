package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on "tubestar init", "tubestar ingest" and "tubestar enrich").
type Flag struct {
	// Name is the long flag name (e.g. "db-host").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "database.host").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddIntFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagDriver      = "driver"
	FlagSQLite      = "sqlite"
	FlagDBHost      = "db-host"
	FlagDBPort      = "db-port"
	FlagDBName      = "db-name"
	FlagDBUser      = "db-user"
	FlagAPIKey      = "api-key"
	FlagChannel     = "channel"
	FlagLanguages   = "languages"
	FlagVolume      = "volume"
	FlagStartYear   = "start-year"
	FlagEndYear     = "end-year"
	FlagVectorizer  = "vectorizer"
	FlagSentiment   = "sentiment-model"
	FlagScaler      = "scaler"
	FlagPopularity  = "popularity-model"
	FlagRedisURL    = "redis-url"
	FlagMetricsFile = "metrics-textfile"
)

// Flags is the registry shared by every tubestar command.
var Flags = FlagSet{
	FlagDriver:      {Name: "driver", ViperKey: "database.driver", Description: "Warehouse driver (postgres, sqlite)"},
	FlagSQLite:      {Name: "sqlite", Shorthand: "s", ViperKey: "database.sqlite_path", Description: "Path to the SQLite warehouse (implies --driver sqlite)"},
	FlagDBHost:      {Name: "db-host", ViperKey: "database.host", Description: "PostgreSQL host"},
	FlagDBPort:      {Name: "db-port", ViperKey: "database.port", Description: "PostgreSQL port"},
	FlagDBName:      {Name: "db-name", ViperKey: "database.name", Description: "PostgreSQL database name"},
	FlagDBUser:      {Name: "db-user", ViperKey: "database.user", Description: "PostgreSQL user"},
	FlagAPIKey:      {Name: "api-key", ViperKey: "youtube.api_key", Description: "YouTube Data API key"},
	FlagChannel:     {Name: "channel", ViperKey: "youtube.channel_id", Description: "File every video under this channel id"},
	FlagLanguages:   {Name: "languages", ViperKey: "youtube.transcript_languages", Description: "Transcript languages to try, in order (comma separated)"},
	FlagVolume:      {Name: "volume", ViperKey: "ingest.volume_path", Description: "Directory whose entries name the videos to process"},
	FlagStartYear:   {Name: "start-year", ViperKey: "time_dimension.start_year", Description: "First year of the time dimension"},
	FlagEndYear:     {Name: "end-year", ViperKey: "time_dimension.end_year", Description: "Last year of the time dimension"},
	FlagVectorizer:  {Name: "vectorizer", ViperKey: "models.vectorizer", Description: "Path to the text vectorizer artifact"},
	FlagSentiment:   {Name: "sentiment-model", ViperKey: "models.sentiment_classifier", Description: "Path to the sentiment classifier artifact"},
	FlagScaler:      {Name: "scaler", ViperKey: "models.scaler", Description: "Path to the statistics scaler artifact"},
	FlagPopularity:  {Name: "popularity-model", ViperKey: "models.popularity_classifier", Description: "Path to the popularity classifier artifact"},
	FlagRedisURL:    {Name: "redis-url", ViperKey: "cache.redis_url", Description: "Redis URL for the metadata cache (empty disables caching)"},
	FlagMetricsFile: {Name: "metrics-textfile", ViperKey: "metrics.textfile", Description: "Write run metrics to this Prometheus textfile"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
