package config

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLiteFileName is the warehouse file created in the .tubestar/ directory
// when database.sqlite_path is unset.
const SQLiteFileName = "warehouse.db"

const (
	defaultDriver   = DriverPostgres
	defaultDBName   = "youtube"
	defaultDBUser   = "postgres"
	defaultDBHost   = "localhost"
	defaultDBPort   = 5432
	defaultSSLMode  = "disable"
	defaultLanguage = "en"

	defaultVolumePath = "/video-container"

	defaultStartYear = 2022
	defaultEndYear   = 2024

	defaultVectorizer           = "models/nlp_model.json"
	defaultSentimentClassifier  = "models/classificatie_model.json"
	defaultScaler               = "models/scaler.json"
	defaultPopularityClassifier = "models/kmeans_model.json"

	defaultCacheTTL = "24h"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Database: DatabaseConfig{
			Driver:  defaultDriver,
			Name:    defaultDBName,
			User:    defaultDBUser,
			Host:    defaultDBHost,
			Port:    defaultDBPort,
			SSLMode: defaultSSLMode,
		},
		YouTube: YouTubeConfig{
			TranscriptLanguages: []string{defaultLanguage},
		},
		Ingest: IngestConfig{
			VolumePath: defaultVolumePath,
		},
		TimeDimension: TimeDimensionConfig{
			StartYear: defaultStartYear,
			EndYear:   defaultEndYear,
		},
		Models: ModelsConfig{
			Vectorizer:           defaultVectorizer,
			SentimentClassifier:  defaultSentimentClassifier,
			Scaler:               defaultScaler,
			PopularityClassifier: defaultPopularityClassifier,
		},
		Cache: CacheConfig{
			TTL: defaultCacheTTL,
		},
	}
}
