// Package configcmder provides the config command for managing persistent
// tubestar configuration stored in the .tubestar/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent tubestar configuration.

Configuration is stored as config.toml in the .tubestar/ directory and provides
default values for command flags. Environment variables (TUBESTAR_*, and
the DB_*, YOUTUBE_API_KEY and VIDEO_VOLUME_PATH names of older deployments)
override the file, and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  database.driver, database.name, database.user, database.password,
  database.host, database.port, database.sslmode, database.sqlite_path,
  youtube.api_key, youtube.transcript_languages, youtube.channel_id,
  ingest.volume_path, time_dimension.start_year, time_dimension.end_year,
  models.vectorizer, models.sentiment_classifier, models.scaler,
  models.popularity_classifier, cache.redis_url, cache.ttl, metrics.textfile

Use subcommands to get, set, or list configuration values:
  tubestar config set <key> <value>    Set a configuration value
  tubestar config get <key>            Get a configuration value
  tubestar config list                 List all configuration values

Examples:
  tubestar config set database.driver sqlite
  tubestar config set youtube.channel_id UC_x5XG1OV2P6uZZ5FSM9Ttw
  tubestar config get database.host
  tubestar config list`

const configShortDesc string = "Manage persistent tubestar configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
