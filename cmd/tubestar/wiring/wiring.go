// Package wiring turns resolved configuration into the collaborators shared by
// the tubestar commands: logger, metrics recorder, warehouse store and
// platform source.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/papercomputeco/tubestar/cmd/tubestar/sqlitepath"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/logger"
	"github.com/papercomputeco/tubestar/pkg/metrics"
	"github.com/papercomputeco/tubestar/pkg/volume"
	"github.com/papercomputeco/tubestar/pkg/warehouse"
	"github.com/papercomputeco/tubestar/pkg/warehouse/postgres"
	"github.com/papercomputeco/tubestar/pkg/warehouse/sqlite"
	"github.com/papercomputeco/tubestar/pkg/youtube"
)

// Global flag names registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagJSONLogs  = "json-logs"
	FlagLogFile   = "log-file"
)

// ErrMissingAPIKey is returned when a command needs the platform but no API
// key is configured.
var ErrMissingAPIKey = errors.New("youtube api key is not set (use --api-key, TUBESTAR_YOUTUBE_API_KEY or YOUTUBE_API_KEY)")

// Runtime is what a command has to work with once flags are parsed.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
	ConfigDir string

	logFile *os.File
}

// Load resolves configuration for cmd, binding the registry flags named by
// flagKeys, and builds the logger and metrics recorder.
func Load(cmd *cobra.Command, flagKeys ...string) (*Runtime, error) {
	configDir, _ := cmd.Flags().GetString(FlagConfigDir)
	return LoadDir(cmd, configDir, flagKeys...)
}

// LoadDir is Load with the .tubestar/ directory given explicitly.
func LoadDir(cmd *cobra.Command, configDir string, flagKeys ...string) (*Runtime, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if f := cmd.Flags().Lookup(config.Flags[config.FlagSQLite].Name); f != nil && f.Changed {
		cfg.Database.Driver = config.DriverSQLite
	}
	if cfg.Database.Driver == config.DriverSQLite {
		cfg.Database.SQLitePath, err = sqlitepath.ResolveSQLitePath(cfg.Database.SQLitePath, configDir)
		if err != nil {
			return nil, err
		}
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    NewLogger(cmd),
		Metrics:   metrics.New(),
		ConfigDir: configDir,
	}

	// A log file receives every record as JSON, debug included, next to the
	// console output.
	if path, _ := cmd.Flags().GetString(FlagLogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		rt.logFile = f
		rt.Logger = logger.Multi(rt.Logger, logger.New(
			logger.WithWriter(f),
			logger.WithJSON(true),
			logger.WithDebug(true),
		))
	}

	return rt, nil
}

// Close releases the log file, if one was opened. It is safe to call more
// than once.
func (r *Runtime) Close() error {
	if r.logFile == nil {
		return nil
	}
	err := r.logFile.Close()
	r.logFile = nil
	return err
}

// NewLogger builds the command logger from the global flags. Records go to
// the command's error stream, pretty-printed on a terminal.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	jsonLogs, _ := cmd.Flags().GetBool(FlagJSONLogs)

	w := cmd.ErrOrStderr()
	return logger.New(
		logger.WithDebug(debug),
		logger.WithWriter(w),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(!jsonLogs && logger.IsTerminal(w)),
	)
}

// OpenStore connects to the configured warehouse.
func (r *Runtime) OpenStore(ctx context.Context) (*warehouse.Store, error) {
	db := r.Config.Database

	switch db.Driver {
	case config.DriverSQLite:
		r.Logger.Debug("opening sqlite warehouse", "path", db.SQLitePath)
		return sqlite.NewStore(db.SQLitePath, r.Logger)

	case config.DriverPostgres:
		r.Logger.Debug("connecting to postgres warehouse", "host", db.Host, "port", db.Port, "database", db.Name)
		dsn := postgres.DSN(db.Host, int(db.Port), db.User, db.Password, db.Name, db.SSLMode)
		return postgres.NewStore(ctx, postgres.DefaultOptions(dsn), r.Logger)

	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}

// NewSource builds the platform source: Data API metadata, timed-text
// captions and, when a Redis URL is configured, the channel cache. The
// returned close function releases the cache connection. An unreachable
// cache is logged and skipped.
func (r *Runtime) NewSource(ctx context.Context, opts ...option.ClientOption) (youtube.Source, func() error, error) {
	yt := r.Config.YouTube
	if yt.APIKey == "" {
		return nil, nil, ErrMissingAPIKey
	}

	data, err := youtube.NewDataAPI(ctx, append([]option.ClientOption{option.WithAPIKey(yt.APIKey)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}

	captions := youtube.NewTimedText(
		youtube.WithLanguages(yt.TranscriptLanguages...),
		youtube.WithTimedTextLogger(r.Logger),
	)

	var src youtube.Source = youtube.NewClient(data, captions)
	noop := func() error { return nil }

	if r.Config.Cache.RedisURL == "" {
		return src, noop, nil
	}

	rdb, err := youtube.NewRedisClient(ctx, r.Config.Cache.RedisURL)
	if err != nil {
		r.Logger.Warn("channel cache unavailable, continuing without it", "error", err)
		return src, noop, nil
	}

	ttl, err := r.Config.CacheTTL()
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}

	return youtube.NewCachedSource(src, rdb, ttl, r.Logger), rdb.Close, nil
}

// VideoIDs returns args when given, otherwise the ids staged on the media volume.
func (r *Runtime) VideoIDs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	ids, err := volume.ListVideoIDs(r.Config.Ingest.VolumePath)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("discovered videos on volume", "path", r.Config.Ingest.VolumePath, "count", len(ids))
	return ids, nil
}

// Finish records the run and writes the metrics textfile, if one is configured.
func (r *Runtime) Finish(command string, started time.Time) {
	r.Metrics.RunFinished(command, started, time.Now())

	if err := r.Metrics.WriteTextfile(r.Config.Metrics.Textfile); err != nil {
		r.Logger.Warn("writing metrics textfile", "path", r.Config.Metrics.Textfile, "error", err)
	}
}
