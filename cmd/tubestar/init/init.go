// Package initcmder provides the init command: it creates the .tubestar/
// directory with a config.toml and prepares the warehouse schema.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tubestar/cmd/tubestar/wiring"
	"github.com/papercomputeco/tubestar/pkg/cliui"
	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/dotdir"
	"github.com/papercomputeco/tubestar/pkg/logger"
)

const configFile = "config.toml"

const initLongDesc string = `Initialize tubestar in the current working directory.

Creates a local .tubestar/ directory holding config.toml, which takes
precedence over ~/.tubestar/. Then connects to the configured warehouse and
prepares it:

  - creates the dimension and fact tables if they do not exist
  - fills the time dimension with every day of the configured years
  - adds the sentiment and popularity_rating label columns

Running init again is safe; existing rows and config are kept unless
--preset is given, which overwrites config.toml.

The --preset flag accepts a preset name (postgres, sqlite) or an http(s)
URL pointing to a config.toml to download.

Examples:
  tubestar init
  tubestar init --preset sqlite
  tubestar init --start-year 2020 --end-year 2025
  tubestar init --preset https://example.com/tubestar/config.toml
  tubestar init --skip-warehouse`

const initShortDesc string = "Initialize .tubestar/ and the warehouse schema"

var flagKeys = []string{
	config.FlagDriver,
	config.FlagSQLite,
	config.FlagDBHost,
	config.FlagDBPort,
	config.FlagDBName,
	config.FlagDBUser,
	config.FlagStartYear,
	config.FlagEndYear,
}

type initCommander struct {
	preset        string
	skipWarehouse bool

	driver     string
	sqlitePath string
	dbHost     string
	dbPort     uint
	dbName     string
	dbUser     string
	startYear  int
	endYear    int
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Write config.toml from a preset name or URL")
	cmd.Flags().BoolVar(&cmder.skipWarehouse, "skip-warehouse", false, "Only create the directory and config, do not touch the warehouse")
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBHost, &cmder.dbHost)
	config.AddUintFlag(cmd, config.Flags, config.FlagDBPort, &cmder.dbPort)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBName, &cmder.dbName)
	config.AddStringFlag(cmd, config.Flags, config.FlagDBUser, &cmder.dbUser)
	config.AddIntFlag(cmd, config.Flags, config.FlagStartYear, &cmder.startYear)
	config.AddIntFlag(cmd, config.Flags, config.FlagEndYear, &cmder.endYear)

	return cmd
}

func (c *initCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	configDir, _ := cmd.Flags().GetString(wiring.FlagConfigDir)

	dir, err := c.initDir(out, configDir)
	if err != nil {
		return err
	}

	if err := c.writeConfig(cmd.Context(), out, dir); err != nil {
		return err
	}

	if c.skipWarehouse {
		return nil
	}

	// Resolve the rest of the config from the directory just initialized.
	rt, err := wiring.LoadDir(cmd, dir, flagKeys...)
	if err != nil {
		return err
	}
	defer rt.Close()
	return c.initWarehouse(cmd.Context(), out, rt)
}

func (c *initCommander) initDir(out io.Writer, configDir string) (string, error) {
	dir := configDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dotdir.DirName)
	}

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating .tubestar directory: %w", err)
	}

	fmt.Fprintf(out, "Initialized .tubestar directory: %s\n", dir)
	return dir, nil
}

// writeConfig writes the preset when one is given, or the defaults when no
// config.toml exists yet.
func (c *initCommander) writeConfig(ctx context.Context, out io.Writer, dir string) error {
	path := filepath.Join(dir, configFile)

	var (
		cfg *config.Config
		err error
	)
	switch {
	case c.preset != "":
		cfg, err = resolvePreset(ctx, c.preset)
		if err != nil {
			return err
		}

	default:
		if _, err := os.Stat(path); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
		cfg = config.NewDefaultConfig()
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func (c *initCommander) initWarehouse(ctx context.Context, out io.Writer, rt *wiring.Runtime) error {
	started := time.Now()
	defer rt.Finish("init", started)

	animate := logger.IsTerminal(out)
	td := rt.Config.TimeDimension
	if td.StartYear > td.EndYear {
		return fmt.Errorf("time dimension start year %d is after end year %d", td.StartYear, td.EndYear)
	}

	store, err := rt.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	err = cliui.Step(out, "Creating warehouse tables", animate, func() error {
		return store.EnsureSchema(ctx)
	})
	if err != nil {
		return err
	}

	var inserted int
	msg := fmt.Sprintf("Populating time dimension %d-%d", td.StartYear, td.EndYear)
	err = cliui.Step(out, msg, animate, func() error {
		var err error
		inserted, err = store.InsertYears(ctx, td.StartYear, td.EndYear)
		return err
	})
	if err != nil {
		return err
	}

	err = cliui.Step(out, "Adding enrichment columns", animate, func() error {
		return store.EnsureEnrichmentColumns(ctx)
	})
	if err != nil {
		return err
	}

	rt.Logger.Info("warehouse initialized",
		"driver", rt.Config.Database.Driver,
		"dates_inserted", inserted,
		"duration", time.Since(started),
	)
	fmt.Fprintf(out, "\n  %s Warehouse ready (%s, %d new dates)\n", cliui.SuccessMark, rt.Config.Database.Driver, inserted)
	return nil
}

// resolvePreset returns a named preset or downloads a config.toml from a URL.
func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	if !strings.HasPrefix(preset, "http://") && !strings.HasPrefix(preset, "https://") {
		return config.PresetConfig(preset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, preset, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
