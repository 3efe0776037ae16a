// Package sqlitepath locates the SQLite warehouse file used when the
// database driver is sqlite and no explicit path is configured.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/tubestar/pkg/config"
	"github.com/papercomputeco/tubestar/pkg/dotdir"
)

// ResolveSQLitePath returns the warehouse file to open. An explicit override
// wins, then a warehouse inside configDir, then the first existing candidate.
// When nothing exists yet the path inside the resolved .tubestar/ directory
// is returned so the first run creates it there.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	ddm := dotdir.NewManager()
	if configDir != "" {
		return ddm.Path(configDir, config.SQLiteFileName)
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}

	return ddm.Path("", config.SQLiteFileName)
}

func sqliteCandidates() []string {
	candidates := []string{
		filepath.Join(dotdir.DirName, config.SQLiteFileName),
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "tubestar", config.SQLiteFileName))
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, dotdir.DirName, config.SQLiteFileName))
	}

	return candidates
}
