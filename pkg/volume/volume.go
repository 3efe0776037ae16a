// Package volume discovers the video ids staged on the shared media volume.
package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPath is where the media volume is mounted in the deployment.
const DefaultPath = "/video-container"

// ListVideoIDs returns the video ids staged in dir. Each non-hidden entry
// names one video: directories by their name and files by their name without
// extension. The result is sorted and free of duplicates.
func ListVideoIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing volume %s: %w", dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if name == "" {
			continue
		}
		ids = append(ids, name)
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}
