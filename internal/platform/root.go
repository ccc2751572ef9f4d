package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/notegrid/pkg/adapters/fs"
)

// ErrRootNotFound is returned by FindRoot when no ancestor holds notes.
var ErrRootNotFound = errors.New("data directory not found")

// FindRoot walks up from startDir looking for a data directory, recognized
// by a notegrid.yaml file or a <key>.json blob. It returns the absolute path
// of the first match.
func FindRoot(startDir, key string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if hasFile(dir, ConfigFile) || (key != "" && hasFile(dir, key+fs.DefaultExtension)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
