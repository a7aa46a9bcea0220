package palconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/palforth/configs"
	"github.com/reusee/palforth/logs"
)

//go:embed schema.cue
var schema string

var filenames = []string{
	"palforth.cue",
	".palforth.cue",
}

// ConfigPaths lists config files, most specific first.
type ConfigPaths []string

// DefaultConfigPaths returns the existing config files in the working
// directory, the user config directory and /etc.
func DefaultConfigPaths() ConfigPaths {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")

	var paths ConfigPaths
	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func (Module) ConfigsLoader(
	paths ConfigPaths,
	logger logs.Logger,
) configs.Loader {
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", []string(paths),
		)
	}
	return configs.NewLoader(paths, schema)
}
