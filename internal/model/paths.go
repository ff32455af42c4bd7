package model

import (
	"os"
	"path/filepath"
)

// ConfigDirName is the per-user settings directory under $HOME
const ConfigDirName = ".zktransfer"

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "zktransfer-cache")
	}
	return filepath.Join(home, ConfigDirName, "cache")
}
