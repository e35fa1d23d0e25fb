package history

import (
	"path/filepath"

	"codeberg.org/mutker/mcwatch/internal/errors"
)

const (
	defaultDirPerm = 0o755
	backupDirName  = "backups"
)

type Config struct {
	DBPath  string
	Enabled bool
}

func (c Config) Validate() error {
	// Only validate DBPath if the archive is enabled
	if c.Enabled && c.DBPath == "" {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}

func (c Config) backupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}
