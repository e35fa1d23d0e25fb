package stats

import (
	"encoding/json"
	"os"
	"path/filepath"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
	corruptSuffix   = ".corrupt"
)

// Store persists the live DailyStats record.
type Store interface {
	// Load never fails: missing or unreadable state yields a fresh record
	// for dayKey.
	Load(dayKey string) *DailyStats
	Save(stats *DailyStats) error
}

// FileStore keeps the record as a single JSON document.
type FileStore struct {
	path string
	log  logger.Logger
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(dayKey string) *DailyStats {
	return f.load(dayKey, true)
}

// Peek reads the record like Load but never touches the file, so it is
// safe to use while another process owns the state.
func (f *FileStore) Peek(dayKey string) *DailyStats {
	return f.load(dayKey, false)
}

func (f *FileStore) load(dayKey string, owner bool) *DailyStats {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.log.Debug().Str("path", f.path).Msg("No persisted stats, starting fresh")
		} else {
			f.log.WarnWithCode(errors.New().Wrap(errors.ErrPersistenceCorruption, err)).
				Str("path", f.path).
				Msg("Cannot read persisted stats, starting fresh")
		}
		return NewDailyStats(dayKey)
	}

	stats, err := decode(data)
	if err != nil {
		if !owner {
			f.log.WarnWithCode(errors.New().Wrap(errors.ErrPersistenceCorruption, err)).
				Str("path", f.path).
				Msg("Persisted stats are corrupt")
			return NewDailyStats(dayKey)
		}
		f.log.WarnWithCode(errors.New().Wrap(errors.ErrPersistenceCorruption, err)).
			Str("path", f.path).
			Str("preserved_as", f.path+corruptSuffix).
			Msg("Persisted stats are corrupt, starting fresh")
		f.preserveCorrupt()
		return NewDailyStats(dayKey)
	}

	f.log.Debug().
		Str("path", f.path).
		Str("day", stats.DayKey).
		Int64("samples", stats.PlayerSampleTotal).
		Msg("Persisted stats loaded")

	return stats
}

func (f *FileStore) Save(stats *DailyStats) error {
	errFactory := errors.New()

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return errFactory.WithData(errors.ErrPersistenceWrite, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  dir,
			Error: err.Error(),
		})
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}
	if err := os.Chmod(tmpPath, defaultFilePerm); err != nil {
		return errFactory.Wrap(errors.ErrPersistenceWrite, err)
	}

	// rename within one directory replaces the file atomically
	if err := os.Rename(tmpPath, f.path); err != nil {
		return errFactory.WithData(errors.ErrPersistenceWrite, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "rename",
			Path:  f.path,
			Error: err.Error(),
		})
	}
	committed = true

	return nil
}

func (f *FileStore) preserveCorrupt() {
	if err := os.Rename(f.path, f.path+corruptSuffix); err != nil {
		f.log.Debug().Err(err).Msg("Failed to preserve corrupt stats file")
	}
}

func decode(data []byte) (*DailyStats, error) {
	var stats DailyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	if err := stats.validate(); err != nil {
		return nil, err
	}
	if stats.HourlyBuckets == nil {
		stats.HourlyBuckets = make(map[int]HourBucket)
	}
	return &stats, nil
}
