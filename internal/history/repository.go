package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"

	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func newRepository(cfg Config, log logger.Logger) (*repository, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	// one writer process, one connection
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("History archive initialized")

	return &repository{
		db:  db,
		log: log,
		now: time.Now,
	}, nil
}

func (r *repository) record(ctx context.Context, snapshot *stats.DailyStats) error {
	errFactory := errors.New()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				r.log.Error().Err(err).Msg("Failed to roll back transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, upsertDailySQL,
		snapshot.DayKey,
		snapshot.OnlineSeconds,
		snapshot.OfflineSeconds,
		snapshot.TransitionCounts.ToOnline,
		snapshot.TransitionCounts.ToOffline,
		snapshot.PlayerSumTotal,
		snapshot.PlayerSampleTotal,
		r.now().Unix(),
	); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	if _, err := tx.ExecContext(ctx, deleteHourlySQL, snapshot.DayKey); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertHourlySQL)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	hours := make([]int, 0, len(snapshot.HourlyBuckets))
	for hour := range snapshot.HourlyBuckets {
		hours = append(hours, hour)
	}
	sort.Ints(hours)

	for _, hour := range hours {
		b := snapshot.HourlyBuckets[hour]
		if _, err := stmt.ExecContext(ctx, snapshot.DayKey, hour, b.SampleCount, b.PlayerSum); err != nil {
			return errFactory.WithData(ErrTransactionFailed, struct {
				Phase string
				Hour  int
				Error string
			}{
				Phase: "insert_hour",
				Hour:  hour,
				Error: err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	r.log.Debug().
		Str("day", snapshot.DayKey).
		Int("hours", len(hours)).
		Msg("Archived daily stats")

	return nil
}

func (r *repository) days(ctx context.Context, limit int) ([]Day, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectDaysSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	var days []Day
	for rows.Next() {
		s := stats.NewDailyStats("")
		var finalized int64
		if err := rows.Scan(
			&s.DayKey,
			&s.OnlineSeconds,
			&s.OfflineSeconds,
			&s.TransitionCounts.ToOnline,
			&s.TransitionCounts.ToOffline,
			&s.PlayerSumTotal,
			&s.PlayerSampleTotal,
			&finalized,
		); err != nil {
			rows.Close()
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		days = append(days, Day{
			DayKey:      s.DayKey,
			FinalizedAt: time.Unix(finalized, 0),
			Stats:       s,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	// the single connection must be free before the hourly queries
	rows.Close()

	for _, d := range days {
		if err := r.loadHours(ctx, d.Stats); err != nil {
			return nil, err
		}
	}

	return days, nil
}

func (r *repository) loadHours(ctx context.Context, s *stats.DailyStats) error {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectHoursSQL, s.DayKey)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour int
		var b stats.HourBucket
		if err := rows.Scan(&hour, &b.SampleCount, &b.PlayerSum); err != nil {
			return errFactory.Wrap(ErrStorageAccess, err)
		}
		s.HourlyBuckets[hour] = b
	}

	return rows.Err()
}

func (r *repository) close() error {
	errFactory := errors.New()

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.log.Debug().Err(err).Msg("Failed to checkpoint WAL")
	}

	if err := r.db.Close(); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.log.Info().Msg("History archive closed")

	return nil
}
