package history

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS daily_stats (
	       day_key         TEXT PRIMARY KEY,
	       online_seconds  INTEGER NOT NULL CHECK (online_seconds >= 0),
	       offline_seconds INTEGER NOT NULL CHECK (offline_seconds >= 0),
	       to_online       INTEGER NOT NULL CHECK (to_online >= 0),
	       to_offline      INTEGER NOT NULL CHECK (to_offline >= 0),
	       player_sum      INTEGER NOT NULL CHECK (player_sum >= 0),
	       sample_count    INTEGER NOT NULL CHECK (sample_count >= 0),
	       finalized_at    INTEGER NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS hourly_stats (
	       day_key      TEXT NOT NULL REFERENCES daily_stats(day_key) ON DELETE CASCADE,
	       hour         INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
	       sample_count INTEGER NOT NULL CHECK (sample_count > 0),
	       player_sum   INTEGER NOT NULL CHECK (player_sum >= 0),
	       PRIMARY KEY (day_key, hour)
	   );`

	upsertDailySQL = `
    INSERT INTO daily_stats (
        day_key,
        online_seconds, offline_seconds,
        to_online, to_offline,
        player_sum, sample_count,
        finalized_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(day_key) DO UPDATE SET
        online_seconds = excluded.online_seconds,
        offline_seconds = excluded.offline_seconds,
        to_online = excluded.to_online,
        to_offline = excluded.to_offline,
        player_sum = excluded.player_sum,
        sample_count = excluded.sample_count,
        finalized_at = excluded.finalized_at`

	deleteHourlySQL = `DELETE FROM hourly_stats WHERE day_key = ?`

	insertHourlySQL = `
    INSERT INTO hourly_stats (day_key, hour, sample_count, player_sum)
    VALUES (?, ?, ?, ?)`

	selectDaysSQL = `
    SELECT day_key, online_seconds, offline_seconds, to_online, to_offline,
           player_sum, sample_count, finalized_at
    FROM daily_stats
    ORDER BY day_key DESC
    LIMIT ?`

	selectHoursSQL = `
    SELECT hour, sample_count, player_sum
    FROM hourly_stats
    WHERE day_key = ?
    ORDER BY hour`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()
	ctx := context.Background()

	log.Debug().Msg("Creating history database...")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "create_tables",
		})
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("History schema initialized")

	return nil
}

// GetSchemaVersion returns the current schema version, 0 for an empty
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
