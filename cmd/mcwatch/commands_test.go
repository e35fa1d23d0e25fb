package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/history"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MCWATCH_SERVER", "")
	t.Setenv("SERVER_IP", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--env-file=", "--timezone=UTC"))

	err := cmd.Execute()
	return out.String(), err
}

func seededDay() *stats.DailyStats {
	s := stats.NewDailyStats("2024-01-01")
	s.HourlyBuckets[21] = stats.HourBucket{SampleCount: 2, PlayerSum: 84}
	s.PlayerSumTotal = 84
	s.PlayerSampleTotal = 2
	s.OnlineSeconds = 1800
	return s
}

func TestTodayPrintsPersistedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, stats.NewFileStore(path, logger.New(io.Discard)).Save(seededDay()))

	out, err := execute(t, "today", "--state-file", path, "--history=false")
	require.NoError(t, err)

	assert.Contains(t, out, "Daily Recap · 2024-01-01")
	assert.Contains(t, out, "00:30:00")
	assert.Contains(t, out, "21:00   42.00")
	assert.Contains(t, out, "20:00      --")
}

func TestTodayLeavesCorruptStateFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := execute(t, "today", "--state-file", path, "--history=false")
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.NoFileExists(t, path+".corrupt")
}

func TestHistoryPrintsArchivedDays(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	archive, err := history.Open(history.Config{DBPath: db, Enabled: true}, logger.New(io.Discard))
	require.NoError(t, err)
	require.NoError(t, archive.Record(context.Background(), seededDay()))
	require.NoError(t, archive.Close())

	out, err := execute(t, "history", "--history-db", db, "--limit", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "DAY")
	assert.Contains(t, out, "2024-01-01  00:30:00  00:00:00  100.0%")
}

func TestHistoryDisabled(t *testing.T) {
	out, err := execute(t, "history", "--history=false")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
}

func TestRunRequiresServer(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run",
		"--state-file", filepath.Join(dir, "stats.json"),
		"--pid-file", filepath.Join(dir, "mcwatch.pid"),
		"--history=false",
	)
	assert.True(t, errors.HasCode(err, errors.ErrMissingConfig))
}

func TestInvalidIntervalIsRejected(t *testing.T) {
	_, err := execute(t, "today", "--interval", "10ms", "--history=false")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}
