package report_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/report"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"codeberg.org/mutker/mcwatch/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHourlyHandle(t *testing.T) {
	var buf bytes.Buffer
	console := report.NewConsole(logger.New(&buf))

	handle, err := console.PublishHourly(context.Background(), sampleDataset(), "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "console-2024-01-01", handle)
	assert.Contains(t, buf.String(), "2024-01-01")

	handle, err = console.PublishHourly(context.Background(), sampleDataset(), "2024-01-02", handle)
	require.NoError(t, err)
	assert.Equal(t, "console-2024-01-01", handle)
}

func TestConsoleRecapAndStatus(t *testing.T) {
	var buf bytes.Buffer
	console := report.NewConsole(logger.New(&buf))

	require.NoError(t, console.PublishDailyRecap(context.Background(), stats.NewRecap(stats.NewDailyStats("2024-01-01"))))
	assert.Contains(t, buf.String(), "Daily Recap")

	handle, err := console.PublishStatus(context.Background(), report.Board{Status: &status.Status{Online: true, PlayersOnline: 2}}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, handle)
	assert.Contains(t, buf.String(), "2 Players")
}

func TestNewSelectsPublisher(t *testing.T) {
	log := logger.New(io.Discard)

	p, err := report.New(report.Config{}, log)
	require.NoError(t, err)
	assert.IsType(t, &report.Console{}, p)

	p, err = report.New(report.Config{DiscordWebhook: "https://discord.com/api/webhooks/1/abc"}, log)
	require.NoError(t, err)
	assert.IsType(t, &report.Discord{}, p)

	_, err = report.New(report.Config{DiscordWebhook: "not a url"}, log)
	assert.True(t, errors.HasCode(err, report.ErrInvalidWebhook))
}
