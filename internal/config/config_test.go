package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/mcwatch/internal/config"
	"codeberg.org/mutker/mcwatch/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(fs)
	// keep a stray .env in the working directory out of the tests
	require.NoError(t, fs.Parse(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)))
	return fs
}

func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MCWATCH_CONFIG", "MCWATCH_SERVER", "SERVER_IP", "MCWATCH_INTERVAL", "MCWATCH_TIMEZONE",
		"MCWATCH_LOG_LEVEL", "MCWATCH_HISTORY_ENABLED", "MCWATCH_REPORT_DISCORD_WEBHOOK", "FOOTER_IMAGE_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
server = "play.example.net:25570"
interval = "45s"
timezone = "Europe/Berlin"
state_file = "/tmp/mcwatch/stats.json"
log_level = "debug"

[history]
enabled = false

[report]
discord_webhook = "https://discord.example/api/webhooks/1/abc"
footer = "Example footer"
`)
	t.Setenv("MCWATCH_CONFIG", path)

	cfg, err := config.Load(flags(t))
	require.NoError(t, err)

	assert.Equal(t, "play.example.net:25570", cfg.Server)
	assert.Equal(t, 45*time.Second, cfg.Interval)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "/tmp/mcwatch/stats.json", cfg.StateFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "https://discord.example/api/webhooks/1/abc", cfg.Report.DiscordWebhook)
	assert.Equal(t, "Example footer", cfg.Report.Footer)
	assert.NoError(t, cfg.RequireServer())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(flags(t))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, config.DefaultStateFile, cfg.StateFile)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, config.DefaultHistoryDB, cfg.History.DB)
	assert.Equal(t, config.DefaultFooter, cfg.Report.Footer)
	assert.Empty(t, cfg.Report.DiscordWebhook)

	err = cfg.RequireServer()
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingConfig, errors.CodeOf(err))
}

func TestPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("MCWATCH_CONFIG", writeConfig(t, `
server = "from-file"
interval = "40s"
timezone = "UTC"
`))
	t.Setenv("MCWATCH_INTERVAL", "50s")
	t.Setenv("MCWATCH_TIMEZONE", "Asia/Tokyo")

	cfg, err := config.Load(flags(t, "--interval", "1m"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Server, "file beats default")
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone, "env beats file")
	assert.Equal(t, time.Minute, cfg.Interval, "flag beats env")
}

func TestLegacyEnvironmentNames(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_IP", "mc.example.org")
	t.Setenv("FOOTER_IMAGE_URL", "https://cdn.example/icon.png")

	cfg, err := config.Load(flags(t))
	require.NoError(t, err)

	assert.Equal(t, "mc.example.org", cfg.Server)
	assert.Equal(t, "https://cdn.example/icon.png", cfg.Report.FooterIcon)
}

func TestDotEnvFile(t *testing.T) {
	isolate(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MCWATCH_SERVER=dotenv.example\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MCWATCH_SERVER") })

	cfg, err := config.Load(flags(t, "--env-file", envFile))
	require.NoError(t, err)

	assert.Equal(t, "dotenv.example", cfg.Server)
}

func TestMissingDotEnvFileIsIgnored(t *testing.T) {
	isolate(t)

	_, err := config.Load(flags(t, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, err)
}

func TestUnreadableDotEnvFile(t *testing.T) {
	isolate(t)

	// a directory opens fine but cannot be read as a file
	_, err := config.Load(flags(t, "--env-file", t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	isolate(t)
	t.Setenv("MCWATCH_CONFIG", writeConfig(t, `
This is not a valid TOML file
`))

	_, err := config.Load(flags(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"log level", []string{"--log-level", "invalid"}, errors.ErrInvalidLogLevel},
		{"interval", []string{"--interval", "100ms"}, errors.ErrInvalidInterval},
		{"timezone", []string{"--timezone", "Nowhere/Special"}, errors.ErrInvalidTimezone},
		{"history db", []string{"--history-db", ""}, errors.ErrMissingConfig},
		{"http timeout", []string{"--http-timeout", "0s"}, errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := config.Load(flags(t, tt.args...))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestLogLevelFlag(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(flags(t, "--log-level", "warning"))
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.LogLevel, "Expected LogLevel to be set by flag")
}
