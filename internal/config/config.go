package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/mcwatch/internal/clock"
	"codeberg.org/mutker/mcwatch/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix          = "MCWATCH"
	DefaultInterval    = 30 * time.Second
	DefaultHTTPTimeout = 10 * time.Second
	DefaultLogLevel    = "info"
	DefaultTimezone    = "Local"
	DefaultStateFile   = "/var/lib/mcwatch/stats.json"
	DefaultPIDFile     = "/run/mcwatch.pid"
	DefaultHistoryDB   = "/var/lib/mcwatch/history.db"
	DefaultFooter      = "Developed by CraftTech Studios"
	DefaultEnvFile     = ".env"

	minInterval = time.Second
)

type Config struct {
	Server      string        `mapstructure:"server"`
	Interval    time.Duration `mapstructure:"interval"`
	Timezone    string        `mapstructure:"timezone"`
	StateFile   string        `mapstructure:"state_file"`
	PIDFile     string        `mapstructure:"pid_file"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFile     string        `mapstructure:"log_file"`
	History     HistoryConfig `mapstructure:"history"`
	Report      ReportConfig  `mapstructure:"report"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DB      string `mapstructure:"db"`
}

type ReportConfig struct {
	DiscordWebhook string `mapstructure:"discord_webhook"`
	Footer         string `mapstructure:"footer"`
	FooterIcon     string `mapstructure:"footer_icon"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"server":          "server",
	"interval":        "interval",
	"timezone":        "timezone",
	"state-file":      "state_file",
	"pid-file":        "pid_file",
	"http-timeout":    "http_timeout",
	"log-level":       "log_level",
	"log-file":        "log_file",
	"history":         "history.enabled",
	"history-db":      "history.db",
	"discord-webhook": "report.discord_webhook",
}

// legacy variable names from the original .env layout
var legacyEnv = map[string]string{
	"server":             "SERVER_IP",
	"report.footer_icon": "FOOTER_IMAGE_URL",
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: /etc/mcwatch/mcwatch.toml)")
	fs.String("env-file", DefaultEnvFile, "dotenv file loaded before reading the environment")
	fs.String("server", "", "server address to track (host[:port])")
	fs.Duration("interval", DefaultInterval, "interval between status polls")
	fs.String("timezone", DefaultTimezone, "IANA time zone used for day and hour buckets")
	fs.String("state-file", DefaultStateFile, "file holding the current day's stats")
	fs.String("pid-file", DefaultPIDFile, "pid file guarding the state file")
	fs.Duration("http-timeout", DefaultHTTPTimeout, "timeout for each outbound request")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warning, error)")
	fs.String("log-file", "", "also write logs to this rotating file")
	fs.Bool("history", true, "archive finalized days")
	fs.String("history-db", DefaultHistoryDB, "SQLite database of finalized days")
	fs.String("discord-webhook", "", "Discord webhook URL for reports")
}

// Load merges defaults, config file, .env, environment and flags, in
// increasing order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()

	envFile := DefaultEnvFile
	configPath := os.Getenv(EnvPrefix + "_CONFIG")
	if fs != nil {
		if f := fs.Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
		if f := fs.Lookup("config"); f != nil && f.Changed {
			configPath = f.Value.String()
		}
	}

	if envFile != "" {
		// existing environment wins over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errFactory.WithData(errors.ErrReadConfig, struct {
				Path  string
				Error string
			}{
				Path:  envFile,
				Error: err.Error(),
			})
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), name); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mcwatch")
		v.AddConfigPath("/etc/mcwatch")
		v.AddConfigPath("$HOME/.config/mcwatch")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", "")
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("state_file", DefaultStateFile)
	v.SetDefault("pid_file", DefaultPIDFile)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db", DefaultHistoryDB)
	v.SetDefault("report.discord_webhook", "")
	v.SetDefault("report.footer", DefaultFooter)
	v.SetDefault("report.footer_icon", "")
}

// Validate checks the values that do not depend on the command being run.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < minInterval {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.HTTPTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{"http_timeout", c.HTTPTimeout})
	}
	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if _, err := clock.NewCalendar(c.Timezone); err != nil {
		return err
	}
	if c.StateFile == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "state_file")
	}
	if c.History.Enabled && c.History.DB == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "history.db")
	}

	return nil
}

// RequireServer fails when no server address is configured.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New().WithData(errors.ErrMissingConfig, "server")
	}
	return nil
}
