package report

import (
	"net/url"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
)

const (
	DefaultFooter  = "Developed by CraftTech Studios"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	DiscordWebhook string
	Footer         string
	FooterIcon     string
	Timeout        time.Duration
}

func (c Config) Validate() error {
	if c.DiscordWebhook == "" {
		return nil
	}
	u, err := url.Parse(c.DiscordWebhook)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.New().WithData(ErrInvalidWebhook, struct{ Webhook string }{redact(c.DiscordWebhook)})
	}
	return nil
}

// New returns the Discord publisher when a webhook is configured and the
// console publisher otherwise.
func New(cfg Config, log logger.Logger) (Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New().Wrap(ErrInvalidConfig, err)
	}
	if cfg.DiscordWebhook == "" {
		log.Info().Msg("No Discord webhook configured, reporting to console")
		return NewConsole(log), nil
	}
	return NewDiscord(cfg, log), nil
}

// redact drops the webhook token from a URL before it is logged.
func redact(webhook string) string {
	u, err := url.Parse(webhook)
	if err != nil {
		return "<invalid>"
	}
	u.Path = "/redacted"
	u.RawQuery = ""
	return u.String()
}
