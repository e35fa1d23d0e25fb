package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

const webhookUsername = "mcwatch"

// Discord publishes reports through a Discord webhook. Handles are message
// ids, so a published message can be edited in place later on.
type Discord struct {
	webhook    string
	http       *http.Client
	footer     string
	footerIcon string
	log        logger.Logger
}

type webhookMessage struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Thumbnail   *embedImage  `json:"thumbnail,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

func NewDiscord(cfg Config, log logger.Logger) *Discord {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	footer := cfg.Footer
	if footer == "" {
		footer = DefaultFooter
	}

	return &Discord{
		webhook:    strings.TrimRight(cfg.DiscordWebhook, "/"),
		http:       &http.Client{Timeout: timeout},
		footer:     footer,
		footerIcon: cfg.FooterIcon,
		log:        log,
	}
}

func (d *Discord) PublishHourly(ctx context.Context, dataset stats.HourlyDataset, dayKey, handle string) (string, error) {
	msg := d.message("", embed{
		Title:       HourlyTitle(dayKey),
		Description: codeBlock(HourlyChart(dataset)),
		Fields: []embedField{
			{Name: "Hourly average", Value: codeBlock(HourTable(dataset))},
		},
	})
	return d.upsert(ctx, handle, msg)
}

func (d *Discord) PublishDailyRecap(ctx context.Context, recap stats.Recap) error {
	msg := d.message("", embed{
		Title:       RecapTitle(recap),
		Description: codeBlock(HourlyChart(recap.Hourly)),
		Fields:      toEmbedFields(RecapFields(recap)),
	})
	_, err := d.create(ctx, msg)
	return err
}

func (d *Discord) PublishStatus(ctx context.Context, board Board, handle string) (string, error) {
	e := embed{
		Title:       BoardTitle(board),
		Description: BoardDescription(board),
		Fields:      toEmbedFields(BoardFields(board)),
	}
	if board.IconURL != "" && board.Status != nil && board.Status.Online {
		e.Thumbnail = &embedImage{URL: board.IconURL}
	}
	if !board.UpdatedAt.IsZero() {
		e.Timestamp = board.UpdatedAt.UTC().Format(time.RFC3339)
	}

	players := 0
	if board.Status != nil && board.Status.Online {
		players = board.Status.PlayersOnline
	}

	return d.upsert(ctx, handle, d.message(Presence(players), e))
}

func (d *Discord) message(content string, e embed) webhookMessage {
	e.Color = EmbedColor
	e.Footer = &embedFooter{Text: d.footer, IconURL: d.footerIcon}
	return webhookMessage{
		Username: webhookUsername,
		Content:  content,
		Embeds:   []embed{e},
	}
}

// upsert edits the message behind handle and falls back to a new message
// when there is none or the edit fails.
func (d *Discord) upsert(ctx context.Context, handle string, msg webhookMessage) (string, error) {
	if handle != "" {
		err := d.edit(ctx, handle, msg)
		if err == nil {
			return handle, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		d.log.Warn().
			Err(err).
			Str("handle", handle).
			Msg("Failed to edit message, sending a new one")
	}
	return d.create(ctx, msg)
}

func (d *Discord) create(ctx context.Context, msg webhookMessage) (string, error) {
	var resp webhookResponse
	if err := d.send(ctx, http.MethodPost, d.webhook+"?wait=true", msg, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New().WithMessage(ErrPublishFailed, "webhook response has no message id")
	}

	d.log.Debug().Str("handle", resp.ID).Msg("Discord message sent")

	return resp.ID, nil
}

func (d *Discord) edit(ctx context.Context, handle string, msg webhookMessage) error {
	endpoint := d.webhook + "/messages/" + url.PathEscape(handle)
	if err := d.send(ctx, http.MethodPatch, endpoint, msg, nil); err != nil {
		return err
	}

	d.log.Debug().Str("handle", handle).Msg("Discord message updated")

	return nil
}

func (d *Discord) send(ctx context.Context, method, endpoint string, msg webhookMessage, out any) error {
	errFactory := errors.New()

	body, err := json.Marshal(msg)
	if err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		// the transport error carries the webhook token
		return errFactory.WithData(ErrPublishFailed, struct {
			Method string
			Error  string
		}{
			Method: method,
			Error:  strings.ReplaceAll(err.Error(), d.webhook, redact(d.webhook)),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errFactory.WithData(ErrRejected, struct {
			Method     string
			StatusCode int
			Body       string
		}{
			Method:     method,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(detail)),
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errFactory.WithData(ErrPublishFailed, struct {
			Phase string
			Error string
		}{
			Phase: "decode_response",
			Error: fmt.Sprint(err),
		})
	}
	return nil
}

func toEmbedFields(fields []Field) []embedField {
	out := make([]embedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, embedField(f))
	}
	return out
}
