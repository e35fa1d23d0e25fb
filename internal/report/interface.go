// Package report renders tracker output and delivers it to a destination.
package report

import (
	"context"
	"time"

	"codeberg.org/mutker/mcwatch/internal/stats"
	"codeberg.org/mutker/mcwatch/internal/status"
)

// StatusBoard keeps a single live status message up to date.
type StatusBoard interface {
	// PublishStatus updates the message behind handle, or creates one when
	// handle is empty or no longer valid, and returns the handle to reuse.
	PublishStatus(ctx context.Context, board Board, handle string) (string, error)
}

// Publisher delivers every kind of report.
type Publisher interface {
	PublishHourly(ctx context.Context, dataset stats.HourlyDataset, dayKey, handle string) (string, error)
	PublishDailyRecap(ctx context.Context, recap stats.Recap) error
	StatusBoard
}

// Board is everything shown on the live status message.
type Board struct {
	Address   string
	Status    *status.Status
	Location  *status.Location
	IconURL   string
	Ping      string
	UpdatedAt time.Time
	// Local wall time of the update, HH:MM:SS.
	UpdatedLocal string
}
