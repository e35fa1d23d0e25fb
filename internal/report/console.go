package report

import (
	"context"
	"strings"

	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

const consoleStatusHandle = "console-status"

// Console writes reports to the log.
type Console struct {
	log logger.Logger
}

func NewConsole(log logger.Logger) *Console {
	return &Console{log: log}
}

func (c *Console) PublishHourly(_ context.Context, dataset stats.HourlyDataset, dayKey, handle string) (string, error) {
	c.log.Info().
		Str("day", dayKey).
		Int("hours_with_data", dataset.Present()).
		Msg(HourlyTitle(dayKey) + "\n" + HourlyChart(dataset) + "\n" + HourTable(dataset))

	if handle == "" {
		handle = "console-" + dayKey
	}
	return handle, nil
}

func (c *Console) PublishDailyRecap(_ context.Context, recap stats.Recap) error {
	c.log.Info().
		Str("day", recap.DayKey).
		Float64("availability", recap.Availability()).
		Msg(RecapTitle(recap) + "\n" + renderFields(RecapFields(recap)))
	return nil
}

func (c *Console) PublishStatus(_ context.Context, board Board, _ string) (string, error) {
	players := 0
	if board.Status != nil && board.Status.Online {
		players = board.Status.PlayersOnline
	}

	c.log.Debug().
		Str("address", board.Address).
		Str("presence", Presence(players)).
		Msg(BoardTitle(board) + "\n" + renderFields(BoardFields(board)))

	return consoleStatusHandle, nil
}

func renderFields(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, f.Name+": "+strings.ReplaceAll(f.Value, "\n", ", "))
	}
	return strings.Join(lines, "\n")
}
