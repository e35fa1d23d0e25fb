package report

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/guptarohit/asciigraph"
)

const (
	EmbedColor = 0x9B59B6

	chartHeight = 8
	noData      = "--"
	notAvail    = "N/A"
)

// Field is one labelled value of a rendered report.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// HourlyChart plots the hourly means, one column per hour. Hours without
// data are drawn at zero.
func HourlyChart(dataset stats.HourlyDataset) string {
	if dataset.Present() == 0 {
		return "No data available"
	}

	data := make([]float64, len(dataset))
	for hour, avg := range dataset {
		if avg != nil {
			data[hour] = *avg
		}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Precision(1),
		asciigraph.Caption("Average players per hour"),
	)
}

// HourTable lists every hour of the day with its mean load.
func HourTable(dataset stats.HourlyDataset) string {
	var b strings.Builder
	for hour, avg := range dataset {
		value := noData
		if avg != nil {
			value = fmt.Sprintf("%.2f", *avg)
		}
		fmt.Fprintf(&b, "%02d:00  %6s\n", hour, value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func HourlyTitle(dayKey string) string {
	return "📊 Player Activity · " + dayKey
}

func RecapTitle(recap stats.Recap) string {
	return "📅 Daily Recap · " + recap.DayKey
}

// RecapFields renders the daily summary.
func RecapFields(recap stats.Recap) []Field {
	return []Field{
		{Name: "🟢 Online", Value: stats.FormatClock(recap.Online), Inline: true},
		{Name: "🔴 Offline", Value: stats.FormatClock(recap.Offline), Inline: true},
		{Name: "📈 Availability", Value: fmt.Sprintf("%.1f%%", recap.Availability()), Inline: true},
		{Name: "⬆️ Came online", Value: fmt.Sprintf("%d", recap.ToOnline), Inline: true},
		{Name: "⬇️ Went offline", Value: fmt.Sprintf("%d", recap.ToOffline), Inline: true},
		{Name: "🧮 Samples", Value: fmt.Sprintf("%d", recap.Samples), Inline: true},
		{Name: "👥 Mean players", Value: fmt.Sprintf("%.2f", recap.MeanLoad), Inline: true},
		{Name: "🏆 Peak hourly mean", Value: fmt.Sprintf("%.2f", recap.PeakHourlyAverage), Inline: true},
	}
}

func BoardTitle(board Board) string {
	if board.Status == nil || !board.Status.Online {
		return "🔴 Server Offline"
	}
	if board.Status.MOTD == "" {
		return "🟢 Minecraft Server"
	}
	return "🟢 " + board.Status.MOTD
}

func BoardDescription(board Board) string {
	if board.Status == nil || !board.Status.Online {
		return "The Minecraft server is currently offline or unreachable."
	}
	return ""
}

// BoardFields renders the live status of the server.
func BoardFields(board Board) []Field {
	if board.Status == nil || !board.Status.Online {
		return withUpdated([]Field{{Name: "Server IP", Value: board.Address, Inline: true}}, board)
	}

	s := board.Status
	version := s.Version
	if version == "" {
		version = "Unknown"
	}
	ping := board.Ping
	if ping == "" {
		ping = notAvail
	}
	modes := notAvail
	if len(s.GameModes) > 0 {
		modes = "🎲" + strings.Join(s.GameModes, "\n🎲")
	}

	fields := []Field{
		{Name: "🛡️ Version", Value: version, Inline: true},
		{Name: "👥 Players", Value: fmt.Sprintf("%d/%d", s.PlayersOnline, s.PlayersMax), Inline: true},
		{Name: "📶 Ping", Value: ping, Inline: true},
		{Name: "📡 Server IP", Value: board.Address},
		{Name: "🌍 Location", Value: board.Location.String(), Inline: true},
		{Name: "🖥️ ISP", Value: board.Location.Provider(), Inline: true},
		{Name: "🎮 Game Mode", Value: modes},
	}
	return withUpdated(fields, board)
}

func withUpdated(fields []Field, board Board) []Field {
	if board.UpdatedLocal == "" {
		return fields
	}
	return append(fields, Field{Name: "🕒 Last updated", Value: board.UpdatedLocal})
}

// Presence is the short player count line, e.g. "👥 1 Player".
func Presence(players int) string {
	if players == 1 {
		return "👥 1 Player"
	}
	return fmt.Sprintf("👥 %d Players", players)
}

func codeBlock(s string) string {
	return "```\n" + s + "\n```"
}
