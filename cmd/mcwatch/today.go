package main

import (
	"fmt"
	"io"

	"codeberg.org/mutker/mcwatch/internal/clock"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/report"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/spf13/cobra"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print the recap of the day being tracked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			calendar, err := clock.NewCalendar(cfg.Timezone)
			if err != nil {
				return err
			}

			store := stats.NewFileStore(cfg.StateFile, logger.Default())
			s := store.Peek(calendar.DayKey(clock.System{}.Now()))

			printRecap(cmd.OutOrStdout(), stats.NewRecap(s))
			return nil
		},
	}
}

func printRecap(w io.Writer, recap stats.Recap) {
	fmt.Fprintln(w, report.RecapTitle(recap))
	fmt.Fprintln(w)
	for _, f := range report.RecapFields(recap) {
		fmt.Fprintf(w, "%-22s %s\n", f.Name, f.Value)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.HourlyChart(recap.Hourly))
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.HourTable(recap.Hourly))
}
