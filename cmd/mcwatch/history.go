package main

import (
	"context"
	"fmt"

	"codeberg.org/mutker/mcwatch/internal/history"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 7

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print archived days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History archive is disabled")
				return nil
			}

			archive, err := history.Open(history.Config{
				DBPath:  cfg.History.DB,
				Enabled: true,
			}, logger.Default())
			if err != nil {
				return err
			}
			defer archive.Close()

			days, err := archive.Days(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(out, "No archived days")
				return nil
			}

			fmt.Fprintf(out, "%-10s  %8s  %8s  %6s  %5s  %7s  %7s\n",
				"DAY", "ONLINE", "OFFLINE", "AVAIL", "DOWNS", "MEAN", "PEAK")
			for _, d := range days {
				r := d.Recap()
				fmt.Fprintf(out, "%-10s  %8s  %8s  %5.1f%%  %5d  %7.2f  %7.2f\n",
					r.DayKey,
					stats.FormatClock(r.Online),
					stats.FormatClock(r.Offline),
					r.Availability(),
					r.ToOffline,
					r.MeanLoad,
					r.PeakHourlyAverage,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of days to show")

	return cmd
}
