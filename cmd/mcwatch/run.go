package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/mcwatch/internal/clock"
	"codeberg.org/mutker/mcwatch/internal/config"
	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/history"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/pid"
	"codeberg.org/mutker/mcwatch/internal/report"
	"codeberg.org/mutker/mcwatch/internal/stats"
	"codeberg.org/mutker/mcwatch/internal/status"
	"codeberg.org/mutker/mcwatch/internal/tracker"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tracker in the foreground",
		Args:  cobra.NoArgs,
		RunE:  runTracker,
	}
}

type daemon struct {
	server   string
	interval time.Duration
	clock    clock.Clock
	calendar *clock.Calendar
	client   *status.Client
	tracker  *tracker.Tracker
	board    report.StatusBoard
	log      logger.Logger

	boardHandle string
}

func runTracker(cmd *cobra.Command, _ []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	log := logger.Default()

	calendar, err := clock.NewCalendar(cfg.Timezone)
	if err != nil {
		return err
	}

	if err := pid.Write(cfg.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Error().Err(err).Msg("Failed to remove pid file")
		}
	}()

	archive, err := history.Open(history.Config{
		DBPath:  cfg.History.DB,
		Enabled: cfg.History.Enabled,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close history archive")
		}
	}()

	publisher, err := report.New(reportConfig(cfg), log)
	if err != nil {
		return err
	}

	sys := clock.System{}
	store := stats.NewFileStore(cfg.StateFile, log)
	agg := stats.NewAggregator(store, calendar.DayKey(sys.Now()), log)

	d := &daemon{
		server:   cfg.Server,
		interval: cfg.Interval,
		clock:    sys,
		calendar: calendar,
		client:   status.NewClient(status.Options{Timeout: cfg.HTTPTimeout}, log),
		tracker:  tracker.New(agg, calendar, publisher, archive, log),
		board:    publisher,
		log:      log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	logger.Info().
		Str("server", cfg.Server).
		Dur("interval", cfg.Interval).
		Str("timezone", calendar.Location().String()).
		Str("state_file", store.Path()).
		Msg("Tracking server")

	if err := d.loop(ctx); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).Msg("Error in main loop")
		return err
	}

	logger.Info().Msg("Exiting...")
	return nil
}

func reportConfig(cfg *config.Config) report.Config {
	return report.Config{
		DiscordWebhook: cfg.Report.DiscordWebhook,
		Footer:         cfg.Report.Footer,
		FooterIcon:     cfg.Report.FooterIcon,
		Timeout:        cfg.HTTPTimeout,
	}
}

// loop ticks once immediately and then on every interval. Ticks run on this
// goroutine, so a slow tick delays the next one instead of overlapping it.
func (d *daemon) loop(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *daemon) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	st, err := d.client.Check(tickCtx, d.server)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.log.WarnWithCode(coded(errors.ErrStatusCheck, err)).
			Str("server", d.server).
			Msg("Skipping tick")
		return
	}

	now := d.clock.Now()
	res, err := d.tracker.Tick(tickCtx, st.Sample(), now)
	if err != nil {
		d.log.WarnWithCode(coded(errors.ErrInvalidSample, err)).
			Str("server", d.server).
			Msg("Skipping tick")
		return
	}

	d.log.Debug().
		Str("day", res.DayKey).
		Int("hour", res.Hour).
		Bool("online", st.Online).
		Int("players", st.PlayersOnline).
		Bool("rolled_over", res.RolledOver).
		Bool("published", res.Published).
		Msg("Tick")

	d.publishBoard(tickCtx, st, now)
}

func (d *daemon) publishBoard(ctx context.Context, st *status.Status, now time.Time) {
	board := report.Board{
		Address:      d.server,
		Status:       st,
		UpdatedAt:    now,
		UpdatedLocal: d.calendar.TimeString(now),
	}

	if st.Online {
		board.IconURL = d.client.IconURL(d.server)
		location, err := d.client.Locate(ctx, d.server)
		if err != nil {
			d.log.Debug().Err(err).Msg("Location lookup failed")
		}
		board.Location = location
	}

	handle, err := d.board.PublishStatus(ctx, board, d.boardHandle)
	if err != nil {
		d.log.WarnWithCode(coded(errors.ErrPublishFailed, err)).Msg("Failed to update status board")
		return
	}
	d.boardHandle = handle
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func coded(code errors.ErrorCode, err error) errors.Error {
	var c errors.Error
	if errors.As(err, &c) {
		return c
	}
	return errors.New().Wrap(code, err)
}
