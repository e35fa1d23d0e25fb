package history

import (
	"context"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

type service struct {
	repo *repository
}

type noopArchive struct{}

// Open returns the archive described by cfg, or a no-op archive when it is
// disabled.
func Open(cfg Config, log logger.Logger) (Archive, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("History archive disabled, using no-op archive")
		return noopArchive{}, nil
	}

	repo, err := newRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, snapshot *stats.DailyStats) error {
	errFactory := errors.New()

	if snapshot == nil || snapshot.DayKey == "" {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	return s.repo.record(ctx, snapshot)
}

func (s *service) Days(ctx context.Context, limit int) ([]Day, error) {
	if limit <= 0 {
		return nil, errors.New().WithData(errors.ErrInvalidArgument, struct{ Limit int }{limit})
	}
	return s.repo.days(ctx, limit)
}

func (s *service) Close() error {
	return s.repo.close()
}

func (noopArchive) Record(context.Context, *stats.DailyStats) error {
	return nil
}

func (noopArchive) Days(context.Context, int) ([]Day, error) {
	return nil, nil
}

func (noopArchive) Close() error {
	return nil
}
