package stats_test

import (
	"bytes"
	"time"

	"codeberg.org/mutker/mcwatch/internal/logger"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

type memoryStore struct {
	initial *stats.DailyStats
	saved   []*stats.DailyStats
	err     error
}

func (m *memoryStore) Load(dayKey string) *stats.DailyStats {
	if m.initial != nil {
		return m.initial.Clone()
	}
	return stats.NewDailyStats(dayKey)
}

func (m *memoryStore) Save(s *stats.DailyStats) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s.Clone())
	return nil
}

func (m *memoryStore) last() *stats.DailyStats {
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

var day1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newAggregator(store *memoryStore) (*stats.Aggregator, *bytes.Buffer) {
	var buf bytes.Buffer
	return stats.NewAggregator(store, "2024-01-01", logger.New(&buf)), &buf
}
