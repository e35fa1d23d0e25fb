package stats

// HourlyDataset holds the mean load of each hour-of-day; nil marks an hour
// without samples.
type HourlyDataset [HoursPerDay]*float64

// Present returns the number of hours with data.
func (d HourlyDataset) Present() int {
	n := 0
	for _, v := range d {
		if v != nil {
			n++
		}
	}
	return n
}

// ShouldPublish reports whether the hourly artifact has not yet been
// published for hourKey today. Only MarkPublished advances the gate.
func (a *Aggregator) ShouldPublish(hourKey int) bool {
	return a.stats.shouldPublish(hourKey)
}

// MarkPublished records hourKey as published and persists the record.
func (a *Aggregator) MarkPublished(hourKey int) {
	a.stats.markPublished(hourKey)
	a.persist()
}

// SetPublicationHandle stores the sink handle of the live hourly artifact.
// It is persisted by the following MarkPublished.
func (a *Aggregator) SetPublicationHandle(handle string) {
	a.stats.CarryoverPublicationHandle = handle
}

// HourlyDataset derives per-hour means from the live record.
func (a *Aggregator) HourlyDataset() HourlyDataset {
	return a.stats.HourlyDataset()
}

func (s *DailyStats) shouldPublish(hourKey int) bool {
	return s.LastPublishedHour == nil || *s.LastPublishedHour != hourKey
}

func (s *DailyStats) markPublished(hourKey int) {
	h := hourKey
	s.LastPublishedHour = &h
}

// HourlyDataset derives per-hour means from the record's buckets.
func (s *DailyStats) HourlyDataset() HourlyDataset {
	var d HourlyDataset
	for hour, b := range s.HourlyBuckets {
		if hour < 0 || hour >= HoursPerDay || b.SampleCount == 0 {
			continue
		}
		avg := b.Average()
		d[hour] = &avg
	}
	return d
}
