// Package stats accumulates one day of availability and load statistics from
// point-in-time status samples and persists it between restarts.
package stats

import (
	"maps"
	"time"

	"codeberg.org/mutker/mcwatch/internal/clock"
	"codeberg.org/mutker/mcwatch/internal/errors"
)

const HoursPerDay = 24

// Sample is one observation of the monitored server.
type Sample struct {
	Online bool
	Load   int
}

// Validate rejects samples the aggregator must never see.
func (s Sample) Validate() error {
	if s.Load < 0 {
		return errors.New().WithData(errors.ErrInvalidSample, struct {
			Field string
			Value int
		}{
			Field: "load",
			Value: s.Load,
		})
	}
	return nil
}

// HourBucket accumulates the load samples of one hour-of-day.
type HourBucket struct {
	SampleCount int64 `json:"sampleCount"`
	PlayerSum   int64 `json:"playerSum"`
}

// Average returns the mean load of the bucket.
func (b HourBucket) Average() float64 {
	if b.SampleCount == 0 {
		return 0
	}
	return float64(b.PlayerSum) / float64(b.SampleCount)
}

type TransitionCounts struct {
	ToOnline  int `json:"toOnline"`
	ToOffline int `json:"toOffline"`
}

// DailyStats is the accumulated record of a single local calendar day.
type DailyStats struct {
	DayKey            string             `json:"dayKey"`
	HourlyBuckets     map[int]HourBucket `json:"hourlyBuckets"`
	PlayerSumTotal    int64              `json:"playerSumTotal"`
	PlayerSampleTotal int64              `json:"playerSampleTotal"`
	OnlineSeconds     int64              `json:"onlineSeconds"`
	OfflineSeconds    int64              `json:"offlineSeconds"`
	TransitionCounts  TransitionCounts   `json:"transitionCounts"`

	// Unset (nil) until the first sample of the day.
	LastKnownState      *bool      `json:"lastKnownState"`
	LastSampleTimestamp *time.Time `json:"lastSampleTimestamp"`

	// Unset until the gate fires for the day.
	LastPublishedHour *int `json:"lastPublishedHour"`

	// Opaque sink handle of the live hourly artifact; survives rollover.
	CarryoverPublicationHandle string `json:"carryoverPublicationHandle,omitempty"`
}

// NewDailyStats returns a zero-valued record for dayKey.
func NewDailyStats(dayKey string) *DailyStats {
	return &DailyStats{
		DayKey:        dayKey,
		HourlyBuckets: make(map[int]HourBucket),
	}
}

// Clone returns a deep copy sharing no memory with s.
func (s *DailyStats) Clone() *DailyStats {
	c := *s
	c.HourlyBuckets = maps.Clone(s.HourlyBuckets)
	if c.HourlyBuckets == nil {
		c.HourlyBuckets = make(map[int]HourBucket)
	}
	if s.LastKnownState != nil {
		v := *s.LastKnownState
		c.LastKnownState = &v
	}
	if s.LastSampleTimestamp != nil {
		v := *s.LastSampleTimestamp
		c.LastSampleTimestamp = &v
	}
	if s.LastPublishedHour != nil {
		v := *s.LastPublishedHour
		c.LastPublishedHour = &v
	}
	return &c
}

// MeanLoad returns the daily mean load over every recorded sample.
func (s *DailyStats) MeanLoad() float64 {
	if s.PlayerSampleTotal == 0 {
		return 0
	}
	return float64(s.PlayerSumTotal) / float64(s.PlayerSampleTotal)
}

// PeakHourlyAverage returns the highest hourly mean, or 0 with no samples.
func (s *DailyStats) PeakHourlyAverage() float64 {
	var peak float64
	for _, b := range s.HourlyBuckets {
		if b.SampleCount > 0 {
			peak = max(peak, b.Average())
		}
	}
	return peak
}

// validate reports whether a decoded record is internally consistent.
func (s *DailyStats) validate() error {
	if _, err := time.Parse(clock.DayKeyLayout, s.DayKey); err != nil {
		return err
	}
	if s.OnlineSeconds < 0 || s.OfflineSeconds < 0 || s.PlayerSumTotal < 0 || s.PlayerSampleTotal < 0 {
		return errors.New().WithMessage(errors.ErrInvalidArgument, "negative counter")
	}
	if s.TransitionCounts.ToOnline < 0 || s.TransitionCounts.ToOffline < 0 {
		return errors.New().WithMessage(errors.ErrInvalidArgument, "negative transition count")
	}
	for hour, b := range s.HourlyBuckets {
		if hour < 0 || hour >= HoursPerDay || b.SampleCount <= 0 || b.PlayerSum < 0 {
			return errors.New().WithData(errors.ErrInvalidArgument, struct {
				Hour   int
				Bucket HourBucket
			}{hour, b})
		}
	}
	if h := s.LastPublishedHour; h != nil && (*h < 0 || *h >= HoursPerDay) {
		return errors.New().WithData(errors.ErrInvalidArgument, struct{ LastPublishedHour int }{*h})
	}
	return nil
}
