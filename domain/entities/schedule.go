package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleKind discriminates the two supported schedule descriptors
type ScheduleKind string

const (
	ScheduleKindFrequency ScheduleKind = "frequency"
	ScheduleKindCron      ScheduleKind = "cron"
)

// Frequency represents a recurring billing/run period
type Frequency string

const (
	FrequencyDaily       Frequency = "daily"
	FrequencyWeekly      Frequency = "weekly"
	FrequencyFortnightly Frequency = "fortnightly"
	FrequencyMonthly     Frequency = "monthly"
)

// IsValid checks whether the frequency is one of the known periods
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyFortnightly, FrequencyMonthly:
		return true
	}
	return false
}

// Next returns the start of the period following t for this frequency
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyFortnightly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}

// Schedule describes when an automation should run. Two kinds are supported:
// a frequency descriptor (daily/weekly/fortnightly/monthly with an anchor
// time) and a standard five-field cron expression. Stored as JSONB on the
// automation row.
type Schedule struct {
	Kind       ScheduleKind `json:"kind"`
	Frequency  Frequency    `json:"frequency,omitempty"`
	At         string       `json:"at,omitempty"`           // "HH:MM" in UTC, defaults to 00:00
	Weekday    *int         `json:"weekday,omitempty"`      // 0=Sunday..6, weekly/fortnightly only
	DayOfMonth *int         `json:"day_of_month,omitempty"` // 1..28, monthly only
	Expr       string       `json:"expr,omitempty"`         // cron kind only
}

// Validate checks the descriptor is well formed for its kind
func (s *Schedule) Validate() error {
	switch s.Kind {
	case ScheduleKindFrequency:
		if !s.Frequency.IsValid() {
			return fmt.Errorf("unknown frequency %q", s.Frequency)
		}
		if _, _, err := s.anchorTime(); err != nil {
			return err
		}
		if s.Weekday != nil && (*s.Weekday < 0 || *s.Weekday > 6) {
			return fmt.Errorf("weekday must be between 0 and 6, got %d", *s.Weekday)
		}
		if s.DayOfMonth != nil && (*s.DayOfMonth < 1 || *s.DayOfMonth > 28) {
			return fmt.Errorf("day_of_month must be between 1 and 28, got %d", *s.DayOfMonth)
		}
		return nil
	case ScheduleKindCron:
		if strings.TrimSpace(s.Expr) == "" {
			return fmt.Errorf("cron schedule requires expr")
		}
		if _, err := cron.ParseStandard(s.Expr); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", s.Expr, err)
		}
		return nil
	}
	return fmt.Errorf("unknown schedule kind %q", s.Kind)
}

// NextAfter returns the next occurrence strictly after t. All computations are
// in UTC regardless of t's location.
func (s *Schedule) NextAfter(t time.Time) (time.Time, error) {
	t = t.UTC()

	if s.Kind == ScheduleKindCron {
		spec, err := cron.ParseStandard(s.Expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", s.Expr, err)
		}
		return spec.Next(t), nil
	}

	hour, minute, err := s.anchorTime()
	if err != nil {
		return time.Time{}, err
	}

	switch s.Frequency {
	case FrequencyDaily:
		next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, time.UTC)
		if !next.After(t) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil

	case FrequencyWeekly, FrequencyFortnightly:
		weekday := int(t.Weekday())
		if s.Weekday != nil {
			weekday = *s.Weekday
		}
		next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, time.UTC)
		daysAhead := (weekday - int(next.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, daysAhead)
		if !next.After(t) {
			next = next.AddDate(0, 0, 7)
		}
		// A fortnight schedule skips the intervening weekly slot.
		if s.Frequency == FrequencyFortnightly {
			next = next.AddDate(0, 0, 7)
		}
		return next, nil

	case FrequencyMonthly:
		day := 1
		if s.DayOfMonth != nil {
			day = *s.DayOfMonth
		}
		next := time.Date(t.Year(), t.Month(), day, hour, minute, 0, 0, time.UTC)
		if !next.After(t) {
			next = time.Date(t.Year(), t.Month()+1, day, hour, minute, 0, 0, time.UTC)
		}
		return next, nil
	}

	return time.Time{}, fmt.Errorf("unknown frequency %q", s.Frequency)
}

// Describe renders a short human-readable form used in logs and API listings
func (s *Schedule) Describe() string {
	switch s.Kind {
	case ScheduleKindCron:
		return fmt.Sprintf("cron(%s)", s.Expr)
	case ScheduleKindFrequency:
		at := s.At
		if at == "" {
			at = "00:00"
		}
		return fmt.Sprintf("%s@%s", s.Frequency, at)
	}
	return string(s.Kind)
}

// anchorTime parses the At field, defaulting to midnight
func (s *Schedule) anchorTime() (hour, minute int, err error) {
	if s.At == "" {
		return 0, 0, nil
	}
	parts := strings.Split(s.At, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("anchor time must be HH:MM, got %q", s.At)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("anchor hour out of range in %q", s.At)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("anchor minute out of range in %q", s.At)
	}
	return hour, minute, nil
}
