package attendance

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCutoffHour   = 18
	DefaultCutoffMinute = 0
)

// Cutoff is the time of day after which open attendance records get reconciled.
type Cutoff struct {
	Hour   int
	Minute int
}

func DefaultCutoff() Cutoff {
	return Cutoff{Hour: DefaultCutoffHour, Minute: DefaultCutoffMinute}
}

// On returns the cutoff instant on the calendar day of date in loc.
func (c Cutoff) On(date time.Time, loc *time.Location) time.Time {
	day := DateOnly(date, loc)
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ResolveCutoff turns raw hour/minute settings into a usable Cutoff. Empty values take the
// defaults; invalid values are logged and replaced independently, so it never fails.
func ResolveCutoff(hour, minute string) Cutoff {
	cutoff := DefaultCutoff()

	if h, ok := parseInRange(hour, DefaultCutoffHour, 0, 23); ok {
		cutoff.Hour = h
	} else {
		slog.Warn("Invalid attendance cutoff hour, using default",
			"value", hour,
			"default", DefaultCutoffHour)
	}

	if m, ok := parseInRange(minute, DefaultCutoffMinute, 0, 59); ok {
		cutoff.Minute = m
	} else {
		slog.Warn("Invalid attendance cutoff minute, using default",
			"value", minute,
			"default", DefaultCutoffMinute,
			"hour", cutoff.Hour)
	}

	return cutoff
}

func parseInRange(raw string, fallback, min, max int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return fallback, false
	}
	return v, true
}
