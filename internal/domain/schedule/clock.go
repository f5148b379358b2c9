package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60

	dateLayout = "2006-01-02"
)

var ErrInvalidClock = errors.New("invalid clock time")

// MinutesOfDay converts a 24-hour "HH:MM" wall-clock string to minutes
// since midnight.
func MinutesOfDay(clock string) (int, error) {
	h, m, ok := splitClock(clock)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidClock, clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidClock, clock)
	}
	return h*60 + m, nil
}

// ClockOfMinutes is the inverse of MinutesOfDay. Values outside the day
// (below 00:00 or past 23:59) are rejected rather than wrapped: overflow
// policy is decided by callers, never hidden here.
func ClockOfMinutes(total int) (string, error) {
	if total < 0 || total >= minutesPerDay {
		return "", fmt.Errorf("%w: %d minutes is outside the day", ErrInvalidClock, total)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// Overlaps reports whether the half-open minute intervals [aStart, aEnd)
// and [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return (aStart <= bStart && bStart < aEnd) || (bStart <= aStart && aStart < bEnd)
}

// ParseDate parses a calendar day in "2006-01-02" form as midnight UTC.
func ParseDate(date string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return parsed, nil
}

// FormatDate renders a day back to "2006-01-02".
func FormatDate(day time.Time) string {
	return day.Format(dateLayout)
}

func unixTimeOfMinutes(unixMinutes int) time.Time {
	return time.Unix(int64(unixMinutes)*60, 0).UTC()
}

func splitClock(clock string) (h, m int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, 0, false
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}
