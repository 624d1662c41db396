package event

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/logger"
)

// ErrUnparseableTime is returned by ParseClock for input that is not a 12-hour clock time.
var ErrUnparseableTime = errors.New("unparseable time")

var (
	bareHourPattern = regexp.MustCompile(`^(\d{1,2})(am|pm)$`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(am|pm)$`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// ParseClock converts a loose 12-hour time string ("6pm", "6:30 P.M.") to minutes after midnight.
func ParseClock(raw string) (int, error) {
	s := spacePattern.ReplaceAllString(raw, "")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "")

	if m := bareHourPattern.FindStringSubmatch(s); m != nil {
		s = m[1] + ":00" + m[2]
	}

	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, raw)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, raw)
	}

	switch {
	case m[3] == "am" && hour == 12:
		hour = 0
	case m[3] == "pm" && hour != 12:
		hour += 12
	}

	return hour*60 + minute, nil
}

// NormalizeClock is ParseClock with the failure recovered: unparseable input is logged
// and reported as 0, which callers must read as "unknown or midnight".
func NormalizeClock(raw string) int {
	minutes, err := ParseClock(raw)
	if err != nil {
		logger.IncrCounter("clock.parse_failures")
		logger.Warn("Could not parse time, using midnight", logger.Fields{"raw": raw})
		return 0
	}
	return minutes
}

// FormatClock renders minutes after midnight as "6:00pm".
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	hour := minutes / 60
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, minutes%60, suffix)
}
