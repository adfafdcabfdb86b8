package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a half-open time-of-day range [Start, End) measured from local midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// ParseWindow parses "HH:MM-HH:MM". "24:00" is accepted as an end bound.
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window %q: expected HH:MM-HH:MM", s)
	}
	start, err := parseTimeOfDay(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	end, err := parseTimeOfDay(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	if end <= start {
		return Window{}, fmt.Errorf("invalid window %q: end must be after start", s)
	}
	return Window{Start: start, End: end}, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// Contains reports whether the time of day falls inside the window widened by grace on both sides.
func (w Window) Contains(tod time.Duration, grace time.Duration) bool {
	return tod >= w.Start-grace && tod < w.End+grace
}

func (w Window) String() string {
	return formatTimeOfDay(w.Start) + "-" + formatTimeOfDay(w.End)
}

func formatTimeOfDay(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// On returns the absolute bounds of the window on the given work date.
func (w Window) On(date time.Time, loc *time.Location) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(w.Start), midnight.Add(w.End)
}
