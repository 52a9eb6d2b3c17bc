// Package shift holds the time-of-day helpers behind ambulance duty windows.
//
// Times are minutes since midnight. A window {Start, End} covers [Start, End)
// when Start < End and wraps past midnight when Start > End. The zero window
// means no shift has been assigned.
package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// MinutesPerDay is the exclusive upper bound of a minute-of-day value.
const MinutesPerDay = 24 * 60

// Window is a duty window in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Assigned reports whether the window is anything but the zero window.
func (w Window) Assigned() bool {
	return w.Start != 0 || w.End != 0
}

// Overnight reports whether the window wraps past midnight.
func (w Window) Overnight() bool {
	return w.Start > w.End
}

// Validate accepts windows with 0 <= Start < End <= 1440.
func (w Window) Validate() error {
	if w.Start < 0 || w.End <= w.Start || w.End > MinutesPerDay {
		return fmt.Errorf("%w: [%d,%d) must satisfy 0 <= start < end <= %d",
			types.ErrInvalidWindow, w.Start, w.End, MinutesPerDay)
	}
	return nil
}

// Contains reports whether now falls inside the window.
func (w Window) Contains(now int) bool {
	switch {
	case !w.Assigned():
		return false
	case w.Start < w.End:
		return now >= w.Start && now < w.End
	case w.Overnight():
		return now >= w.Start || now < w.End
	default:
		return false
	}
}

func (w Window) String() string {
	if !w.Assigned() {
		return "Not assigned"
	}
	return FormatClock(w.Start) + "-" + FormatClock(w.End)
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", types.ErrInvalidInput, s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: hour in %q", types.ErrInvalidInput, s)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: minute in %q", types.ErrInvalidInput, s)
	}
	if hours == 24 && minutes == 0 {
		return MinutesPerDay, nil
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: time %q out of range", types.ErrInvalidInput, s)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as zero-padded HH:MM.
func FormatClock(minutes int) string {
	if minutes < 0 || minutes > MinutesPerDay {
		return "INVALID"
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinuteOfDay returns the wall-clock minute of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
