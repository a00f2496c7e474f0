package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is the length of a song as a whole number of seconds.
//
// It is a plain value: copying it never loses information and the zero
// value means "unknown". Durations are parsed from the "M:SS" and "H:MM:SS"
// forms found in track listings, with "-" and "/" accepted as separators.
//
// Example:
//
//	d, _ := model.ParseDuration("3:07")
//	d.String()        // "03:07"
//	d.Add(60).String() // "04:07"
type Duration int

// NewDuration builds a Duration from hours, minutes and seconds.
func NewDuration(hours, minutes, seconds int) Duration {
	return Duration(hours*3600 + minutes*60 + seconds)
}

var durationRegex = regexp.MustCompile(`^(\d+)\s*[:/-]\s*(\d+)(?:\s*[:/-]\s*(\d+))?$`)

// ParseDuration reads a Duration from text.
//
// Accepted forms:
//   - "183" (plain seconds)
//   - "3:03", "3-03", "3/03" (minutes and seconds)
//   - "1:02:03" (hours, minutes and seconds)
//
// Seconds, and the minutes of the hour form, must be below 60.
// An empty string yields the zero Duration.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid duration %q: negative", s)
		}
		return Duration(n), nil
	}

	groups := durationRegex.FindStringSubmatch(s)
	if groups == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	parts := groups[1:]
	if parts[2] == "" {
		parts = []string{"0", parts[0], parts[1]}
	}

	var values [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		values[i] = n
	}
	if values[2] >= 60 {
		return 0, fmt.Errorf("invalid duration %q: seconds out of range", s)
	}
	if groups[3] != "" && values[1] >= 60 {
		return 0, fmt.Errorf("invalid duration %q: minutes out of range", s)
	}

	return NewDuration(values[0], values[1], values[2]), nil
}

// FromTime converts a time.Duration, truncating to whole seconds.
func FromTime(d time.Duration) Duration {
	return Duration(d / time.Second)
}

// Time converts the Duration to a time.Duration.
func (d Duration) Time() time.Duration {
	return time.Duration(d) * time.Second
}

// IsZero reports whether the duration is unknown.
func (d Duration) IsZero() bool {
	return d <= 0
}

// Add returns the sum of two durations.
func (d Duration) Add(other Duration) Duration {
	return d + other
}

// Hours returns the whole hours component.
func (d Duration) Hours() int {
	return int(d) / 3600
}

// Minutes returns the minutes component (0-59).
func (d Duration) Minutes() int {
	return int(d) % 3600 / 60
}

// Seconds returns the seconds component (0-59).
func (d Duration) Seconds() int {
	return int(d) % 60
}

// Total returns the duration in seconds.
func (d Duration) Total() int {
	return int(d)
}

// String renders "MM:SS" below one hour and "H:MM:SS" otherwise.
func (d Duration) String() string {
	if d.Hours() > 0 {
		return fmt.Sprintf("%d:%02d:%02d", d.Hours(), d.Minutes(), d.Seconds())
	}
	return fmt.Sprintf("%02d:%02d", d.Minutes(), d.Seconds())
}

// MarshalText renders the duration in its display form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses any form accepted by ParseDuration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
