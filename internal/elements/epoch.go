package elements

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// epochLayouts are the OMM EPOCH spellings seen in the wild: CelesTrak
// omits the zone, Space-Track uses a space separator, and CCSDS allows
// day-of-year.
var epochLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-002T15:04:05.999999999",
	"2006-01-02",
}

// ParseEpoch parses an OMM EPOCH. Timestamps without a zone are UTC.
func ParseEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("epoch %q is not a calendar timestamp", s)
}

// parseTLEEpoch converts a TLE epoch in YYDDD.DDDDDDDD form to time.Time.
// Years 57-99 are 1900s, 00-56 are 2000s.
func parseTLEEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch %q too short", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	day, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch day %q: %w", s[2:], err)
	}
	if day < 1 || day >= 367 {
		return time.Time{}, fmt.Errorf("epoch day %v out of range", day)
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((day - 1) * float64(24*time.Hour))), nil
}
