// Package ctl implements the client-side commands for skyctl.
// It talks to a running skywatchd over HTTP and WebSocket and renders the results to the terminal.
package ctl

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI escape codes for terminal formatting.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
	white  = "\033[37m"
)

const rule = "─"

// colorEnabled reports whether output should carry ANSI codes: stdout must
// be a terminal and NO_COLOR unset. Decided once per process.
var colorEnabled = sync.OnceValue(func() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
})

var stateColors = map[string]string{
	"IDLE":       green,
	"TRACKING":   blue,
	"PAUSED":     yellow,
	"FIXED_TIME": cyan,
	"BOOTING":    dim,
}

// stateColor returns the ANSI color for a daemon state.
func stateColor(state string) string {
	if !colorEnabled() {
		return ""
	}
	if c, ok := stateColors[state]; ok {
		return c
	}
	return white
}

// colorize wraps text with an ANSI color sequence.
// Returns the text unchanged when color output is disabled.
func colorize(color, text string) string {
	if !colorEnabled() {
		return text
	}
	return color + text + reset
}

// header returns a bold section header, or plain text when color is off.
func header(title string) string {
	if colorEnabled() {
		return bold + title + reset
	}
	return title
}

// divider is a dimmed horizontal rule indented like the section bodies.
func divider(width int) string {
	return colorize(dim, "  "+strings.Repeat(rule, width))
}

// row prints one "Label:  value" line of a section body.
func row(label, value string) {
	fmt.Printf("  %-12s %s\n", colorize(dim, label+":"), value)
}

// padRight pads s with spaces to reach the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration renders a time.Duration as a compact human string like
// "2h 14m 8s" or "45s".
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// compass names the 16-point direction of an azimuth in degrees.
func compass(az float64) string {
	points := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	i := int((az+11.25)/22.5) % 16
	if i < 0 {
		i += 16
	}
	return points[i]
}

// formatLocalTime parses an RFC 3339 timestamp and renders it in local time.
func formatLocalTime(s, layout string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.Local().Format(layout)
}
