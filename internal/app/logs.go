package app

import (
	"log"
	"strings"
	"sync"

	"github.com/large-farva/skywatch/internal/telemetry"
)

const logBufSize = 500

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// logEntry is one line kept for GET /api/logs.
type logEntry struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// logMirror is the writer behind the daemon logger. Each line still goes
// to the base logger, and lines at or above the configured level are kept
// in a ring buffer and pushed to WebSocket clients as log events.
type logMirror struct {
	base      *log.Logger
	minLevel  int
	broadcast func(any)

	mu  sync.Mutex
	buf []logEntry
}

func newLogMirror(base *log.Logger, level string, broadcast func(any)) *logMirror {
	return &logMirror{base: base, minLevel: levelRank[level], broadcast: broadcast}
}

func (m *logMirror) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	m.base.Print(line)

	component, msg := splitComponent(line)
	level := levelOf(msg)
	if levelRank[level] < m.minLevel {
		return len(p), nil
	}

	ev := telemetry.NewLogLine(component, level, msg)
	m.mu.Lock()
	m.buf = append(m.buf, logEntry{TS: ev.TS, Level: level, Component: component, Message: msg})
	if len(m.buf) > logBufSize {
		m.buf = m.buf[len(m.buf)-logBufSize:]
	}
	m.mu.Unlock()

	if m.broadcast != nil {
		m.broadcast(ev)
	}
	return len(p), nil
}

// entries returns the buffered lines, optionally filtered by level and
// trimmed to the newest limit entries.
func (m *logMirror) entries(level string, limit int) []logEntry {
	m.mu.Lock()
	out := make([]logEntry, 0, len(m.buf))
	for _, e := range m.buf {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	m.mu.Unlock()

	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}

// splitComponent separates the "track: " style prefix packages put on
// their log lines.
func splitComponent(line string) (string, string) {
	i := strings.Index(line, ": ")
	if i <= 0 || strings.ContainsAny(line[:i], " \t") {
		return "skywatchd", line
	}
	return line[:i], line[i+2:]
}

func levelOf(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.HasPrefix(lower, "warning"), strings.Contains(lower, "rejected"):
		return "warn"
	case strings.Contains(lower, "failed"), strings.Contains(lower, "error"):
		return "error"
	case strings.HasPrefix(lower, "debug"):
		return "debug"
	default:
		return "info"
	}
}
