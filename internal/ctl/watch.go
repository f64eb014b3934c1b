package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/large-farva/skywatch/internal/elements"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Filter []string // event types to show (empty = all)
	JSON   bool     // output raw JSON per event
}

// event is the union of every field skywatchd puts on the wire. Each event
// type only fills its own subset.
type event struct {
	Type      string `json:"type"`
	TS        string `json:"ts"`
	Component string `json:"component"`

	// heartbeat, state
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	From          string `json:"from"`
	To            string `json:"to"`
	Time          string `json:"time"`

	// position
	Satellite string  `json:"satellite"`
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Range     float64 `json:"range"`

	// elements
	Format   string            `json:"format"`
	Elements elements.Elements `json:"elements"`
	Line1    string            `json:"line1"`
	Line2    string            `json:"line2"`
	Warnings []string          `json:"warnings"`

	// log
	Level   string `json:"level"`
	Message string `json:"message"`
}

// wsURL turns the daemon's HTTP base URL into its /ws endpoint.
func wsURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Watch streams daemon events to the terminal until interrupted or the
// daemon goes away.
func Watch(baseURL string, opts WatchOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := wsURL(baseURL)
	if err != nil {
		return err
	}

	if !opts.JSON {
		fmt.Println()
		fmt.Printf("  %s %s\n", colorize(green, "connected"), colorize(dim, target))
		if len(opts.Filter) > 0 {
			fmt.Printf("  %s %s\n", colorize(dim, "filter:"), colorize(dim, strings.Join(opts.Filter, ", ")))
		}
		fmt.Println(divider(50))
		fmt.Println()
	}

	err = stream(ctx, target, opts.Filter, func(raw []byte) {
		if opts.JSON {
			fmt.Println(string(raw))
			return
		}
		renderEvent(raw)
	})
	if ctx.Err() != nil && !opts.JSON {
		fmt.Println()
		fmt.Println(colorize(dim, "  disconnecting..."))
	}
	return err
}

// stream dials target and passes every message whose type is in filter
// (or every message, when filter is empty) to handle. It returns nil when
// ctx ends or the daemon closes the connection normally.
func stream(ctx context.Context, target string, filter []string, handle func([]byte)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	want := make(map[string]bool, len(filter))
	for _, f := range filter {
		want[f] = true
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if len(want) > 0 {
			var head struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(msg, &head) == nil && !want[head.Type] {
				continue
			}
		}
		handle(msg)
	}
}

// renderEvent prints one event in a human-friendly format. Unknown event
// types are dumped as indented JSON so nothing is lost.
func renderEvent(raw []byte) {
	var ev event
	if err := json.Unmarshal(raw, &ev); err != nil {
		fmt.Printf("  %s\n", string(raw))
		return
	}
	ts := colorize(dim, formatLocalTime(ev.TS, "15:04:05"))

	switch ev.Type {
	case "heartbeat":
		fmt.Printf("  %s %s  %s  up %s\n",
			ts,
			colorize(dim, "heartbeat"),
			colorize(stateColor(ev.State), ev.State),
			colorize(dim, formatDuration(time.Duration(ev.UptimeSeconds)*time.Second)),
		)

	case "state":
		fmt.Printf("  %s %s  %s %s %s  %s\n",
			ts,
			colorize(bold, "STATE"),
			colorize(stateColor(ev.From), ev.From),
			colorize(dim, "->"),
			colorize(stateColor(ev.To), ev.To),
			colorize(dim, ev.Time),
		)

	case "position":
		fmt.Printf("  %s %s  %s  az %6.2f° %-3s  el %s  %.0f km\n",
			ts,
			colorize(cyan, "POS  "),
			ev.Satellite,
			ev.Azimuth, compass(ev.Azimuth),
			elevationText(ev.Elevation),
			ev.Range,
		)

	case "elements":
		fmt.Println()
		fmt.Printf("  %s %s\n", ts, header("ELEMENTS LOADED"))
		fmt.Printf("    %-14s %s\n", colorize(dim, "Satellite:"), colorize(bold, ev.Elements.DisplayName()))
		fmt.Printf("    %-14s %s, epoch %s\n", colorize(dim, "Format:"), ev.Format,
			ev.Elements.Epoch.UTC().Format(time.RFC3339))
		fmt.Printf("    %s\n    %s\n", ev.Line1, ev.Line2)
		for _, w := range ev.Warnings {
			fmt.Printf("    %s %s\n", colorize(yellow, "WARN"), w)
		}
		fmt.Println()

	case "log":
		src := ""
		if ev.Component != "" {
			src = colorize(dim, "["+ev.Component+"] ")
		}
		fmt.Printf("  %s %s  %s%s\n", ts, formatLogLevel(ev.Level), src, ev.Message)

	default:
		var generic map[string]any
		_ = json.Unmarshal(raw, &generic)
		pretty, err := json.MarshalIndent(generic, "  ", "  ")
		if err != nil {
			fmt.Printf("  %s\n", string(raw))
			return
		}
		fmt.Printf("  %s\n", string(pretty))
	}
}

// formatLogLevel returns a colored, fixed-width log level label.
func formatLogLevel(level string) string {
	switch level {
	case "debug":
		return colorize(dim, "DEBUG")
	case "info":
		return colorize(green, "INFO ")
	case "warn":
		return colorize(yellow, "WARN ")
	case "error":
		return colorize(red, "ERROR")
	default:
		return padRight(level, 5)
	}
}
