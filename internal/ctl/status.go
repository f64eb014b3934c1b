package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DemoEnabled   bool   `json:"demo_enabled"`
	Scheduler     struct {
		State string `json:"state"`
		Time  struct {
			Fixed bool   `json:"fixed"`
			At    string `json:"at"`
		} `json:"time"`
		Tracking  bool   `json:"tracking"`
		Interval  string `json:"interval"`
		Ticks     uint64 `json:"ticks"`
		Failures  uint64 `json:"failures"`
		LastError string `json:"last_error"`
	} `json:"scheduler"`
	Observer  observerJSON  `json:"observer"`
	Satellite *satelliteRef `json:"satellite"`
	Position  *positionJSON `json:"position"`
}

type satelliteRef struct {
	Name    string `json:"name"`
	Catalog int    `json:"catalog"`
	Format  string `json:"format"`
	Epoch   string `json:"epoch"`
}

type observerJSON struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    float64 `json:"height"`
}

func (o observerJSON) String() string {
	s := fmt.Sprintf("%.4f, %.4f, %.3f km", o.Latitude, o.Longitude, o.Height)
	if o.Name != "" {
		s = o.Name + " (" + s + ")"
	}
	return s
}

type positionJSON struct {
	Time           string  `json:"time"`
	Azimuth        float64 `json:"azimuth"`
	Elevation      float64 `json:"elevation"`
	Range          float64 `json:"range"`
	RightAscension float64 `json:"rightAscension"`
	Declination    float64 `json:"declination"`
	Geodetic       struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Height    float64 `json:"height"`
	} `json:"positionGeodetic"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}

	timeSel := "live"
	if s.Scheduler.Time.Fixed {
		timeSel = "fixed " + s.Scheduler.Time.At
	}

	fmt.Println()
	fmt.Println(header("  SKYWATCH STATUS"))
	fmt.Println(divider(44))
	row("Daemon", s.Name)
	row("State", colorize(stateColor(s.State), s.State))
	row("Uptime", formatDuration(time.Duration(s.UptimeSeconds)*time.Second))
	row("Observer", s.Observer.String())
	if s.DemoEnabled {
		row("Demo", "on")
	}
	row("Host", baseURL)

	fmt.Println()
	fmt.Println(header("  SCHEDULER"))
	fmt.Println(divider(44))
	row("Loop", fmt.Sprintf("%s, every %s", s.Scheduler.State, s.Scheduler.Interval))
	row("Time", timeSel)
	row("Ticks", fmt.Sprintf("%d (%d failed)", s.Scheduler.Ticks, s.Scheduler.Failures))
	if s.Scheduler.LastError != "" {
		row("Last error", colorize(red, s.Scheduler.LastError))
	}

	if s.Satellite != nil {
		fmt.Println()
		fmt.Println(header("  SATELLITE"))
		fmt.Println(divider(44))
		row("Name", colorize(bold, s.Satellite.Name))
		row("Catalog", fmt.Sprintf("%d", s.Satellite.Catalog))
		row("Format", s.Satellite.Format)
		row("Epoch", s.Satellite.Epoch)
	}
	if s.Position != nil {
		fmt.Println()
		printPosition(*s.Position)
	}
	fmt.Println()

	return nil
}

// printPosition renders one look-angle result as a labelled block.
func printPosition(p positionJSON) {
	fmt.Println(header("  POSITION"))
	fmt.Println(divider(44))
	row("Time", p.Time)
	row("Azimuth", fmt.Sprintf("%.2f° %s", p.Azimuth, compass(p.Azimuth)))
	row("Elevation", elevationText(p.Elevation))
	row("Range", fmt.Sprintf("%.1f km", p.Range))
	row("RA / Dec", fmt.Sprintf("%.3f° / %.3f°", p.RightAscension, p.Declination))
	row("Subpoint", fmt.Sprintf("%.4f, %.4f, %.1f km", p.Geodetic.Latitude, p.Geodetic.Longitude, p.Geodetic.Height))
}

func elevationText(el float64) string {
	s := fmt.Sprintf("%.2f°", el)
	if el >= 0 {
		return colorize(green, s+" visible")
	}
	return colorize(dim, s+" below horizon")
}
