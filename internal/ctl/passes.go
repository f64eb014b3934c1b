package ctl

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PassesOptions controls the passes command output.
type PassesOptions struct {
	Count int
	From  string
	JSON  bool
}

type passJSON struct {
	AOS                 string        `json:"aos"`
	LOS                 string        `json:"los"`
	MaxElevation        float64       `json:"maxElevation"`
	MaxElevationTime    string        `json:"maxElevationTime"`
	MaxElevationAzimuth float64       `json:"maxElevationAzimuth"`
	AOSAzimuth          float64       `json:"aosAzimuth"`
	LOSAzimuth          float64       `json:"losAzimuth"`
	Duration            time.Duration `json:"duration"`
}

// Passes lists upcoming passes of the tracked satellite over the observer.
func Passes(baseURL string, opts PassesOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	path := "/api/passes"
	if opts.From != "" {
		t, err := time.Parse(time.RFC3339, opts.From)
		if err != nil {
			return fmt.Errorf("--from must be RFC 3339: %w", err)
		}
		path += "?" + url.Values{"from": {t.UTC().Format(time.RFC3339)}}.Encode()
	}

	var resp struct {
		Satellite string       `json:"satellite"`
		Observer  observerJSON `json:"observer"`
		From      string       `json:"from"`
		Hours     int          `json:"hours"`
		Passes    []passJSON   `json:"passes"`
	}

	// Pass search propagates across the whole lookahead window, so allow
	// longer than the default client.
	passClient := &http.Client{Timeout: 60 * time.Second}
	if err := send(passClient, http.MethodGet, baseURL, path, "", nil, &resp); err != nil {
		return err
	}
	if opts.Count > 0 && len(resp.Passes) > opts.Count {
		resp.Passes = resp.Passes[:opts.Count]
	}

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  UPCOMING PASSES  " + resp.Satellite))
	fmt.Printf("  %s %s, next %dh\n", colorize(dim, "Observer:"), resp.Observer, resp.Hours)
	fmt.Println(divider(76))

	if len(resp.Passes) == 0 {
		fmt.Println(colorize(dim, "  No passes above the minimum elevation."))
		fmt.Println()
		return nil
	}

	fmt.Printf("  %-4s %-22s %-22s %6s  %-9s %s\n",
		colorize(dim, "#"),
		colorize(dim, "AOS"),
		colorize(dim, "LOS"),
		colorize(dim, "Elev"),
		colorize(dim, "Az"),
		colorize(dim, "Duration"),
	)
	fmt.Println(divider(76))

	for i, p := range resp.Passes {
		az := fmt.Sprintf("%s>%s", compass(p.AOSAzimuth), compass(p.LOSAzimuth))
		fmt.Printf("  %-4d %-22s %-22s %5.1f°  %-9s %s\n",
			i+1,
			formatLocalTime(p.AOS, "2006-01-02 15:04 MST"),
			formatLocalTime(p.LOS, "2006-01-02 15:04 MST"),
			p.MaxElevation,
			az,
			formatDuration(p.Duration),
		)
	}
	fmt.Println()

	return nil
}
