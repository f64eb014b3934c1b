package ctl

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// commandResult mirrors the body of every scheduler control endpoint.
type commandResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Pause stops live recomputation on the daemon.
func Pause(baseURL string, jsonOutput bool) error {
	return schedulerControl(baseURL, http.MethodPost, "/api/pause", nil, "PAUSED", jsonOutput)
}

// Resume restarts live recomputation. The daemon refuses while a fixed time
// is selected.
func Resume(baseURL string, jsonOutput bool) error {
	return schedulerControl(baseURL, http.MethodPost, "/api/resume", nil, "RESUMED", jsonOutput)
}

// SetTime pins recomputation to a fixed instant, given as RFC 3339.
func SetTime(baseURL, at string, jsonOutput bool) error {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(at))
	if err != nil {
		return fmt.Errorf("time must be RFC 3339, e.g. 2025-05-18T12:30:00Z: %w", err)
	}
	body := map[string]string{"time": t.UTC().Format(time.RFC3339)}
	return schedulerControl(baseURL, http.MethodPut, "/api/time", body, "FIXED", jsonOutput)
}

// ClearTime returns the daemon to wall-clock time and resumes live updates.
func ClearTime(baseURL string, jsonOutput bool) error {
	return schedulerControl(baseURL, http.MethodDelete, "/api/time", nil, "LIVE", jsonOutput)
}

func schedulerControl(baseURL, method, path string, body any, label string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var result commandResult
	if err := sendJSON(method, baseURL, path, body, &result); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("\n  %s  %s\n\n", colorize(green, label), result.Message)
	return nil
}
