package ctl

import (
	"fmt"
	"net/http"
	"strings"
)

// Health checks liveness via GET /healthz and, when the daemon answers,
// reports its operating state. A non-200 answer is an error so scripts can
// rely on the exit code.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")
	result := map[string]any{"url": baseURL, "healthy": false}

	code, _, err := getRaw(baseURL, "/healthz")
	if err == nil && code == http.StatusOK {
		result["healthy"] = true
		var st struct {
			State string `json:"state"`
		}
		if getJSON(baseURL, "/api/status", &st) == nil {
			result["state"] = st.State
		}
	} else if err == nil {
		err = fmt.Errorf("skywatchd returned HTTP %d", code)
	}
	if err != nil {
		result["error"] = err.Error()
	}

	if jsonOutput {
		if perr := printJSON(result); perr != nil {
			return perr
		}
		return err
	}

	fmt.Println()
	if err != nil {
		fmt.Printf("  %s  %s\n\n", colorize(red, "UNHEALTHY"), err)
		return err
	}
	state, _ := result["state"].(string)
	fmt.Printf("  %s  skywatchd at %s is %s\n\n",
		colorize(green, "HEALTHY"), colorize(dim, baseURL), colorize(stateColor(state), strings.ToLower(state)))
	return nil
}
