package ctl

import (
	"fmt"
	"net/http"
	"strings"
)

// ObserverOptions sets the ground station. With GPSD set the daemon asks
// its gpsd for a fix and the coordinates are ignored.
type ObserverOptions struct {
	Name      string
	Latitude  float64
	Longitude float64
	HeightKm  float64
	GPSD      bool
	JSON      bool
}

// ShowObserver prints the daemon's current observer.
func ShowObserver(baseURL string, jsonOutput bool) error {
	var obs observerJSON
	if err := getJSON(strings.TrimRight(baseURL, "/"), "/api/observer", &obs); err != nil {
		return err
	}
	return printObserver(obs, jsonOutput)
}

// SetObserver replaces the observer, which triggers an immediate recompute
// when a satellite is tracked.
func SetObserver(baseURL string, opts ObserverOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var obs observerJSON
	if opts.GPSD {
		if err := postJSON(baseURL, "/api/observer/gpsd", nil, &obs); err != nil {
			return err
		}
		return printObserver(obs, opts.JSON)
	}

	if opts.Latitude < -90 || opts.Latitude > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", opts.Latitude)
	}
	if opts.Longitude < -180 || opts.Longitude > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", opts.Longitude)
	}
	body := observerJSON{
		Name:      opts.Name,
		Latitude:  opts.Latitude,
		Longitude: opts.Longitude,
		Height:    opts.HeightKm,
	}
	if err := sendJSON(http.MethodPut, baseURL, "/api/observer", body, &obs); err != nil {
		return err
	}
	return printObserver(obs, opts.JSON)
}

func printObserver(obs observerJSON, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(obs)
	}
	fmt.Println()
	fmt.Println(header("  OBSERVER"))
	fmt.Println(divider(38))
	row("Name", obs.Name)
	row("Latitude", fmt.Sprintf("%.5f°", obs.Latitude))
	row("Longitude", fmt.Sprintf("%.5f°", obs.Longitude))
	row("Height", fmt.Sprintf("%.3f km", obs.Height))
	fmt.Println()
	return nil
}
