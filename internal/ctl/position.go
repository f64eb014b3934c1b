package ctl

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Position prints the last published position, or with at set a one-off
// computation at that instant.
func Position(baseURL, at string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	path := "/api/position"
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("--at must be RFC 3339: %w", err)
		}
		path += "?" + url.Values{"at": {t.UTC().Format(time.RFC3339)}}.Encode()
	}

	var resp struct {
		Satellite string       `json:"satellite"`
		Catalog   int          `json:"catalog"`
		Observer  observerJSON `json:"observer"`
		Position  positionJSON `json:"position"`
	}
	if err := getJSON(baseURL, path, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", colorize(bold, resp.Satellite), colorize(dim, fmt.Sprintf("#%d from %s", resp.Catalog, resp.Observer)))
	fmt.Println()
	printPosition(resp.Position)
	fmt.Println()
	return nil
}
