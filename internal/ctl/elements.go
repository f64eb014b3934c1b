package ctl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/large-farva/skywatch/internal/elements"
	"github.com/large-farva/skywatch/internal/predict"
)

var stdin io.Reader = os.Stdin

// elementsResponse mirrors POST and GET /api/elements.
type elementsResponse struct {
	OK       bool              `json:"ok"`
	Format   string            `json:"format"`
	Elements elements.Elements `json:"elements"`
	Warnings []string          `json:"warnings"`
	Line1    string            `json:"line1"`
	Line2    string            `json:"line2"`
}

// readDocument returns the element text in path, or stdin when path is "-".
func readDocument(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", errors.New("element document is empty")
	}
	return string(b), nil
}

// Submit sends an element document to the daemon, which starts tracking it
// when it is accepted.
func Submit(baseURL, path string, jsonOutput bool) error {
	raw, err := readDocument(path)
	if err != nil {
		return err
	}

	var resp elementsResponse
	if err := postText(strings.TrimRight(baseURL, "/"), "/api/elements", raw, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Printf("  %s  now tracking %s\n", colorize(green, "ACCEPTED"), colorize(bold, resp.Elements.DisplayName()))
	printElements(resp)
	return nil
}

// ShowElements prints the element set the daemon is tracking.
func ShowElements(baseURL string, jsonOutput bool) error {
	var resp elementsResponse
	if err := getJSON(strings.TrimRight(baseURL, "/"), "/api/elements", &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	printElements(resp)
	return nil
}

// Decode runs the ingestion pipeline locally without a daemon: detection,
// decoding, validation, and the canonical build, then renders the result
// as a TLE.
func Decode(path string, jsonOutput bool) error {
	raw, err := readDocument(path)
	if err != nil {
		return err
	}

	in, err := elements.Ingest(raw)
	if err != nil {
		return decodeFailure(err)
	}
	prop, err := predict.NewPropagator(in.Elements)
	if err != nil {
		return decodeFailure(err)
	}
	l1, l2 := prop.Lines()

	resp := elementsResponse{
		OK:       true,
		Format:   in.Format.String(),
		Elements: in.Elements,
		Warnings: in.Warnings,
		Line1:    l1,
		Line2:    l2,
	}
	if jsonOutput {
		return printJSON(resp)
	}
	printElements(resp)
	return nil
}

func decodeFailure(err error) error {
	var pe *elements.Error
	if !errors.As(err, &pe) || len(pe.Reasons) == 0 {
		return err
	}
	var b strings.Builder
	b.WriteString(pe.Kind.String())
	if pe.Message != "" {
		b.WriteString(": " + pe.Message)
	}
	for _, r := range pe.Reasons {
		b.WriteString("\n  - " + r)
	}
	return errors.New(b.String())
}

func printElements(r elementsResponse) {
	el := r.Elements

	fmt.Println()
	fmt.Println(header("  ELEMENT SET"))
	fmt.Println(divider(69))
	fmt.Printf("  %-14s %s\n", colorize(dim, "Name:"), colorize(bold, el.DisplayName()))
	fmt.Printf("  %-14s %d %s\n", colorize(dim, "Catalog:"), el.CatalogNumber, el.Classification)
	if el.ObjectID != "" {
		fmt.Printf("  %-14s %s\n", colorize(dim, "Object ID:"), el.ObjectID)
	}
	fmt.Printf("  %-14s %s\n", colorize(dim, "Format:"), r.Format)
	fmt.Printf("  %-14s %s\n", colorize(dim, "Epoch:"), el.Epoch.UTC().Format("2006-01-02T15:04:05.000000Z"))
	fmt.Printf("  %-14s %s old\n", colorize(dim, "Age:"), formatDuration(time.Since(el.Epoch).Round(time.Second)))
	fmt.Printf("  %-14s %.8f rev/day\n", colorize(dim, "Mean motion:"), el.MeanMotion)
	fmt.Printf("  %-14s %.7f\n", colorize(dim, "Eccentricity:"), el.Eccentricity)
	fmt.Printf("  %-14s %.4f°\n", colorize(dim, "Inclination:"), el.Inclination)
	fmt.Printf("  %-14s %.4f°\n", colorize(dim, "RAAN:"), el.RAAN)
	fmt.Printf("  %-14s %.4f°\n", colorize(dim, "Arg perigee:"), el.ArgPerigee)
	fmt.Printf("  %-14s %.4f°\n", colorize(dim, "Mean anomaly:"), el.MeanAnomaly)
	fmt.Printf("  %-14s %g\n", colorize(dim, "B*:"), el.BStar)

	if r.Line1 != "" {
		fmt.Println()
		fmt.Println("  " + r.Line1)
		fmt.Println("  " + r.Line2)
	}
	for _, w := range r.Warnings {
		fmt.Printf("  %s  %s\n", colorize(yellow, "WARN "), w)
	}
	fmt.Println()
}
