package elements

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinTLELineLength is the shortest line accepted as a TLE element line.
// Real lines are 69 columns; some producers drop the checksum column.
const MinTLELineLength = 68

var catalogPattern = regexp.MustCompile(`^[12]\s+(\d{4,5})`)

// RequiredOMMFields must all be present in an OMM record.
var RequiredOMMFields = []string{
	"OBJECT_NAME",
	"NORAD_CAT_ID",
	"EPOCH",
	"MEAN_MOTION",
	"ECCENTRICITY",
	"INCLINATION",
	"RA_OF_ASC_NODE",
	"ARG_OF_PERICENTER",
	"MEAN_ANOMALY",
}

// orbitalFields must hold finite numbers.
var orbitalFields = []string{
	"MEAN_MOTION",
	"ECCENTRICITY",
	"INCLINATION",
	"RA_OF_ASC_NODE",
	"ARG_OF_PERICENTER",
	"MEAN_ANOMALY",
}

// Verdict is the outcome of validating an element set. Reasons explain a
// rejection; Warnings never cause one.
type Verdict struct {
	OK       bool     `json:"ok"`
	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// CatalogNumber extracts the satellite catalog number that follows the
// line-number marker of a TLE line.
func CatalogNumber(line string) (int, bool) {
	m := catalogPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidateTLE performs the cheap, format-discriminating checks on a line
// pair: minimum length, line markers, and matching catalog numbers.
// Checksums and column layout are left to the propagator.
func ValidateTLE(line1, line2 string) Verdict {
	var reasons []string

	if len(line1) < MinTLELineLength {
		reasons = append(reasons, fmt.Sprintf("line 1 is %d characters, want at least %d", len(line1), MinTLELineLength))
	}
	if len(line2) < MinTLELineLength {
		reasons = append(reasons, fmt.Sprintf("line 2 is %d characters, want at least %d", len(line2), MinTLELineLength))
	}
	if !strings.HasPrefix(line1, "1 ") {
		reasons = append(reasons, `line 1 must start with "1 "`)
	}
	if !strings.HasPrefix(line2, "2 ") {
		reasons = append(reasons, `line 2 must start with "2 "`)
	}

	cat1, ok1 := CatalogNumber(line1)
	cat2, ok2 := CatalogNumber(line2)
	switch {
	case !ok1:
		reasons = append(reasons, "line 1 has no catalog number")
	case !ok2:
		reasons = append(reasons, "line 2 has no catalog number")
	case cat1 != cat2:
		reasons = append(reasons, fmt.Sprintf("catalog numbers differ: line 1 has %d, line 2 has %d", cat1, cat2))
	}

	return Verdict{OK: len(reasons) == 0, Reasons: reasons}
}

// ValidateOMM checks that a record carries the required fields with usable
// types. Eccentricity outside [0, 1) is only a warning here; the propagator
// refuses such elements for every source format.
func ValidateOMM(rec OMMRecord) Verdict {
	var reasons, warnings []string

	for _, k := range RequiredOMMFields {
		if !rec.Has(k) {
			reasons = append(reasons, "missing required field "+k)
		}
	}

	if v, ok := rec["NORAD_CAT_ID"]; ok && v.Kind != ValueNumber && v.Kind != ValueString {
		reasons = append(reasons, fmt.Sprintf("NORAD_CAT_ID must be a number or string, got %s", v.Kind))
	}
	if v, ok := rec["EPOCH"]; ok && v.Kind != ValueString {
		reasons = append(reasons, fmt.Sprintf("EPOCH must be a string, got %s", v.Kind))
	}

	for _, k := range orbitalFields {
		v, ok := rec[k]
		if !ok {
			continue
		}
		if _, finite := v.Float(); !finite {
			reasons = append(reasons, fmt.Sprintf("%s is not a finite number: %q", k, v.Text()))
		}
	}

	if ecc, ok := rec.Float("ECCENTRICITY"); ok && (ecc < 0 || ecc >= 1) {
		warnings = append(warnings, fmt.Sprintf("ECCENTRICITY %v is outside [0, 1)", ecc))
	}

	return Verdict{OK: len(reasons) == 0, Reasons: reasons, Warnings: warnings}
}
