package elements

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// tleColumns parses fixed-width TLE fields and remembers the first few
// failures instead of stopping at the first one.
type tleColumns struct {
	reasons []string
}

func (c *tleColumns) slice(line string, lineNo, from, to int, field string) (string, bool) {
	if len(line) < to {
		c.reasons = append(c.reasons, fmt.Sprintf("line %d too short for %s", lineNo, field))
		return "", false
	}
	return line[from:to], true
}

func (c *tleColumns) float(line string, lineNo, from, to int, field string) float64 {
	s, ok := c.slice(line, lineNo, from, to, field)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		c.reasons = append(c.reasons, fmt.Sprintf("line %d %s %q is not a number", lineNo, field, s))
		return 0
	}
	return f
}

func (c *tleColumns) int(line string, lineNo, from, to int, field string) int {
	s, ok := c.slice(line, lineNo, from, to, field)
	if !ok {
		return 0
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.reasons = append(c.reasons, fmt.Sprintf("line %d %s %q is not an integer", lineNo, field, s))
		return 0
	}
	return n
}

func (c *tleColumns) exp(line string, lineNo, from, to int, field string) float64 {
	s, ok := c.slice(line, lineNo, from, to, field)
	if !ok {
		return 0
	}
	f, err := parseExpField(s)
	if err != nil {
		c.reasons = append(c.reasons, fmt.Sprintf("line %d %s: %v", lineNo, field, err))
		return 0
	}
	return f
}

// parseExpField decodes the TLE "assumed decimal point" notation used for
// BSTAR and the second derivative of mean motion: " 14567-3" is
// 0.14567e-3 and "-11606-4" is -0.11606e-4.
func parseExpField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if len(s) < 3 {
		return 0, fmt.Errorf("%q too short", s)
	}

	mant, exp := s[:len(s)-2], s[len(s)-2:]
	sign := 1.0
	switch mant[0] {
	case '-':
		sign = -1
		mant = mant[1:]
	case '+':
		mant = mant[1:]
	}

	m, err := strconv.ParseFloat("0."+strings.TrimSpace(mant), 64)
	if err != nil {
		return 0, fmt.Errorf("mantissa %q: %w", mant, err)
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return 0, fmt.Errorf("exponent %q: %w", exp, err)
	}
	return sign * m * math.Pow10(e), nil
}

// FromTLE builds canonical elements from a line pair that has passed
// ValidateTLE. The display name is columns 10-32 of line 1; the name
// line, if any, is kept as Label.
func FromTLE(pair TLELinePair) (Elements, error) {
	l1, l2 := pair.Line1, pair.Line2
	var c tleColumns

	el := Elements{
		Name:   "Satellite",
		Label:  pair.Label,
		Source: FormatTLE,
	}
	if s, ok := c.slice(l1, 1, 9, 32, "name"); ok {
		el.Name = trimmed(s, "Satellite")
	}

	el.CatalogNumber = c.int(l1, 1, 2, 7, "catalog number")
	if s, ok := c.slice(l1, 1, 7, 8, "classification"); ok {
		el.Classification = trimmed(s, "U")
	}
	if s, ok := c.slice(l1, 1, 9, 17, "international designator"); ok {
		el.ObjectID = strings.TrimSpace(s)
	}
	if s, ok := c.slice(l1, 1, 18, 32, "epoch"); ok {
		t, err := parseTLEEpoch(s)
		if err != nil {
			c.reasons = append(c.reasons, "line 1 "+err.Error())
		}
		el.Epoch = t
	}
	el.MeanMotionDot = c.float(l1, 1, 33, 43, "mean motion derivative")
	el.MeanMotionDDot = c.exp(l1, 1, 44, 52, "mean motion second derivative")
	el.BStar = c.exp(l1, 1, 53, 61, "BSTAR")
	el.EphemerisType = c.int(l1, 1, 62, 63, "ephemeris type")
	el.ElementSetNo = c.int(l1, 1, 64, 68, "element set number")

	el.Inclination = c.float(l2, 2, 8, 16, "inclination")
	el.RAAN = c.float(l2, 2, 17, 25, "right ascension of node")
	if s, ok := c.slice(l2, 2, 26, 33, "eccentricity"); ok {
		f, err := strconv.ParseFloat("0."+strings.TrimSpace(s), 64)
		if err != nil {
			c.reasons = append(c.reasons, fmt.Sprintf("line 2 eccentricity %q is not a number", s))
		}
		el.Eccentricity = f
	}
	el.ArgPerigee = c.float(l2, 2, 34, 42, "argument of perigee")
	el.MeanAnomaly = c.float(l2, 2, 43, 51, "mean anomaly")
	el.MeanMotion = c.float(l2, 2, 52, 63, "mean motion")
	el.RevAtEpoch = c.int(l2, 2, 63, 68, "revolution number")

	if len(c.reasons) > 0 {
		return Elements{}, invalid(KindInvalidTLE, "malformed TLE columns", c.reasons...)
	}
	return el, nil
}

// FromOMM builds canonical elements from a record that has passed
// ValidateOMM. src is the OMM serialization the record was decoded from.
func FromOMM(rec OMMRecord, src Format) (Elements, error) {
	epochText := rec.Text("EPOCH")
	epoch, err := ParseEpoch(epochText)
	if err != nil {
		return Elements{}, invalid(KindInvalidOMM, "EPOCH is not a calendar timestamp", epochText)
	}

	cat, ok := rec.Int("NORAD_CAT_ID")
	if !ok {
		return Elements{}, invalid(KindInvalidOMM, "NORAD_CAT_ID is not a whole number", rec.Text("NORAD_CAT_ID"))
	}

	el := Elements{
		CatalogNumber:  cat,
		Name:           rec.Text("OBJECT_NAME"),
		ObjectID:       rec.Text("OBJECT_ID"),
		Classification: trimmed(rec.Text("CLASSIFICATION_TYPE"), "U"),
		Epoch:          epoch,
		Source:         src,
	}

	el.MeanMotion, _ = rec.Float("MEAN_MOTION")
	el.Eccentricity, _ = rec.Float("ECCENTRICITY")
	el.Inclination, _ = rec.Float("INCLINATION")
	el.RAAN, _ = rec.Float("RA_OF_ASC_NODE")
	el.ArgPerigee, _ = rec.Float("ARG_OF_PERICENTER")
	el.MeanAnomaly, _ = rec.Float("MEAN_ANOMALY")
	el.BStar, _ = rec.Float("BSTAR")
	el.MeanMotionDot, _ = rec.Float("MEAN_MOTION_DOT")
	el.MeanMotionDDot, _ = rec.Float("MEAN_MOTION_DDOT")
	el.ElementSetNo, _ = rec.Int("ELEMENT_SET_NO")
	el.RevAtEpoch, _ = rec.Int("REV_AT_EPOCH")
	el.EphemerisType, _ = rec.Int("EPHEMERIS_TYPE")

	return el, nil
}
