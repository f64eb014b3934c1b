package elements

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	kvnLine       = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\s*=\s*(.*)$`)
	numericLexeme = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	unitSuffix    = regexp.MustCompile(`\s*\[[^\[\]]*\]$`)
)

// numericFields are always decoded as floating point when they parse.
var numericFields = map[string]bool{
	"NORAD_CAT_ID":      true,
	"MEAN_MOTION":       true,
	"ECCENTRICITY":      true,
	"INCLINATION":       true,
	"RA_OF_ASC_NODE":    true,
	"ARG_OF_PERICENTER": true,
	"MEAN_ANOMALY":      true,
	"ELEMENT_SET_NO":    true,
	"REV_AT_EPOCH":      true,
	"BSTAR":             true,
	"MEAN_MOTION_DOT":   true,
	"MEAN_MOTION_DDOT":  true,
	"EPHEMERIS_TYPE":    true,
}

// KVNField is one decoded KEY = value line. Flagged marks an EPOCH whose
// value is not a calendar timestamp; it is kept as-is for the validator.
type KVNField struct {
	Key     string `json:"key"`
	Value   Value  `json:"value"`
	RawText string `json:"raw"`
	Flagged bool   `json:"flagged,omitempty"`
}

// DecodeKVN decodes OMM Key-Value Notation. Lines that are not KEY = value
// (blank lines, COMMENT lines, headers) are skipped. A later duplicate key
// overwrites an earlier one in the record; fields keeps every line.
func DecodeKVN(text string) (OMMRecord, []KVNField) {
	rec := make(OMMRecord)
	var fields []KVNField

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := kvnLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f := decodeField(m[1], strings.TrimSpace(m[2]))
		rec[f.Key] = f.Value
		fields = append(fields, f)
	}

	return rec, fields
}

func decodeField(key, raw string) KVNField {
	f := KVNField{Key: key, RawText: raw}
	val := raw
	// A trailing [unit] is dropped only from numbers; names such as
	// "STARLINK-1008 [DTC]" stay verbatim.
	if v := unitSuffix.ReplaceAllString(raw, ""); v != raw && numericLexeme.MatchString(v) {
		val = v
	}

	switch val {
	case "true":
		f.Value = Bool(true)
		return f
	case "false":
		f.Value = Bool(false)
		return f
	case "null":
		f.Value = Null()
		return f
	}

	if key == "EPOCH" {
		s := unquote(val)
		_, err := ParseEpoch(s)
		f.Value = String(s)
		f.Flagged = err != nil
		return f
	}

	if numericFields[key] {
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			f.Value = Number(n)
		} else {
			f.Value = String(unquote(val))
		}
		return f
	}

	if numericLexeme.MatchString(val) {
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			f.Value = Number(n)
			return f
		}
	}

	f.Value = String(unquote(val))
	return f
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
