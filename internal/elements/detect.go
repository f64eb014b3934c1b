package elements

import "strings"

// Format identifies which wire format a raw element document is written in.
type Format int

const (
	FormatUnrecognized Format = iota
	FormatTLE
	FormatOMMJSON
	FormatOMMKVN
)

func (f Format) String() string {
	switch f {
	case FormatTLE:
		return "TLE"
	case FormatOMMJSON:
		return "OMM_JSON"
	case FormatOMMKVN:
		return "OMM_KVN"
	default:
		return "UNRECOGNIZED"
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	switch string(b) {
	case "TLE":
		*f = FormatTLE
	case "OMM_JSON":
		*f = FormatOMMJSON
	case "OMM_KVN":
		*f = FormatOMMKVN
	default:
		*f = FormatUnrecognized
	}
	return nil
}

// TLELinePair is the two element lines of a TLE. Label holds the satellite
// name line when one preceded line 1.
type TLELinePair struct {
	Label string
	Line1 string
	Line2 string
}

// Detection is the outcome of classifying raw input. Pair is only set for
// FormatTLE.
type Detection struct {
	Format Format
	Pair   TLELinePair
}

// Detect classifies raw element text. A "1 " line followed somewhere later
// by a "2 " line wins over everything else; otherwise any "{" or the
// OBJECT_NAME token marks an OMM document, KVN when it contains "=".
func Detect(raw string) Detection {
	text := strings.TrimSpace(raw)

	if lines := nonBlankLines(text); len(lines) >= 2 {
		if pair, ok := selectPair(lines); ok {
			return Detection{Format: FormatTLE, Pair: pair}
		}
	}

	if strings.Contains(text, "{") || strings.Contains(text, "OBJECT_NAME") {
		if strings.Contains(text, "=") {
			return Detection{Format: FormatOMMKVN}
		}
		return Detection{Format: FormatOMMJSON}
	}

	return Detection{Format: FormatUnrecognized}
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// selectPair picks the first "1 " line and the first "2 " line after it.
func selectPair(lines []string) (TLELinePair, bool) {
	first := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "1 ") {
			first = i
			break
		}
	}
	if first < 0 {
		return TLELinePair{}, false
	}

	for j := first + 1; j < len(lines); j++ {
		if !strings.HasPrefix(lines[j], "2 ") {
			continue
		}
		pair := TLELinePair{Line1: lines[first], Line2: lines[j]}
		if first > 0 {
			// 3LE files prefix the name line with "0 ".
			pair.Label = strings.TrimSpace(strings.TrimPrefix(lines[first-1], "0 "))
		}
		return pair, true
	}
	return TLELinePair{}, false
}
