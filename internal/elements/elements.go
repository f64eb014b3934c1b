// Package elements turns raw orbital-element text into one canonical
// element record.
//
// Three wire formats are accepted: the classic two-line element set (TLE)
// and the CCSDS Orbit Mean-Elements Message serialized as JSON or as
// Key-Value Notation (KVN). Ingest runs the whole front half of the
// pipeline: Detect, decode, validate and build. Each stage is also
// exported on its own and is a pure function of its input.
package elements

import (
	"strings"
	"time"
)

// Elements is the canonical mean-element set handed to the propagator.
// Angles are degrees, mean motion is revolutions per day. Source records
// which wire format produced the set and is only used for display.
type Elements struct {
	CatalogNumber  int       `json:"catalogNumber"`
	Name           string    `json:"name"`
	Label          string    `json:"label,omitempty"`
	ObjectID       string    `json:"objectId,omitempty"`
	Classification string    `json:"classification"`
	Epoch          time.Time `json:"epoch"`

	MeanMotion     float64 `json:"meanMotion"`
	Eccentricity   float64 `json:"eccentricity"`
	Inclination    float64 `json:"inclination"`
	RAAN           float64 `json:"raan"`
	ArgPerigee     float64 `json:"argPerigee"`
	MeanAnomaly    float64 `json:"meanAnomaly"`
	BStar          float64 `json:"bstar"`
	MeanMotionDot  float64 `json:"meanMotionDot"`
	MeanMotionDDot float64 `json:"meanMotionDdot"`

	ElementSetNo  int `json:"elementSetNo"`
	RevAtEpoch    int `json:"revAtEpoch"`
	EphemerisType int `json:"ephemerisType"`

	Source Format `json:"source"`
}

// DisplayName prefers the TLE name line when one was supplied.
func (e Elements) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Name
}

// Ingested is the result of running raw text through detection,
// decoding, validation, and building.
type Ingested struct {
	Format   Format     `json:"format"`
	Elements Elements   `json:"elements"`
	Warnings []string   `json:"warnings,omitempty"`
	Fields   []KVNField `json:"fields,omitempty"`
}

// Ingest classifies raw and builds canonical elements from it. Failures
// are *Error values of kind UnrecognizedFormat, InvalidTle or InvalidOmm.
func Ingest(raw string) (Ingested, error) {
	det := Detect(raw)
	out := Ingested{Format: det.Format}

	switch det.Format {
	case FormatTLE:
		v := ValidateTLE(det.Pair.Line1, det.Pair.Line2)
		if !v.OK {
			return out, invalid(KindInvalidTLE, "TLE rejected", v.Reasons...)
		}
		el, err := FromTLE(det.Pair)
		if err != nil {
			return out, err
		}
		out.Elements = el
		return out, nil

	case FormatOMMKVN:
		rec, fields := DecodeKVN(raw)
		out.Fields = fields
		for _, f := range fields {
			if f.Flagged {
				out.Warnings = append(out.Warnings, f.Key+" is not a calendar timestamp: "+f.RawText)
			}
		}
		return buildOMM(out, rec)

	case FormatOMMJSON:
		rec, err := DecodeJSON(raw)
		if err != nil {
			return out, err
		}
		return buildOMM(out, rec)

	default:
		return out, invalid(KindUnrecognizedFormat, "input is neither a TLE pair nor an OMM document")
	}
}

func buildOMM(out Ingested, rec OMMRecord) (Ingested, error) {
	v := ValidateOMM(rec)
	out.Warnings = append(out.Warnings, v.Warnings...)
	if !v.OK {
		return out, invalid(KindInvalidOMM, "OMM rejected", v.Reasons...)
	}
	el, err := FromOMM(rec, out.Format)
	if err != nil {
		return out, err
	}
	out.Elements = el
	return out, nil
}

// trimmed is strings.TrimSpace with a fallback for empty results.
func trimmed(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
