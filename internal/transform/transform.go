// Package transform converts inertial satellite positions into Earth-fixed,
// geodetic, observer-relative, and equatorial coordinates.
//
// Every step is a pure function. Distances are kilometres and angles are
// degrees at the package boundary; radians are used internally.
package transform

import (
	"fmt"
	"math"
	"time"

	"github.com/large-farva/skywatch/internal/elements"
)

const (
	rad2deg = 180 / math.Pi
	deg2rad = math.Pi / 180
)

// Vector is a Cartesian position in kilometres.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector) finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// ECI is a propagated state in the Earth-centred inertial (TEME) frame.
type ECI struct {
	Position Vector `json:"position"`
	Velocity Vector `json:"velocity"`
}

// Observer is a ground station. Height is kilometres above the WGS-84
// ellipsoid.
type Observer struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	HeightKm  float64 `json:"height"`
}

// Validate checks the observer's coordinate ranges.
func (o Observer) Validate() error {
	switch {
	case !finite(o.Latitude) || o.Latitude < -90 || o.Latitude > 90:
		return fmt.Errorf("latitude %v outside [-90, 90]", o.Latitude)
	case !finite(o.Longitude) || o.Longitude < -180 || o.Longitude > 180:
		return fmt.Errorf("longitude %v outside [-180, 180]", o.Longitude)
	case !finite(o.HeightKm):
		return fmt.Errorf("height %v is not finite", o.HeightKm)
	}
	return nil
}

// Geodetic is a position relative to the WGS-84 ellipsoid.
type Geodetic struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    float64 `json:"height"`
}

// Look holds azimuth (clockwise from north) and elevation in degrees and
// slant range in kilometres.
type Look struct {
	Azimuth   float64
	Elevation float64
	Range     float64
}

// Position is one recomputed result. It is never merged with a previous
// one.
type Position struct {
	Time           time.Time `json:"time"`
	Azimuth        float64   `json:"azimuth"`
	Elevation      float64   `json:"elevation"`
	Range          float64   `json:"range"`
	RightAscension float64   `json:"rightAscension"`
	Declination    float64   `json:"declination"`
	Geodetic       Geodetic  `json:"positionGeodetic"`
}

// Observe runs the full chain for one propagated state: sidereal time,
// inertial to Earth-fixed, geodetic, look angles, and RA/Dec. Non-finite
// input or output is a TransformFailure.
func Observe(eci ECI, at time.Time, obs Observer) (Position, error) {
	r := eci.Position
	if !r.finite() {
		return Position{}, &elements.Error{Kind: elements.KindTransform, Message: "inertial position is not finite"}
	}
	if r.Norm() == 0 {
		return Position{}, &elements.Error{Kind: elements.KindTransform, Message: "inertial position is the origin"}
	}

	gmst := GMST(at)
	ecf := ECIToECF(r, gmst)
	look := LookAngles(obs, ecf)

	p := Position{
		Time:           at.UTC(),
		Azimuth:        look.Azimuth,
		Elevation:      look.Elevation,
		Range:          look.Range,
		RightAscension: RightAscension(r),
		Declination:    Declination(r),
		Geodetic:       ECFToGeodetic(ecf),
	}

	for name, v := range map[string]float64{
		"azimuth":         p.Azimuth,
		"elevation":       p.Elevation,
		"range":           p.Range,
		"right ascension": p.RightAscension,
		"declination":     p.Declination,
		"latitude":        p.Geodetic.Latitude,
		"longitude":       p.Geodetic.Longitude,
		"height":          p.Geodetic.Height,
	} {
		if !finite(v) {
			return Position{}, &elements.Error{Kind: elements.KindTransform, Message: name + " is not finite"}
		}
	}
	return p, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
