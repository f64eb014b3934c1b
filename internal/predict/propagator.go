package predict

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/akhenakh/sgp4"
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/large-farva/skywatch/internal/elements"
	"github.com/large-farva/skywatch/internal/transform"
)

// earthRadiusKm is the WGS-72 equatorial radius SGP4 works with.
const earthRadiusKm = 6378.135

// propagationMessages maps SGP4 error codes to the text shown to users.
var propagationMessages = map[int]string{
	0: "propagation produced no result",
	1: "mean elements out of range: eccentricity must be in [0, 1) and semi-major axis positive",
	2: "mean motion is negative",
	3: "perturbed eccentricity out of range",
	4: "semi-latus rectum is negative",
	5: "epoch elements are sub-orbital",
	6: "satellite has decayed",
}

// PropagationError builds the error reported for an SGP4 failure code.
func PropagationError(code int) error {
	msg, ok := propagationMessages[code]
	if !ok {
		msg = fmt.Sprintf("unknown propagation failure %d", code)
	}
	return &elements.Error{Kind: elements.KindPropagation, Code: code, Message: msg}
}

// Propagator is an initialized SGP4 handle for one element set. It is
// immutable after construction and safe for concurrent use.
type Propagator struct {
	el           elements.Elements
	line1, line2 string
	sat          satellite.Satellite
	// model runs the same lines through a second SGP4 that reports
	// run-time failures as errors. go-satellite drops its error code.
	model *sgp4.TLE
}

// NewPropagator renders el into TLE lines and initializes SGP4 on them
// with WGS-72 constants. Every source format takes this path, so the same
// elements are accepted or refused identically whatever they came from.
func NewPropagator(el elements.Elements) (p *Propagator, err error) {
	if el.Eccentricity < 0 || el.Eccentricity >= 1 || math.IsNaN(el.Eccentricity) {
		return nil, PropagationError(1)
	}
	if el.MeanMotion < 0 {
		return nil, PropagationError(2)
	}

	line1, line2, err := FormatTLE(el)
	if err != nil {
		return nil, &elements.Error{Kind: elements.KindPropagation, Message: "elements cannot be encoded", Reasons: []string{err.Error()}}
	}

	// go-satellite panics on column parse failures.
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &elements.Error{Kind: elements.KindPropagation, Message: "SGP4 rejected the element set", Reasons: []string{fmt.Sprint(r)}}
		}
	}()

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	if sat.Error != 0 {
		return nil, PropagationError(int(sat.Error))
	}

	model, perr := sgp4.ParseTLE(line1 + "\n" + line2)
	if perr != nil {
		return nil, &elements.Error{Kind: elements.KindPropagation, Message: "SGP4 rejected the element set", Reasons: []string{perr.Error()}}
	}

	return &Propagator{el: el, line1: line1, line2: line2, sat: sat, model: model}, nil
}

// Elements returns the element set the propagator was built from.
func (p *Propagator) Elements() elements.Elements { return p.el }

// Lines returns the TLE lines handed to SGP4.
func (p *Propagator) Lines() (string, string) { return p.line1, p.line2 }

// Propagate returns the inertial state at t. The library takes whole
// seconds, so t is truncated to the second.
func (p *Propagator) Propagate(t time.Time) (eci transform.ECI, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &elements.Error{Kind: elements.KindPropagation, Message: "SGP4 failed", Reasons: []string{fmt.Sprint(r)}}
		}
	}()

	t = t.UTC()
	if _, merr := p.model.FindPositionAtTime(t); merr != nil {
		return transform.ECI{}, modelError(merr)
	}

	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, vel := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)

	eci = transform.ECI{
		Position: transform.Vector{X: pos.X, Y: pos.Y, Z: pos.Z},
		Velocity: transform.Vector{X: vel.X, Y: vel.Y, Z: vel.Z},
	}

	if err := checkState(eci); err != nil {
		return transform.ECI{}, err
	}
	return eci, nil
}

// modelError maps a run-time SGP4 failure onto the propagation codes.
func modelError(err error) error {
	var (
		decayed *sgp4.SatelliteDecayedError
		limits  *sgp4.SGP4ModelLimitsError
	)
	code := 0
	switch {
	case errors.As(err, &decayed):
		code = 6
	case errors.As(err, &limits):
		switch limits.Reason {
		case sgp4.ReasonPerturbedEccSqTooHigh, sgp4.ReasonBeta2Negative:
			code = 3
		case sgp4.ReasonSemiLatusRectumNegative:
			code = 4
		default:
			code = 1
		}
	}
	perr := PropagationError(code).(*elements.Error)
	perr.Reasons = []string{err.Error()}
	return perr
}

// checkState classifies a propagated go-satellite state. Decay shows up
// as a radius inside the Earth and a failed step as a zero vector.
func checkState(eci transform.ECI) error {
	r := eci.Position.Norm()
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return &elements.Error{Kind: elements.KindTransform, Message: "propagated position is not finite"}
	case r == 0:
		return PropagationError(0)
	case r < earthRadiusKm:
		return PropagationError(6)
	}
	return nil
}
