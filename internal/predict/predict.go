// Package predict is the propagation side of the tracker. It initializes
// SGP4 from canonical elements, renders elements back to TLE lines, finds
// upcoming passes over an observer, and reads the observer location from
// gpsd.
package predict

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/large-farva/skywatch/internal/config"
	"github.com/large-farva/skywatch/internal/transform"
)

// Pass describes a single predicted overhead pass, from acquisition of
// signal (AOS) through loss of signal (LOS).
type Pass struct {
	AOS            time.Time     `json:"aos"`
	LOS            time.Time     `json:"los"`
	MaxElevation   float64       `json:"maxElevation"`
	MaxElevTime    time.Time     `json:"maxElevationTime"`
	MaxElevAzimuth float64       `json:"maxElevationAzimuth"`
	AOSAzimuth     float64       `json:"aosAzimuth"`
	LOSAzimuth     float64       `json:"losAzimuth"`
	Duration       time.Duration `json:"duration"`
}

// Predictor finds passes of the tracked satellite over an observer.
type Predictor struct {
	cfg config.PredictConfig
	log *log.Logger
}

// NewPredictor creates a predictor using the lookahead, step, and minimum
// elevation from cfg.
func NewPredictor(cfg config.PredictConfig, logger *log.Logger) *Predictor {
	return &Predictor{cfg: cfg, log: logger}
}

// Passes computes all passes of prop's satellite over obs that start within
// the lookahead window after from. Passes that never climb above the
// configured minimum elevation are dropped. Results are sorted by AOS.
func (p *Predictor) Passes(prop *Propagator, obs transform.Observer, from time.Time) ([]Pass, error) {
	name := prop.Elements().DisplayName()
	if name == "" {
		name = "Satellite"
	}

	start := from.UTC()
	end := start.Add(time.Duration(p.cfg.LookaheadHours) * time.Hour)

	raw, err := prop.model.GeneratePasses(
		obs.Latitude, obs.Longitude, obs.HeightKm*1000,
		start, end,
		p.cfg.StepSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("generate passes: %w", err)
	}

	var passes []Pass
	for _, rp := range raw {
		if rp.MaxElevation < p.cfg.MinElevation {
			continue
		}
		passes = append(passes, Pass{
			AOS:            rp.AOS,
			LOS:            rp.LOS,
			MaxElevation:   rp.MaxElevation,
			MaxElevTime:    rp.MaxElevationTime,
			MaxElevAzimuth: rp.MaxElevationAz,
			AOSAzimuth:     rp.AOSAzimuth,
			LOSAzimuth:     rp.LOSAzimuth,
			Duration:       rp.Duration,
		})
	}

	sort.Slice(passes, func(i, j int) bool {
		return passes[i].AOS.Before(passes[j].AOS)
	})

	if p.log != nil {
		p.log.Printf("predict: %d passes of %s in next %dh (min elevation %.0f)",
			len(passes), name, p.cfg.LookaheadHours, p.cfg.MinElevation)
	}
	return passes, nil
}
