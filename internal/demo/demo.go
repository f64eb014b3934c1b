// Package demo keeps the daemon busy without user input. It submits
// embedded element sets, re-epoched to the current time so propagation
// stays close to epoch, and rotates through them on an interval.
package demo

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Satellite is one embedded element set. Angles are degrees, mean motion
// is revolutions per day.
type Satellite struct {
	Name         string
	NoradID      int
	ObjectID     string
	MeanMotion   float64
	Eccentricity float64
	Inclination  float64
	RAAN         float64
	ArgPerigee   float64
	MeanAnomaly  float64
	BStar        float64
}

// Catalog is the rotation order. The ISS is always tracked first.
var Catalog = []Satellite{
	{Name: "ISS (ZARYA)", NoradID: 25544, ObjectID: "1998-067A", MeanMotion: 15.49587957, Eccentricity: 0.0002558,
		Inclination: 51.6369, RAAN: 94.7823, ArgPerigee: 120.7586, MeanAnomaly: 15.784, BStar: 0.00014567},
	{Name: "HST", NoradID: 20580, ObjectID: "1990-037B", MeanMotion: 15.27738312, Eccentricity: 0.0002425,
		Inclination: 28.4697, RAAN: 212.3318, ArgPerigee: 58.1213, MeanAnomaly: 301.9862, BStar: 0.00011233},
	{Name: "NOAA 19", NoradID: 33591, ObjectID: "2009-005A", MeanMotion: 14.13143725, Eccentricity: 0.0013281,
		Inclination: 99.1932, RAAN: 171.2209, ArgPerigee: 219.6014, MeanAnomaly: 140.4201, BStar: 0.00010342},
}

// Interval between catalog rotations.
var Interval = 10 * time.Minute

// KVN renders sat as an OMM in Key-Value Notation with the given epoch.
func KVN(sat Satellite, epoch time.Time) string {
	var b strings.Builder
	kv := func(k string, v any) { fmt.Fprintf(&b, "%-18s = %v\n", k, v) }

	kv("CCSDS_OMM_VERS", "2.0")
	b.WriteString("COMMENT demo element set, re-epoched at startup\n")
	kv("OBJECT_NAME", sat.Name)
	kv("OBJECT_ID", sat.ObjectID)
	kv("CENTER_NAME", "EARTH")
	kv("REF_FRAME", "TEME")
	kv("TIME_SYSTEM", "UTC")
	kv("MEAN_ELEMENT_THEORY", "SGP4")
	kv("EPOCH", epoch.UTC().Format("2006-01-02T15:04:05.000000"))
	kv("MEAN_MOTION", fmt.Sprintf("%.8f", sat.MeanMotion))
	kv("ECCENTRICITY", fmt.Sprintf("%.7f", sat.Eccentricity))
	kv("INCLINATION", fmt.Sprintf("%.4f", sat.Inclination))
	kv("RA_OF_ASC_NODE", fmt.Sprintf("%.4f", sat.RAAN))
	kv("ARG_OF_PERICENTER", fmt.Sprintf("%.4f", sat.ArgPerigee))
	kv("MEAN_ANOMALY", fmt.Sprintf("%.4f", sat.MeanAnomaly))
	kv("EPHEMERIS_TYPE", 0)
	kv("CLASSIFICATION_TYPE", "U")
	kv("NORAD_CAT_ID", sat.NoradID)
	kv("ELEMENT_SET_NO", 999)
	kv("REV_AT_EPOCH", 0)
	kv("BSTAR", fmt.Sprintf("%.8f", sat.BStar))
	kv("MEAN_MOTION_DOT", "0")
	kv("MEAN_MOTION_DDOT", "0")
	return b.String()
}

// Submitter hands raw element text to the tracker.
type Submitter func(ctx context.Context, raw string) error

// Run submits the first catalog entry after a short delay, then the next
// one every Interval, until ctx is cancelled.
func Run(ctx context.Context, submit Submitter, logger *log.Logger) {
	logf(logger, "demo mode active, tracking embedded element sets")

	if !sleepOrCancel(ctx, time.Second) {
		return
	}

	t := time.NewTicker(Interval)
	defer t.Stop()

	for i := 0; ; i++ {
		sat := Catalog[i%len(Catalog)]
		if err := submit(ctx, KVN(sat, time.Now())); err != nil {
			logf(logger, "submit %s failed: %v", sat.Name, err)
		} else {
			logf(logger, "now tracking %s, next rotation in %s", sat.Name, Interval)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf("demo: "+format, args...)
	}
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
