package transform

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// WGS-84 ellipsoid, kilometres.
const (
	wgs84A  = 6378.137
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
)

// GMST returns Greenwich Mean Sidereal Time in radians. The Julian date
// comes from go-satellite at whole-second resolution; the sub-second part
// is added back before the sidereal angle is taken. The result is in
// [0, 2π).
func GMST(at time.Time) float64 {
	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	jd += float64(at.Nanosecond()) / 1e9 / 86400
	gmst := math.Mod(satellite.ThetaG_JD(jd), 2*math.Pi)
	if gmst < 0 {
		gmst += 2 * math.Pi
	}
	return gmst
}

// ECIToECF rotates an inertial position about the polar axis by gmst.
func ECIToECF(r Vector, gmst float64) Vector {
	v := satellite.ECIToECEF(satellite.Vector3{X: r.X, Y: r.Y, Z: r.Z}, gmst)
	return Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// ECFToGeodetic converts an Earth-fixed position to latitude, longitude
// and height using Bowring's iteration; it converges in a few rounds for
// anything near the Earth.
func ECFToGeodetic(r Vector) Geodetic {
	lon := math.Atan2(r.Y, r.X)
	p := math.Hypot(r.X, r.Y)

	lat := math.Atan2(r.Z, p*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(r.Z+wgs84E2*n*sinLat, p)
	}

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var h float64
	if math.Abs(cosLat) > 1e-10 {
		h = p/cosLat - n
	} else {
		h = math.Abs(r.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		Latitude:  lat * rad2deg,
		Longitude: lon * rad2deg,
		Height:    h,
	}
}

// GeodeticToECF places an observer in the Earth-fixed frame.
func GeodeticToECF(obs Observer) Vector {
	lat := obs.Latitude * deg2rad
	lon := obs.Longitude * deg2rad
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)

	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	return Vector{
		X: (n + obs.HeightKm) * cosLat * math.Cos(lon),
		Y: (n + obs.HeightKm) * cosLat * math.Sin(lon),
		Z: (n*(1-wgs84E2) + obs.HeightKm) * sinLat,
	}
}

// LookAngles computes azimuth, elevation and range from obs to an
// Earth-fixed target through the south-east-zenith frame.
func LookAngles(obs Observer, target Vector) Look {
	site := GeodeticToECF(obs)
	rx, ry, rz := target.X-site.X, target.Y-site.Y, target.Z-site.Z

	lat := obs.Latitude * deg2rad
	lon := obs.Longitude * deg2rad
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	south := sinLat*cosLon*rx + sinLat*sinLon*ry - cosLat*rz
	east := -sinLon*rx + cosLon*ry
	zenith := cosLat*cosLon*rx + cosLat*sinLon*ry + sinLat*rz

	rng := math.Sqrt(south*south + east*east + zenith*zenith)

	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	return Look{
		Azimuth:   az * rad2deg,
		Elevation: math.Asin(zenith/rng) * rad2deg,
		Range:     rng,
	}
}

// RightAscension returns atan2(y, x) of an inertial position in degrees,
// normalized into [0, 360).
func RightAscension(r Vector) float64 {
	ra := math.Atan2(r.Y, r.X) * rad2deg
	if ra < 0 {
		ra += 360
	}
	// -tiny + 360 rounds to exactly 360.
	if ra >= 360 {
		ra -= 360
	}
	return ra
}

// Declination returns asin(z/|r|) of an inertial position in degrees.
func Declination(r Vector) float64 {
	d := r.Norm()
	if d == 0 {
		return math.NaN()
	}
	return math.Asin(r.Z/d) * rad2deg
}
