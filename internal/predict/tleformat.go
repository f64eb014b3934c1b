package predict

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/large-farva/skywatch/internal/elements"
)

var cosparID = regexp.MustCompile(`^\d{2}(\d{2})-(\d{3})([A-Z]{0,3})$`)

// FormatTLE renders canonical elements as the two fixed-width TLE lines the
// SGP4 library consumes, checksums included. Elements that came from a TLE
// render back to the same lines.
func FormatTLE(el elements.Elements) (line1, line2 string, err error) {
	if el.CatalogNumber < 0 || el.CatalogNumber > 99999 {
		return "", "", fmt.Errorf("catalog number %d does not fit five columns", el.CatalogNumber)
	}
	if el.MeanMotion <= 0 || el.MeanMotion >= 100 {
		return "", "", fmt.Errorf("mean motion %v rev/day out of range", el.MeanMotion)
	}
	if el.Inclination < 0 || el.Inclination > 180 {
		return "", "", fmt.Errorf("inclination %v outside [0, 180]", el.Inclination)
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return "", "", fmt.Errorf("eccentricity %v outside [0, 1)", el.Eccentricity)
	}

	epoch := el.Epoch.UTC()
	if epoch.Year() < 1957 || epoch.Year() > 2056 {
		return "", "", fmt.Errorf("epoch year %d has no two-digit form", epoch.Year())
	}
	midnight := time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, time.UTC)
	day := float64(epoch.YearDay()) + float64(epoch.Sub(midnight))/float64(24*time.Hour)

	ndot, err := formatNDot(el.MeanMotionDot)
	if err != nil {
		return "", "", err
	}
	nddot, err := formatExp(el.MeanMotionDDot)
	if err != nil {
		return "", "", fmt.Errorf("mean motion second derivative: %w", err)
	}
	bstar, err := formatExp(el.BStar)
	if err != nil {
		return "", "", fmt.Errorf("bstar: %w", err)
	}

	class := byte('U')
	if el.Classification != "" {
		class = el.Classification[0]
	}

	line1 = fmt.Sprintf("1 %05d%c %-8s %02d%012.8f %s %s %s %d %4d",
		el.CatalogNumber, class, designator(el.ObjectID),
		epoch.Year()%100, day, ndot, nddot, bstar,
		el.EphemerisType%10, el.ElementSetNo%10000)

	ecc := int(math.Round(el.Eccentricity * 1e7))
	if ecc > 9999999 {
		ecc = 9999999
	}
	line2 = fmt.Sprintf("2 %05d %8.4f %8.4f %07d %8.4f %8.4f %11.8f%5d",
		el.CatalogNumber, el.Inclination, wrap360(el.RAAN), ecc,
		wrap360(el.ArgPerigee), wrap360(el.MeanAnomaly), el.MeanMotion,
		el.RevAtEpoch%100000)

	line1 += strconv.Itoa(Checksum(line1))
	line2 += strconv.Itoa(Checksum(line2))
	return line1, line2, nil
}

// Checksum is the modulo-10 sum of the digits in the first 68 columns of a
// TLE line, with each minus sign counting as one.
func Checksum(line string) int {
	if len(line) > 68 {
		line = line[:68]
	}
	sum := 0
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// designator converts a COSPAR ID such as "1998-067A" to the eight-column
// TLE form "98067A".
func designator(id string) string {
	id = strings.TrimSpace(id)
	if m := cosparID.FindStringSubmatch(id); m != nil {
		return m[1] + m[2] + m[3]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatNDot renders the first derivative of mean motion as ".00007749"
// with a leading sign column.
func formatNDot(v float64) (string, error) {
	sign := " "
	if v < 0 {
		sign = "-"
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', 8, 64)
	if !strings.HasPrefix(s, "0.") {
		return "", fmt.Errorf("mean motion derivative %v out of range", v)
	}
	return sign + s[1:], nil
}

// formatExp renders v in the TLE assumed-decimal exponent notation,
// " 14567-3" for 0.14567e-3.
func formatExp(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%v is not finite", v)
	}
	if v == 0 {
		return " 00000+0", nil
	}

	sign := byte(' ')
	if v < 0 {
		sign = '-'
	}
	abs := math.Abs(v)

	exp := int(math.Floor(math.Log10(abs))) + 1
	digits := int(math.Round(abs / math.Pow10(exp) * 1e5))
	if digits >= 100000 {
		digits /= 10
		exp++
	}
	if exp < -9 {
		return " 00000+0", nil
	}
	if exp > 9 {
		return "", fmt.Errorf("%v too large", v)
	}

	expSign := byte('+')
	if exp < 0 {
		expSign = '-'
		exp = -exp
	}
	return fmt.Sprintf("%c%05d%c%d", sign, digits, expSign, exp), nil
}

func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
