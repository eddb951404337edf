package lookaround

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/streetlevel/streetlevel/pkg/geo"
)

const (
	coverageZoom = 17

	// extent of the Web Mercator plane in meters
	webMercatorSize = 40086474.44
)

// TileOffsetToWgs84 converts a panorama position, given as sub-tile
// offsets within a zoom 17 map tile, to WGS84. Offsets are 14 bit
// fixed point with 6 fractional bits.
func TileOffsetToWgs84(xOffset, yOffset, tileX, tileY int) (lat, lon float64) {
	panoX := float64(tileX) + (float64(xOffset)/64.0)/255.0
	panoY := float64(tileY) + (255.0-float64(yOffset)/64.0)/255.0
	return geo.TileToWgs84(panoX, panoY, coverageZoom)
}

// ConvertAltitude converts the raw 14 bit altitude of a panorama to
// meters above the ellipsoid. The raw value is a fraction of the ECEF
// length of the top edge of the zoom 17 tile the panorama sits on.
// Converting to height above mean sea level additionally needs an
// EGM2008 geoid lookup, which is left to the caller.
func ConvertAltitude(rawAltitude, tileX, tileY int) float64 {
	topLeftX, topLeftY := TileToMercator(tileX, tileY, coverageZoom)
	topRightX, topRightY := TileToMercator(tileX+1, tileY, coverageZoom)

	x1, y1, _ := mercatorToECEF(topLeftX, topLeftY)
	x2, y2, _ := mercatorToECEF(topRightX, topRightY)

	return math.Hypot(x1-x2, y1-y2) * (float64(rawAltitude) / 16383.0)
}

// mercatorToECEF converts EPSG:3857 meters to ECEF coordinates on the
// WGS84 ellipsoid at zero height.
func mercatorToECEF(x, y float64) (float64, float64, float64) {
	const (
		a  = 6378137.0
		f  = 1 / 298.257223563
		e2 = f * (2 - f)
	)
	lon := x / a
	lat := 2*math.Atan(math.Exp(y/a)) - math.Pi/2

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	return n * cosLat * cosLon, n * cosLat * sinLon, n * (1 - e2) * sinLat
}

// TileToMercator converts tile coordinates to Web Mercator meters.
func TileToMercator(tileX, tileY, zoom int) (x, y float64) {
	scale := float64(int(1) << zoom)
	x = (float64(tileX)/scale - 0.5) * webMercatorSize
	y = ((scale+float64(^tileY))/scale - 0.5) * webMercatorSize
	return x, y
}

// ConvertPanoOrientation converts the raw orientation values of a
// panorama, which are rotations in a local tangent frame encoded as
// 14 bit angles, to yaw, pitch and roll relative to north.
func ConvertPanoOrientation(lat, lon float64, rawYaw, rawPitch, rawRoll int) (heading, pitch, roll float64) {
	yawRad := float64(rawYaw) / 16383.0 * 2 * math.Pi
	pitchRad := float64(rawPitch) / 16383.0 * 2 * math.Pi
	rollRad := float64(rawRoll) / 16383.0 * 2 * math.Pi

	q := quat.Mul(quat.Mul(quatAboutZ(rollRad), quatAboutY(pitchRad)), quatAboutX(yawRad))
	q = quat.Mul(q, quat.Number{Real: -0.5, Imag: 0.5, Jmag: 0.5, Kmag: -0.5})
	q = quat.Number{Real: q.Jmag, Imag: q.Real, Jmag: -q.Kmag, Kmag: -q.Imag}

	m := matMul(localFrame(lat, lon), quatToMatrix(q))

	// extrinsic z-x-y Euler angles of the combined rotation
	a := math.Atan2(m[1][0], m[1][1])
	b := math.Asin(clamp(-m[1][2], -1, 1))
	c := math.Atan2(m[0][2], m[2][2])
	return c, -b, -a
}

// localFrame is the east-north-up basis at a point, expressed in ECEF
// axes as rows.
func localFrame(lat, lon float64) [3][3]float64 {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	sinLat, cosLat := math.Sincos(latRad)
	sinLon, cosLon := math.Sincos(lonRad)
	return [3][3]float64{
		{-sinLon, cosLon, 0},
		{cosLon * cosLat, sinLon * cosLat, sinLat},
		{cosLon * sinLat, sinLon * sinLat, -cosLat},
	}
}

func quatAboutX(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: s}
}

func quatAboutY(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Jmag: s}
}

func quatAboutZ(angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Kmag: s}
}

func quatToMatrix(q quat.Number) [3][3]float64 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

func matMul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
