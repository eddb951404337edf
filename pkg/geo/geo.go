// Package geo provides the coordinate and tile-index conversions shared
// by all providers.
//
// Conversions do not validate input ranges; out-of-range values produce
// whatever the underlying math produces.
package geo

import (
	"math"

	"github.com/pymaxion/geographiclib-go/geodesic"
)

// Point is a WGS84 coordinate unless stated otherwise.
type Point struct {
	Lat float64
	Lon float64
}

// TileToWgs84 converts slippy map tile coordinates to WGS84.
// X and Y may be fractional for sub-tile precision.
// http://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
func TileToWgs84(x, y float64, zoom int) (lat, lon float64) {
	scale := float64(uint64(1) << uint(zoom))
	lon = x/scale*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/scale)))
	lat = latRad * 180 / math.Pi
	return lat, lon
}

// Wgs84ToTile converts WGS84 coordinates to slippy map tile coordinates,
// truncated to integer tile indices.
func Wgs84ToTile(lat, lon float64, zoom int) (x, y int) {
	latRad := lat * math.Pi / 180
	scale := float64(uint64(1) << uint(zoom))
	xf := (lon + 180.0) / 360.0 * scale
	yf := (1.0 - math.Asinh(math.Tan(latRad))/math.Pi) / 2.0 * scale
	return int(xf), int(yf)
}

// MercatorProject converts WGS84 coordinates to XY in Spherical Mercator
// (EPSG:3857) meters.
func MercatorProject(lat, lon float64) (x, y float64) {
	const originShift = 20037508.342789244 // 2 * pi * 6378137 / 2
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return x, y
}

// BoundingBoxAroundPoint creates a square bounding box around a point.
// The radius is the shortest distance from the center to the edges of
// the square, so the corners are radius*sqrt(2) away at 315 and 135
// degrees. Returns the NW and SE corners.
func BoundingBoxAroundPoint(lat, lon, radius float64) (topLeft, bottomRight Point) {
	distToCorner := math.Sqrt(2*math.Pow(2*radius, 2)) / 2
	nw := geodesic.WGS84.Direct(lat, lon, 315, distToCorner)
	se := geodesic.WGS84.Direct(lat, lon, 135, distToCorner)
	return Point{Lat: nw.Lat2, Lon: nw.Lon2}, Point{Lat: se.Lat2, Lon: se.Lon2}
}

// Bearing returns the initial bearing from point 1 to point 2 in radians,
// normalized to [0, 2pi).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	r := geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2)
	b := r.Azi1 * math.Pi / 180
	if b < 0 {
		b += 2 * math.Pi
	}
	return b
}

// Distance returns the geodesic distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2).S12
}
