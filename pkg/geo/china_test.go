package geo

import (
	"math"
	"testing"
)

// Beijing, Shanghai, Shenzhen
var chinaPoints = []struct {
	name     string
	lat, lon float64
}{
	{"Beijing", 39.9042, 116.4074},
	{"Shanghai", 31.2304, 121.4737},
	{"Shenzhen", 22.5431, 114.0579},
}

func TestGcj02RoundTrip(t *testing.T) {
	for _, p := range chinaPoints {
		t.Run(p.name, func(t *testing.T) {
			gLat, gLon := Wgs84ToGcj02(p.lat, p.lon)
			lat, lon := Gcj02ToWgs84(gLat, gLon)
			if math.Abs(lat-p.lat) > 1e-6 || math.Abs(lon-p.lon) > 1e-6 {
				t.Errorf("Round trip moved (%v, %v) to (%v, %v)", p.lat, p.lon, lat, lon)
			}
		})
	}
}

func TestGcj02OffsetMagnitude(t *testing.T) {
	for _, p := range chinaPoints {
		t.Run(p.name, func(t *testing.T) {
			gLat, gLon := Wgs84ToGcj02(p.lat, p.lon)
			d := Distance(p.lat, p.lon, gLat, gLon)
			// the obfuscation offset is a few hundred meters
			if d < 100 || d > 1000 {
				t.Errorf("Expected offset between 100 and 1000 m, got %v m", d)
			}
		})
	}
}

func TestGcj02OutsideChina(t *testing.T) {
	lat, lon := Wgs84ToGcj02(48.8566, 2.3522)
	if lat != 48.8566 || lon != 2.3522 {
		t.Errorf("Expected coordinates outside China unchanged, got (%v, %v)", lat, lon)
	}
}

func TestBd09RoundTrip(t *testing.T) {
	for _, p := range chinaPoints {
		t.Run(p.name, func(t *testing.T) {
			gLat, gLon := Wgs84ToGcj02(p.lat, p.lon)
			bLat, bLon := Gcj02ToBd09(gLat, gLon)
			lat, lon := Bd09ToGcj02(bLat, bLon)
			// the BD09 inverse is an analytic approximation
			if math.Abs(lat-gLat) > 1e-4 || math.Abs(lon-gLon) > 1e-4 {
				t.Errorf("Round trip moved (%v, %v) to (%v, %v)", gLat, gLon, lat, lon)
			}
		})
	}
}

func TestBd09mcRoundTrip(t *testing.T) {
	for _, p := range chinaPoints {
		t.Run(p.name, func(t *testing.T) {
			bLat, bLon := Wgs84ToBd09(p.lat, p.lon)
			x, y := Bd09ToBd09mc(bLat, bLon)
			lat, lon := Bd09mcToBd09(x, y)
			if math.Abs(lat-bLat) > 1e-5 || math.Abs(lon-bLon) > 1e-5 {
				t.Errorf("Round trip moved (%v, %v) to (%v, %v)", bLat, bLon, lat, lon)
			}
		})
	}
}

func TestBd09mcPlausibleRange(t *testing.T) {
	x, y := Wgs84ToBd09mc(39.9042, 116.4074)
	// Beijing is roughly 12.96M east, 4.83M north in Baidu Mercator
	if x < 12.9e6 || x > 13.1e6 {
		t.Errorf("Expected x near 12.96e6, got %v", x)
	}
	if y < 4.7e6 || y > 5.0e6 {
		t.Errorf("Expected y near 4.83e6, got %v", y)
	}
}

func TestWgs84ToBd09mcMatchesComposition(t *testing.T) {
	lat, lon := 31.2304, 121.4737
	x1, y1 := Wgs84ToBd09mc(lat, lon)

	gLat, gLon := Wgs84ToGcj02(lat, lon)
	x2, y2 := Gcj02ToBd09mc(gLat, gLon)

	if math.Abs(x1-x2) > 1e-6 || math.Abs(y1-y2) > 1e-6 {
		t.Errorf("Composed conversion diverges: (%v, %v) vs (%v, %v)", x1, y1, x2, y2)
	}
}
