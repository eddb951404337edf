package geo

import (
	"math"
	"testing"
)

func TestWgs84ToTile(t *testing.T) {
	x, y := Wgs84ToTile(53.539043721545404, 9.98702908360777, 17)
	if x != 69172 || y != 42368 {
		t.Errorf("Expected tile (69172, 42368), got (%d, %d)", x, y)
	}
}

func TestTileToWgs84(t *testing.T) {
	lat, lon := TileToWgs84(69172, 42368, 17)
	if math.Abs(lat-53.54030739150021) > 1e-9 {
		t.Errorf("Expected lat 53.54030739150021, got %v", lat)
	}
	if math.Abs(lon-9.986572265625) > 1e-9 {
		t.Errorf("Expected lon 9.986572265625, got %v", lon)
	}
}

func TestTileRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lon float64
		zoom     int
	}{
		{"Hamburg", 53.539043721545404, 9.98702908360777, 17},
		{"Sydney", -33.8688, 151.2093, 15},
		{"Quito", -0.1807, -78.4678, 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := Wgs84ToTile(tc.lat, tc.lon, tc.zoom)
			lat, lon := TileToWgs84(float64(x), float64(y), tc.zoom)
			x2, y2 := Wgs84ToTile(lat+1e-9, lon+1e-9, tc.zoom)
			if x2 != x || y2 != y {
				t.Errorf("Round trip moved tile from (%d, %d) to (%d, %d)", x, y, x2, y2)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	got := Bearing(56.4022257183309, 10.419846839556701, 56.493210323925524, 10.6829783303312)
	want := 1.0107660582679734
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected bearing %v, got %v", want, got)
	}
}

func TestBearingNormalized(t *testing.T) {
	// due west, raw formula yields a negative angle
	got := Bearing(50.0, 10.0, 50.0, 9.0)
	if got < 0 || got >= 2*math.Pi {
		t.Errorf("Expected bearing in [0, 2pi), got %v", got)
	}
	if math.Abs(got-3*math.Pi/2) > 0.01 {
		t.Errorf("Expected bearing near 3pi/2, got %v", got)
	}
}

func TestDistance(t *testing.T) {
	// Hamburg to Berlin, roughly 255 km
	d := Distance(53.5511, 9.9937, 52.5200, 13.4050)
	if d < 250000 || d > 260000 {
		t.Errorf("Expected distance around 255 km, got %v m", d)
	}
}

func TestBoundingBoxAroundPoint(t *testing.T) {
	lat, lon := 53.5511, 9.9937
	topLeft, bottomRight := BoundingBoxAroundPoint(lat, lon, 100)

	if topLeft.Lat <= lat {
		t.Errorf("Expected top left lat above center, got %v", topLeft.Lat)
	}
	if topLeft.Lon >= lon {
		t.Errorf("Expected top left lon west of center, got %v", topLeft.Lon)
	}
	if bottomRight.Lat >= lat {
		t.Errorf("Expected bottom right lat below center, got %v", bottomRight.Lat)
	}
	if bottomRight.Lon <= lon {
		t.Errorf("Expected bottom right lon east of center, got %v", bottomRight.Lon)
	}

	// corner distance of a square with half-side 100 m
	d := Distance(lat, lon, topLeft.Lat, topLeft.Lon)
	want := math.Sqrt(2 * 100 * 100)
	if math.Abs(d-want) > 1 {
		t.Errorf("Expected corner distance near %v m, got %v m", want, d)
	}
}

func TestMercatorProject(t *testing.T) {
	x, y := MercatorProject(0, 0)
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("Expected origin at (0, 0), got (%v, %v)", x, y)
	}

	x, _ = MercatorProject(0, 180)
	if math.Abs(x-20037508.342789244) > 1 {
		t.Errorf("Expected x at the edge of the projection, got %v", x)
	}
}
