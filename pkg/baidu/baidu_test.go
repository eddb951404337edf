package baidu

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

const sampleResponse = `{
	"result": {"error": 0},
	"content": [
		{
			"ID": "09002200122003201316215107V",
			"X": 1295931671,
			"Y": 482619781,
			"Z": 48.32,
			"Heading": 270.0,
			"Pitch": 1.5,
			"Roll": -0.8,
			"Rname": "Chang'an Avenue",
			"ImgLayer": [
				{"BlockX": 2, "BlockY": 1},
				{"BlockX": 4, "BlockY": 2},
				{"BlockX": 8, "BlockY": 4},
				{"BlockX": 16, "BlockY": 8}
			]
		}
	]
}`

func TestParsePanoramaResponse(t *testing.T) {
	var resp apiResponse
	if err := json.Unmarshal([]byte(sampleResponse), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	p, err := parsePanoramaResponse(&resp)
	if err != nil {
		t.Fatalf("parsePanoramaResponse failed: %v", err)
	}
	if p == nil {
		t.Fatal("Expected a panorama")
	}

	if p.ID != "09002200122003201316215107V" {
		t.Errorf("Unexpected ID %s", p.ID)
	}

	// wire positions are BD09MC centimeters
	if p.X != 12959316.71 || p.Y != 4826197.81 {
		t.Errorf("Unexpected Mercator position (%v, %v)", p.X, p.Y)
	}

	// Beijing, give or take the coordinate obfuscation
	if p.Lat < 39 || p.Lat > 41 || p.Lon < 115 || p.Lon > 118 {
		t.Errorf("Expected a position near Beijing, got (%v, %v)", p.Lat, p.Lon)
	}

	if math.Abs(p.Heading-3*math.Pi/2) > 1e-9 {
		t.Errorf("Expected heading 3pi/2, got %v", p.Heading)
	}
	if p.Elevation != 48.32 {
		t.Errorf("Expected elevation 48.32, got %v", p.Elevation)
	}
	if p.StreetName != "Chang'an Avenue" {
		t.Errorf("Unexpected street name %s", p.StreetName)
	}

	if len(p.ImageSizes) != 4 {
		t.Fatalf("Expected 4 zoom levels, got %d", len(p.ImageSizes))
	}
	if p.ImageSizes[3].X != 16*256 || p.ImageSizes[3].Y != 8*256 {
		t.Errorf("Unexpected max size %+v", p.ImageSizes[3])
	}

	if p.Date != "20200320131621" {
		t.Errorf("Unexpected date %s", p.Date)
	}
}

func TestParsePanoramaResponseNotFound(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"error status", `{"result": {"error": 404}, "content": []}`},
		{"empty content", `{"result": {"error": 0}, "content": []}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var resp apiResponse
			if err := json.Unmarshal([]byte(tc.body), &resp); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			p, err := parsePanoramaResponse(&resp)
			if err != nil {
				t.Fatalf("parsePanoramaResponse failed: %v", err)
			}
			if p != nil {
				t.Errorf("Expected nil panorama, got %+v", p)
			}
		})
	}
}

func TestToBd09mc(t *testing.T) {
	lat, lon := 39.9042, 116.4074

	x, y, err := toBd09mc(lat, lon, Wgs84)
	if err != nil {
		t.Fatalf("toBd09mc failed: %v", err)
	}
	if x < 12.9e6 || x > 13.1e6 || y < 4.7e6 || y > 5.0e6 {
		t.Errorf("Implausible Mercator position (%v, %v)", x, y)
	}

	// BD09MC input passes through untouched
	x2, y2, err := toBd09mc(x, y, Bd09mc)
	if err != nil {
		t.Fatalf("toBd09mc failed: %v", err)
	}
	if x2 != x || y2 != y {
		t.Errorf("Expected passthrough, got (%v, %v)", x2, y2)
	}

	if _, _, err := toBd09mc(lat, lon, Crs(99)); err == nil {
		t.Error("Expected error for unsupported CRS")
	}
}

func TestGenerateTileList(t *testing.T) {
	p := &Panorama{
		ID:       "09002200122003201316215107V",
		TileSize: pano.Size{X: 256, Y: 256},
		ImageSizes: []pano.Size{
			{X: 512, Y: 256},
			{X: 1024, Y: 512},
		},
	}

	tiles := generateTileList(p, 1)
	if len(tiles) != 8 {
		t.Fatalf("Expected 8 tiles, got %d", len(tiles))
	}

	// the wire zoom is one above ours, and pos is row_column
	want := "https://mapsv1.bdimg.com/?qt=pdata&sid=09002200122003201316215107V&pos=0_0&z=2"
	if tiles[0].URL != want {
		t.Errorf("Expected %s, got %s", want, tiles[0].URL)
	}
}

func TestDateFromPanoid(t *testing.T) {
	if got := dateFromPanoid("09002200122003201316215107V"); got != "20200320131621" {
		t.Errorf("Unexpected date %s", got)
	}
	if got := dateFromPanoid("short"); got != "" {
		t.Errorf("Expected empty date for short ID, got %s", got)
	}
}
