package kakao

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/streetlevel/streetlevel/pkg/fetch"
)

const sampleResponse = `{
	"street_view": {
		"cnt": 1,
		"street": {
			"id": 1168790729,
			"wgsx": 126.9780,
			"wgsy": 37.5665,
			"angle": 90.0,
			"img_path": "/2023/08/1168790729_20230815103000",
			"st_name": "Sejong-daero",
			"addr": "Jung-gu, Seoul",
			"past": [
				{
					"id": 1100000001,
					"wgsx": 126.9780,
					"wgsy": 37.5665,
					"angle": 85.0,
					"img_path": "/2019/04/1100000001_20190412091500"
				}
			]
		}
	}
}`

const searchResponse = `{
	"street_view": {
		"cnt": 2,
		"streetList": [
			{"id": 1168790730, "wgsx": 126.9781, "wgsy": 37.5666, "angle": 92.0,
			 "img_path": "/2023/08/1168790730_20230815103200"},
			{"id": 1168790731, "wgsx": 126.9779, "wgsy": 37.5664, "angle": 88.0,
			 "img_path": "/2023/08/1168790731_20230815103400"}
		]
	}
}`

// roadviewStub serves canned lookup and search responses and records
// how often the search endpoint was hit.
type roadviewStub struct {
	t          *testing.T
	searchHits int
}

func (s *roadviewStub) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	switch {
	case strings.HasPrefix(req.URL.Path, "/roadview-search/v2/node/"):
		body = sampleResponse
	case req.URL.Path == "/roadview-search/v2/nodes":
		s.searchHits++
		if got := req.URL.Query().Get("RAD"); got != "35" {
			s.t.Errorf("Expected neighbor search radius 35, got %s", got)
		}
		if got := req.URL.Query().Get("PAGE_SIZE"); got != "50" {
			s.t.Errorf("Expected neighbor search limit 50, got %s", got)
		}
		body = searchResponse
	default:
		s.t.Errorf("Unexpected request %s", req.URL)
		body = "{}"
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func TestFindPanoramaByIDNeighbors(t *testing.T) {
	stub := &roadviewStub{t: t}
	c := fetch.NewClient(fetch.WithHTTPClient(&http.Client{Transport: stub}))

	p, err := FindPanoramaByID(context.Background(), c, 1168790729, true)
	if err != nil {
		t.Fatalf("FindPanoramaByID failed: %v", err)
	}
	if p == nil {
		t.Fatal("Expected a panorama, got nil")
	}
	if stub.searchHits != 1 {
		t.Errorf("Expected 1 neighbor search, got %d", stub.searchHits)
	}
	if len(p.Neighbors) != 2 {
		t.Fatalf("Expected 2 neighbors, got %d", len(p.Neighbors))
	}
	if p.Neighbors[0].ID != 1168790730 || p.Neighbors[1].ID != 1168790731 {
		t.Errorf("Unexpected neighbor IDs %d, %d", p.Neighbors[0].ID, p.Neighbors[1].ID)
	}
}

func TestFindPanoramaByIDWithoutNeighbors(t *testing.T) {
	stub := &roadviewStub{t: t}
	c := fetch.NewClient(fetch.WithHTTPClient(&http.Client{Transport: stub}))

	p, err := FindPanoramaByID(context.Background(), c, 1168790729, false)
	if err != nil {
		t.Fatalf("FindPanoramaByID failed: %v", err)
	}
	if stub.searchHits != 0 {
		t.Errorf("Expected no neighbor search, got %d", stub.searchHits)
	}
	if len(p.Neighbors) != 0 {
		t.Errorf("Expected no neighbors, got %d", len(p.Neighbors))
	}
}

func TestParsePanorama(t *testing.T) {
	var resp apiResponse
	if err := json.Unmarshal([]byte(sampleResponse), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	p, err := parsePanorama(resp.StreetView.Street)
	if err != nil {
		t.Fatalf("parsePanorama failed: %v", err)
	}

	if p.ID != 1168790729 {
		t.Errorf("Expected ID 1168790729, got %d", p.ID)
	}
	if p.Lat != 37.5665 || p.Lon != 126.9780 {
		t.Errorf("Unexpected position (%v, %v)", p.Lat, p.Lon)
	}
	if math.Abs(p.Heading-math.Pi/2) > 1e-9 {
		t.Errorf("Expected heading pi/2, got %v", p.Heading)
	}
	if p.StreetName != "Sejong-daero" {
		t.Errorf("Unexpected street name %s", p.StreetName)
	}

	wantDate := time.Date(2023, 8, 15, 10, 30, 0, 0, time.UTC)
	if !p.Date.Equal(wantDate) {
		t.Errorf("Expected date %v, got %v", wantDate, p.Date)
	}

	if len(p.Historical) != 1 {
		t.Fatalf("Expected 1 historical panorama, got %d", len(p.Historical))
	}
	if p.Historical[0].ID != 1100000001 {
		t.Errorf("Unexpected historical ID %d", p.Historical[0].ID)
	}
	wantPast := time.Date(2019, 4, 12, 9, 15, 0, 0, time.UTC)
	if !p.Historical[0].Date.Equal(wantPast) {
		t.Errorf("Expected historical date %v, got %v", wantPast, p.Historical[0].Date)
	}
}

func TestDateFromImagePath(t *testing.T) {
	testCases := []struct {
		path string
		want time.Time
	}{
		{"/2023/08/1168790729_20230815103000", time.Date(2023, 8, 15, 10, 30, 0, 0, time.UTC)},
		{"no date here", time.Time{}},
		{"/short_123", time.Time{}},
	}
	for _, tc := range testCases {
		if got := dateFromImagePath(tc.path); !got.Equal(tc.want) {
			t.Errorf("dateFromImagePath(%s): expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestGenerateTileListZoom1(t *testing.T) {
	p := &Panorama{
		ID:        1168790729,
		ImagePath: "/2023/08/1168790729_20230815103000",
	}

	tiles := generateTileList(p, 1)
	if len(tiles) != 32 {
		t.Fatalf("Expected 32 tiles at zoom 1, got %d", len(tiles))
	}

	// tile numbering is 1-based and row-major
	want := "https://map.daumcdn.net/map_roadview/2023/08/1168790729_20230815103000/1168790729_20230815103000_01.jpg"
	if tiles[0].URL != want {
		t.Errorf("Expected %s, got %s", want, tiles[0].URL)
	}
	if tiles[0].X != 0 || tiles[0].Y != 0 {
		t.Errorf("Unexpected first tile coordinates (%d, %d)", tiles[0].X, tiles[0].Y)
	}

	last := tiles[len(tiles)-1]
	if last.X != 7 || last.Y != 3 {
		t.Errorf("Unexpected last tile coordinates (%d, %d)", last.X, last.Y)
	}
}

func TestGenerateTileListZoom2(t *testing.T) {
	p := &Panorama{
		ID:        1168790729,
		ImagePath: "/2023/08/1168790729_20230815103000",
	}

	tiles := generateTileList(p, 2)
	if len(tiles) != 128 {
		t.Fatalf("Expected 128 tiles at zoom 2, got %d", len(tiles))
	}

	want := "https://map.daumcdn.net/map_roadview/2023/08/1168790729_20230815103000_HD1/1168790729_20230815103000_HD1_001.jpg"
	if tiles[0].URL != want {
		t.Errorf("Expected %s, got %s", want, tiles[0].URL)
	}
}

func TestGetPanoramaValidation(t *testing.T) {
	p := &Panorama{ID: 1, ImagePath: "/x/y"}

	if _, err := GetPanorama(context.Background(), nil, p, 3); err == nil {
		t.Error("Expected error for zoom above maximum")
	}
	if _, err := GetPanorama(context.Background(), nil, p, -1); err == nil {
		t.Error("Expected error for negative zoom")
	}
	if _, err := GetPanorama(context.Background(), nil, &Panorama{ID: 1}, 1); err == nil {
		t.Error("Expected error for panorama without image path")
	}
}

func TestBuildPermalink(t *testing.T) {
	if _, err := BuildPermalink(0, 0, 0, 0, 0, false); err == nil {
		t.Error("Expected error when neither ID nor position is given")
	}

	link, err := BuildPermalink(1168790729, 499455, 1129250, 90, 0, false)
	if err != nil {
		t.Fatalf("BuildPermalink failed: %v", err)
	}
	if link == "" {
		t.Fatal("Expected non-empty link")
	}
}
