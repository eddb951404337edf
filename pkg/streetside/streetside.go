// Package streetside is a client for Bing Streetside.
//
// Streetside panoramas are cubemaps. Each face is subdivided into 4^zoom
// tiles addressed by base 4 keys, which are stitched back together with
// the recursive quadrant compositor.
package streetside

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"
	"time"

	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/geo"
	"github.com/streetlevel/streetlevel/pkg/stitch"
)

const (
	tileSize = 256
	maxZoom  = 3

	metadataURL = "https://t.ssl.ak.tiles.virtualearth.net/tiles/cmd/StreetSideBubbleMetaData"
	tileURL     = "https://t.ssl.ak.tiles.virtualearth.net/tiles/hs%s%s.jpg?g=0"
)

// Panorama is the metadata of one Streetside panorama.
type Panorama struct {
	ID        int64
	Lat       float64
	Lon       float64
	Date      time.Time
	Next      int64 // 0 if none
	Previous  int64 // 0 if none
	Elevation float64
	Heading   float64 // radians
	Pitch     float64 // radians
	Roll      float64 // radians
}

// FindPanoramas retrieves panoramas within a square around a point.
// Radius is the distance in meters from the point to the edges of the
// square. An empty result is not an error.
func FindPanoramas(ctx context.Context, c *fetch.Client, lat, lon, radius float64, limit int) ([]Panorama, error) {
	topLeft, bottomRight := geo.BoundingBoxAroundPoint(lat, lon, radius)
	return FindPanoramasInBbox(ctx, c, topLeft.Lat, topLeft.Lon, bottomRight.Lat, bottomRight.Lon, limit)
}

// FindPanoramasInBbox retrieves panoramas within a bounding box.
func FindPanoramasInBbox(ctx context.Context, c *fetch.Client, north, west, south, east float64, limit int) ([]Panorama, error) {
	url := fmt.Sprintf("%s?count=%d&north=%f&south=%f&east=%f&west=%f",
		metadataURL, limit, north, south, east, west)

	var raw []rawPanorama
	if err := c.GetJSON(ctx, url, &raw, nil); err != nil {
		return nil, err
	}
	return parsePanoramas(raw)
}

// GetPanoramaFaces downloads and stitches the six faces of a panorama,
// in the order front, right, back, left, top, bottom. Zoom ranges from
// 0 (lowest) to 3 (highest).
func GetPanoramaFaces(ctx context.Context, c *fetch.Client, panoid int64, zoom int) ([]image.Image, error) {
	if zoom < 0 || zoom > maxZoom {
		return nil, fmt.Errorf("zoom must be between 0 and %d, got %d", maxZoom, zoom)
	}

	faceURLs := generateTileURLs(panoid, zoom)
	faces := make([]image.Image, 6)
	for i, urls := range faceURLs {
		tiles, err := c.GetAll(ctx, urls)
		if err != nil {
			return nil, err
		}
		face, err := stitch.Quadrants(tiles, tileSize)
		if err != nil {
			return nil, err
		}
		faces[i] = face
	}
	return faces, nil
}

// GetPanorama downloads a panorama and merges its faces into one
// net-of-cube image.
func GetPanorama(ctx context.Context, c *fetch.Client, panoid int64, zoom int) (image.Image, error) {
	faces, err := GetPanoramaFaces(ctx, c, panoid, zoom)
	if err != nil {
		return nil, err
	}
	faceSize := faces[0].Bounds().Dx()
	return stitch.CombineFaces(faces, faceSize, stitch.LayoutNet)
}

// BuildPermalink creates a Bing Maps link which opens the closest
// panorama to the given location. Directly linking a pano ID is not
// possible. Angles are in degrees unless radians is set.
func BuildPermalink(lat, lon, heading, pitch, mapZoom float64, radians bool) string {
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
	}
	return fmt.Sprintf("https://www.bing.com/maps?cp=%f%%7E%f&lvl=%f&v=2&sV=1&pi=%f&style=x&dir=%f",
		lat, lon, mapZoom, pitch, heading)
}

// generateTileURLs returns the tile URLs of every face, in quadrant
// order within each face. Face IDs on the wire are 1-based base 4,
// subdivision keys are base 4 strings of length zoom.
func generateTileURLs(panoid int64, zoom int) [][]string {
	panoidBase4 := padLeft(toBase4(panoid), 16)
	subdivs := 1 << (2 * zoom) // 4^zoom
	faces := make([][]string, 6)
	for faceID := 0; faceID < 6; faceID++ {
		faceBase4 := padLeft(toBase4(int64(faceID)+1), 2)
		urls := make([]string, subdivs)
		for subdiv := 0; subdiv < subdivs; subdiv++ {
			key := faceBase4
			if zoom > 0 {
				key += padLeft(toBase4(int64(subdiv)), zoom)
			}
			urls[subdiv] = fmt.Sprintf(tileURL, panoidBase4, key)
		}
		faces[faceID] = urls
	}
	return faces
}

func toBase4(n int64) string {
	return strconv.FormatInt(n, 4)
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
