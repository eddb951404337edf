// Package kakao is a client for Kakao Road View.
//
// Road View panoramas are equirectangular with three fixed sizes:
// a single thumbnail at zoom 0, an 8x4 grid at zoom 1 and a 16x8 HD
// grid at zoom 2. Whether the HD version exists is not part of the
// metadata, so it is probed with a HEAD request.
package kakao

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	_ "image/jpeg"

	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/pano"
	"github.com/streetlevel/streetlevel/pkg/stitch"
)

const (
	searchURL  = "https://rv.map.kakao.com/roadview-search/v2/nodes?PX=%f&PY=%f&RAD=%d&PAGE_SIZE=%d&INPUT=wgs&TYPE=w&SERVICE=glpano"
	lookupURL  = "https://rv.map.kakao.com/roadview-search/v2/node/%d?SERVICE=glpano"
	panoPrefix = "https://map.daumcdn.net/map_roadview"

	tileSize = 512
	maxZoom  = 2

	// radius and limit the KakaoMap client uses when fetching
	// neighboring panoramas
	neighborRadius = 35
	neighborLimit  = 50
)

var (
	panoCols = [3]int{1, 8, 16}
	panoRows = [3]int{1, 4, 8}
)

// Panorama is the metadata of one Road View panorama.
type Panorama struct {
	ID         int64
	Lat        float64
	Lon        float64
	Heading    float64 // radians
	ImagePath  string
	Date       time.Time
	StreetName string
	Address    string

	Neighbors  []Panorama
	Historical []Panorama
}

// FindPanoramas searches for panoramas within a radius around a point.
// Radius and limit max out at 100. An empty result is not an error.
func FindPanoramas(ctx context.Context, c *fetch.Client, lat, lon float64, radius, limit int) ([]Panorama, error) {
	var resp apiResponse
	url := fmt.Sprintf(searchURL, lon, lat, radius, limit)
	if err := c.GetJSON(ctx, url, &resp, nil); err != nil {
		return nil, err
	}
	if resp.StreetView.Cnt == 0 {
		return nil, nil
	}
	panos := make([]Panorama, 0, len(resp.StreetView.StreetList))
	for _, raw := range resp.StreetView.StreetList {
		p, err := parsePanorama(&raw)
		if err != nil {
			return nil, err
		}
		panos = append(panos, *p)
	}
	return panos, nil
}

// FindPanoramaByID fetches metadata of a specific panorama. Returns nil
// if no panorama with this ID exists. If neighbors is set, a second
// request searches around the panorama's position and fills in the
// Neighbors list.
func FindPanoramaByID(ctx context.Context, c *fetch.Client, panoid int64, neighbors bool) (*Panorama, error) {
	var resp apiResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(lookupURL, panoid), &resp, nil); err != nil {
		return nil, err
	}
	if resp.StreetView.Cnt == 0 || resp.StreetView.Street == nil {
		return nil, nil
	}
	p, err := parsePanorama(resp.StreetView.Street)
	if err != nil || !neighbors {
		return p, err
	}
	p.Neighbors, err = FindPanoramas(ctx, c, p.Lat, p.Lon, neighborRadius, neighborLimit)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPanorama downloads a panorama and stitches it. Zoom 0 is the
// thumbnail, 2 the highest resolution; if the HD version does not
// exist, zoom 2 silently falls back to 1.
func GetPanorama(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) (image.Image, error) {
	if zoom < 0 || zoom > maxZoom {
		return nil, fmt.Errorf("zoom must be between 0 and %d, got %d", maxZoom, zoom)
	}
	if p.ImagePath == "" {
		return nil, fmt.Errorf("panorama %d has no image path", p.ID)
	}

	if zoom == 0 {
		data, err := c.Get(ctx, fmt.Sprintf("%s%s.jpg", panoPrefix, p.ImagePath))
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode thumbnail: %w", err)
		}
		return img, nil
	}

	if zoom == maxZoom {
		ok, err := hdExists(ctx, c, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			zoom = 1
		}
	}

	tiles, err := c.DownloadTiles(ctx, generateTileList(p, zoom))
	if err != nil {
		return nil, err
	}
	return stitch.Equirectangular(tiles,
		panoCols[zoom]*tileSize, panoRows[zoom]*tileSize, tileSize, tileSize)
}

// BuildPermalink creates a KakaoMap link to a panorama. Either the pano
// ID, or a WCongnamul position, or both must be set; heading and pitch
// are in degrees unless radians is set.
func BuildPermalink(id int64, wcongX, wcongY, heading, pitch float64, radians bool) (string, error) {
	if id == 0 && wcongX == 0 && wcongY == 0 {
		return "", fmt.Errorf("a location, a pano ID, or both must be passed")
	}
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
	}
	return fmt.Sprintf("https://map.kakao.com/?map_type=TYPE_MAP&map_attribute=ROADVIEW&panoid=%d"+
		"&urlX=%f&urlY=%f&pan=%f&tilt=%f&zoom=0&urlLevel=3", id, wcongX, wcongY, heading, pitch), nil
}

// hdExists probes the first HD tile. Some panoramas have no zoom 2
// imagery and nothing in the metadata says so.
func hdExists(ctx context.Context, c *fetch.Client, p *Panorama) (bool, error) {
	url := fmt.Sprintf("%s%s_HD1/%s_HD1_001.jpg", panoPrefix, p.ImagePath, imageFileName(p))
	return c.Head(ctx, url)
}

func generateTileList(p *Panorama, zoom int) []pano.Tile {
	name := imageFileName(p)
	tiles := make([]pano.Tile, 0, panoCols[zoom]*panoRows[zoom])
	for y := 0; y < panoRows[zoom]; y++ {
		for x := 0; x < panoCols[zoom]; x++ {
			n := y*panoCols[zoom] + x + 1
			var url string
			if zoom == maxZoom {
				url = fmt.Sprintf("%s%s_HD1/%s_HD1_%03d.jpg", panoPrefix, p.ImagePath, name, n)
			} else {
				url = fmt.Sprintf("%s%s/%s_%02d.jpg", panoPrefix, p.ImagePath, name, n)
			}
			tiles = append(tiles, pano.Tile{X: x, Y: y, URL: url})
		}
	}
	return tiles
}

// imageFileName is the last segment of the image path, which every
// tile file name is derived from.
func imageFileName(p *Panorama) string {
	if i := strings.LastIndexByte(p.ImagePath, '/'); i >= 0 {
		return p.ImagePath[i+1:]
	}
	return p.ImagePath
}
