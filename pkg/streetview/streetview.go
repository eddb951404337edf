// Package streetview is a client for Google Street View panoramas.
//
// Metadata comes from the internal photometa endpoints, which respond
// with deeply nested positional JSON arrays rather than objects; the
// parser walks them with index paths.
package streetview

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/geo"
	"github.com/streetlevel/streetlevel/pkg/pano"
	"github.com/streetlevel/streetlevel/pkg/stitch"
)

const (
	officialTileURL   = "https://cbk0.google.com/cbk?output=tile&panoid=%s&zoom=%d&x=%d&y=%d"
	thirdPartyTileURL = "https://lh3.ggpht.com/p/%s=x%d-y%d-z%d"
)

// Panorama is the metadata of one Street View panorama.
type Panorama struct {
	ID  string
	Lat float64
	Lon float64

	Heading float64 // radians
	Pitch   float64 // radians
	Roll    float64 // radians

	ImageSizes []pano.Size // per zoom level, 0 is smallest
	TileSize   pano.Size

	Date        string // YYYY-M, e.g. "2021-7"
	Elevation   float64
	CountryCode string
	Source      string

	Neighbors  []Panorama
	Historical []Panorama
}

// FindPanorama searches for a panorama within the given radius (meters)
// of a point. Returns nil if there is no coverage there. Third-party
// panoramas are only returned when searchThirdParty is set.
func FindPanorama(ctx context.Context, c *fetch.Client, lat, lon float64, radius int, locale string, searchThirdParty bool) (*Panorama, error) {
	url := buildFindPanoramaURL(lat, lon, radius, locale, searchThirdParty)
	var resp []any
	if err := c.GetJSON(ctx, url, &resp, unwrapJSONP); err != nil {
		return nil, err
	}
	status, ok := intAt(resp, 0, 0, 0)
	if !ok || status != 0 {
		return nil, nil
	}
	msg, ok := at(resp, 0, 1)
	if !ok {
		return nil, fmt.Errorf("unexpected search response shape")
	}
	return parsePanoramaMessage(msg)
}

// FindPanoramaByID fetches metadata of a specific panorama. Returns nil
// if no panorama with this ID exists.
func FindPanoramaByID(ctx context.Context, c *fetch.Client, panoid, locale string) (*Panorama, error) {
	url := buildFindPanoramaByIDURL(panoid, locale)
	var resp []any
	if err := c.GetJSON(ctx, url, &resp, stripXSSIPrefix); err != nil {
		return nil, err
	}
	status, ok := intAt(resp, 1, 0, 0, 0)
	if !ok {
		return nil, fmt.Errorf("unexpected photometa response shape")
	}
	switch status {
	case 1:
		// found
	case 2:
		return nil, nil
	default:
		return nil, fmt.Errorf("photometa returned status %d", status)
	}
	msg, ok := at(resp, 1, 0)
	if !ok {
		return nil, fmt.Errorf("unexpected photometa response shape")
	}
	return parsePanoramaMessage(msg)
}

// GetCoverageTile returns the panoramas on one zoom 17 map tile. The
// endpoint also surfaces some panoramas, usually older ones, that the
// search endpoint no longer returns.
func GetCoverageTile(ctx context.Context, c *fetch.Client, tileX, tileY int) ([]Panorama, error) {
	var resp []any
	if err := c.GetJSON(ctx, buildCoverageTileURL(tileX, tileY), &resp, stripXSSIPrefix); err != nil {
		return nil, err
	}
	return parseCoverageTile(resp)
}

// GetCoverageTileByLatLon returns the panoramas on the zoom 17 map tile
// containing the given point.
func GetCoverageTileByLatLon(ctx context.Context, c *fetch.Client, lat, lon float64) ([]Panorama, error) {
	x, y := geo.Wgs84ToTile(lat, lon, 17)
	return GetCoverageTile(ctx, c, x, y)
}

// GetPanorama downloads a panorama and stitches it. Zoom selects the
// image size: 0 is lowest, len(ImageSizes)-1 the highest; out-of-range
// values are clamped.
func GetPanorama(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) (image.Image, error) {
	if len(p.ImageSizes) == 0 {
		return nil, fmt.Errorf("panorama %s has no image size metadata", p.ID)
	}
	if zoom < 0 {
		zoom = 0
	}
	if zoom > len(p.ImageSizes)-1 {
		zoom = len(p.ImageSizes) - 1
	}
	size := p.ImageSizes[zoom]
	tiles, err := c.DownloadTiles(ctx, generateTileList(p, zoom))
	if err != nil {
		return nil, err
	}
	return stitch.Equirectangular(tiles, size.X, size.Y, p.TileSize.X, p.TileSize.Y)
}

// BuildPermalink creates a Google Maps link opening the given panorama.
// Angles are in radians unless radians is false.
func BuildPermalink(panoid string, heading, pitch, fov float64, radians bool) string {
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
		fov = fov * 180 / math.Pi
	}
	return fmt.Sprintf(
		"https://www.google.com/maps/@?api=1&map_action=pano&pano=%s&heading=%f&pitch=%f&fov=%f",
		panoid, heading, pitch, fov)
}

func generateTileList(p *Panorama, zoom int) []pano.Tile {
	size := p.ImageSizes[zoom]
	cols := int(math.Ceil(float64(size.X) / float64(p.TileSize.X)))
	rows := int(math.Ceil(float64(size.Y) / float64(p.TileSize.Y)))
	thirdParty := IsThirdPartyPanoid(p.ID)

	tiles := make([]pano.Tile, 0, cols*rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			var url string
			if thirdParty {
				url = fmt.Sprintf(thirdPartyTileURL, p.ID, x, y, zoom)
			} else {
				url = fmt.Sprintf(officialTileURL, p.ID, zoom, x, y)
			}
			tiles = append(tiles, pano.Tile{X: x, Y: y, URL: url})
		}
	}
	return tiles
}
