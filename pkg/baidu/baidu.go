// Package baidu is a client for Baidu panoramas.
//
// The metadata API addresses locations in BD09MC, Baidu's Mercator
// projection; search input in other coordinate systems is converted
// first. Panoramas are equirectangular with 256px tiles.
package baidu

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
	searchURL = "https://mapsv0.bdimg.com/?qt=qsdata&x=%f&y=%f&action=1"
	lookupURL = "https://mapsv0.bdimg.com/?qt=sdata&pc=1&sid=%s"
	tileURL   = "https://mapsv1.bdimg.com/?qt=pdata&sid=%s&pos=%d_%d&z=%d"

	tileSize = 256
)

// Crs identifies the coordinate system of a search position.
type Crs int

const (
	Wgs84 Crs = iota
	Bd09
	Bd09mc
	Gcj02
)

// Panorama is the metadata of one Baidu panorama.
type Panorama struct {
	ID  string
	Lat float64 // WGS84
	Lon float64
	X   float64 // BD09MC
	Y   float64

	Elevation float64
	Heading   float64 // radians
	Pitch     float64 // radians
	Roll      float64 // radians

	ImageSizes []pano.Size // per zoom level, 0 is smallest
	TileSize   pano.Size

	StreetName string
	Date       string // YYYYMMDDhhmmss from the pano ID
}

// FindPanorama searches for a panorama near the given point, passed in
// the given coordinate system as (lat, lon) or (x, y). Returns nil if
// there is no coverage there.
func FindPanorama(ctx context.Context, c *fetch.Client, coord1, coord2 float64, crs Crs) (*Panorama, error) {
	x, y, err := toBd09mc(coord1, coord2, crs)
	if err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(searchURL, x, y), &resp, nil); err != nil {
		return nil, err
	}
	return parsePanoramaResponse(&resp)
}

// FindPanoramaByID fetches metadata of a specific panorama. Returns nil
// if no panorama with this ID exists.
func FindPanoramaByID(ctx context.Context, c *fetch.Client, panoid string) (*Panorama, error) {
	var resp apiResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(lookupURL, panoid), &resp, nil); err != nil {
		return nil, err
	}
	return parsePanoramaResponse(&resp)
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

// BuildPermalink creates a Baidu Maps link to the given panorama.
// Angles are in radians unless radians is false.
func BuildPermalink(panoid string, heading, pitch float64, radians bool) string {
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
	}
	return fmt.Sprintf("https://map.baidu.com/#panoid=%s&panotype=street&heading=%f&pitch=%f&tn=B_NORMAL_MAP",
		panoid, heading, pitch)
}

func toBd09mc(coord1, coord2 float64, crs Crs) (x, y float64, err error) {
	switch crs {
	case Wgs84:
		x, y = geo.Wgs84ToBd09mc(coord1, coord2)
	case Gcj02:
		x, y = geo.Gcj02ToBd09mc(coord1, coord2)
	case Bd09:
		x, y = geo.Bd09ToBd09mc(coord1, coord2)
	case Bd09mc:
		x, y = coord1, coord2
	default:
		return 0, 0, fmt.Errorf("unsupported CRS %d", crs)
	}
	return x, y, nil
}

func generateTileList(p *Panorama, zoom int) []pano.Tile {
	size := p.ImageSizes[zoom]
	cols := int(math.Ceil(float64(size.X) / float64(p.TileSize.X)))
	rows := int(math.Ceil(float64(size.Y) / float64(p.TileSize.Y)))

	tiles := make([]pano.Tile, 0, cols*rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			tiles = append(tiles, pano.Tile{
				X:   x,
				Y:   y,
				URL: fmt.Sprintf(tileURL, p.ID, y, x, zoom+1),
			})
		}
	}
	return tiles
}
