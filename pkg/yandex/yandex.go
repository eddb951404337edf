// Package yandex is a client for Yandex panoramas.
//
// Yandex panoramas are equirectangular and tiled on a per-panorama
// grid whose tile size and zoom levels are reported by the metadata
// API.
package yandex

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/pano"
	"github.com/streetlevel/streetlevel/pkg/stitch"
)

const (
	apiURL  = "https://api-maps.yandex.ru/services/panoramas/1.x/?l=stv&lang=en_US&origin=userAction&provider=streetview"
	tileURL = "https://pano.maps.yandex.net/%s/%d.%d.%d"
)

// Panorama is the metadata of one Yandex panorama.
type Panorama struct {
	ID         string
	Lat        float64
	Lon        float64
	Heading    float64 // radians
	Height     float64 // meters above sea level
	StreetName string

	ImageID    string
	TileSize   pano.Size
	ImageSizes []pano.Size // one entry per zoom level, 0 is largest

	Links []pano.Link
	Date  int64 // unix timestamp encoded in the pano ID
}

// FindPanorama searches for a panorama near the given point. Returns
// nil if there is no coverage there.
func FindPanorama(ctx context.Context, c *fetch.Client, lat, lon float64) (*Panorama, error) {
	url := fmt.Sprintf("%s&ll=%f,%f", apiURL, lon, lat)
	return findPanorama(ctx, c, url)
}

// FindPanoramaByID fetches metadata of a specific panorama. Returns nil
// if no panorama with this ID exists.
func FindPanoramaByID(ctx context.Context, c *fetch.Client, panoid string) (*Panorama, error) {
	url := fmt.Sprintf("%s&oid=%s", apiURL, panoid)
	return findPanorama(ctx, c, url)
}

func findPanorama(ctx context.Context, c *fetch.Client, url string) (*Panorama, error) {
	var resp apiResponse
	if err := c.GetJSON(ctx, url, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, nil
	}
	return parsePanorama(&resp.Data)
}

// GetPanorama downloads a panorama and stitches it. Zoom selects the
// image size: 0 is highest, len(ImageSizes)-1 is lowest; out-of-range
// values are clamped.
func GetPanorama(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) (image.Image, error) {
	zoom, err := validateZoom(p, zoom)
	if err != nil {
		return nil, err
	}
	size := p.ImageSizes[zoom]
	tiles, err := c.DownloadTiles(ctx, generateTileList(p, zoom))
	if err != nil {
		return nil, err
	}
	return stitch.Equirectangular(tiles, size.X, size.Y, p.TileSize.X, p.TileSize.Y)
}

// BuildPermalink creates a link to the given panorama on Yandex Maps.
func BuildPermalink(p *Panorama) string {
	return fmt.Sprintf("https://yandex.com/maps/?panorama%%5Bpoint%%5D=%f%%2C%f", p.Lon, p.Lat)
}

func validateZoom(p *Panorama, zoom int) (int, error) {
	if len(p.ImageSizes) == 0 {
		return 0, fmt.Errorf("panorama %s has no image size metadata", p.ID)
	}
	if zoom < 0 {
		zoom = 0
	}
	if zoom > len(p.ImageSizes)-1 {
		zoom = len(p.ImageSizes) - 1
	}
	return zoom, nil
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
				URL: fmt.Sprintf(tileURL, p.ImageID, zoom, x, y),
			})
		}
	}
	return tiles
}
