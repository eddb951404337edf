package yandex

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

// flexInt decodes a JSON number that may arrive quoted or bare; the
// panorama API is not consistent about it across endpoint revisions.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// Wire format of the panorama API.
type apiResponse struct {
	Status string   `json:"status"`
	Data   panoData `json:"data"`
}

type panoData struct {
	Data struct {
		PanoramaID string `json:"panoramaId"`
		Images     struct {
			ImageID string `json:"imageId"`
			Tiles   struct {
				Width  flexInt `json:"width"`
				Height flexInt `json:"height"`
			} `json:"Tiles"`
			Zooms []struct {
				Level  flexInt `json:"level"`
				Width  flexInt `json:"width"`
				Height flexInt `json:"height"`
			} `json:"Zooms"`
		} `json:"Images"`
		Point struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat, height
			Name        string    `json:"name"`
		} `json:"Point"`
		EquirectangularProjection struct {
			Origin []float64 `json:"Origin"` // heading first
		} `json:"EquirectangularProjection"`
	} `json:"Data"`
	Annotation struct {
		Thoroughfares []struct {
			Connection struct {
				Href string `json:"href"`
			} `json:"Connection"`
			Direction []float64 `json:"Direction"`
		} `json:"Thoroughfares"`
	} `json:"Annotation"`
}

var panoidFromHref = regexp.MustCompile(`oid=(.*?)&`)

func parsePanorama(d *panoData) (*Panorama, error) {
	data := &d.Data
	if len(data.Point.Coordinates) < 2 {
		return nil, fmt.Errorf("panorama %s: missing coordinates", data.PanoramaID)
	}

	sizes, err := parseImageSizes(d)
	if err != nil {
		return nil, err
	}

	p := &Panorama{
		ID:         data.PanoramaID,
		Lat:        data.Point.Coordinates[1],
		Lon:        data.Point.Coordinates[0],
		StreetName: data.Point.Name,
		ImageID:    data.Images.ImageID,
		TileSize:   pano.Size{X: int(data.Images.Tiles.Width), Y: int(data.Images.Tiles.Height)},
		ImageSizes: sizes,
		Date:       dateFromPanoid(data.PanoramaID),
	}
	if len(data.Point.Coordinates) > 2 {
		p.Height = data.Point.Coordinates[2]
	}
	if len(data.EquirectangularProjection.Origin) > 0 {
		p.Heading = data.EquirectangularProjection.Origin[0] * math.Pi / 180
	}

	for _, t := range d.Annotation.Thoroughfares {
		m := panoidFromHref.FindStringSubmatch(t.Connection.Href)
		if m == nil || len(t.Direction) == 0 {
			continue
		}
		p.Links = append(p.Links, pano.Link{
			ID:        m[1],
			Direction: t.Direction[0] * math.Pi / 180,
		})
	}
	return p, nil
}

// parseImageSizes orders zoom sizes by their reported level, 0 first.
func parseImageSizes(d *panoData) ([]pano.Size, error) {
	zooms := d.Data.Images.Zooms
	sizes := make([]pano.Size, len(zooms))
	for _, z := range zooms {
		level := int(z.Level)
		if level < 0 || level >= len(zooms) {
			return nil, fmt.Errorf("zoom level %d out of range", level)
		}
		sizes[level] = pano.Size{X: int(z.Width), Y: int(z.Height)}
	}
	return sizes, nil
}

// dateFromPanoid extracts the capture timestamp from a pano ID of the
// form "<oid>_<lon>_<lat>_<unix>". Returns 0 if the ID has a different
// shape.
func dateFromPanoid(panoid string) int64 {
	parts := strings.Split(panoid, "_")
	ts, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}
