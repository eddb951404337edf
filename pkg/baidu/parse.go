package baidu

import (
	"math"

	"github.com/streetlevel/streetlevel/pkg/geo"
	"github.com/streetlevel/streetlevel/pkg/pano"
)

type apiResponse struct {
	Result struct {
		Error int `json:"error"`
	} `json:"result"`
	Content []rawPanorama `json:"content"`
}

type rawPanorama struct {
	ID      string  `json:"ID"`
	X       float64 `json:"X"` // BD09MC * 100
	Y       float64 `json:"Y"`
	Z       float64 `json:"Z"`
	Heading float64 `json:"Heading"` // degrees
	Pitch   float64 `json:"Pitch"`
	Roll    float64 `json:"Roll"`
	Rname   string  `json:"Rname"`

	ImgLayer []struct {
		BlockX int `json:"BlockX"`
		BlockY int `json:"BlockY"`
	} `json:"ImgLayer"`
}

func parsePanoramaResponse(resp *apiResponse) (*Panorama, error) {
	if resp.Result.Error != 0 {
		return nil, nil
	}
	if len(resp.Content) == 0 {
		return nil, nil
	}

	raw := &resp.Content[0]
	x, y := raw.X/100.0, raw.Y/100.0
	lat, lon := geo.Bd09mcToWgs84(x, y)

	p := &Panorama{
		ID:         raw.ID,
		X:          x,
		Y:          y,
		Lat:        lat,
		Lon:        lon,
		Elevation:  raw.Z,
		Heading:    raw.Heading * math.Pi / 180,
		Pitch:      raw.Pitch * math.Pi / 180,
		Roll:       raw.Roll * math.Pi / 180,
		StreetName: raw.Rname,
		TileSize:   pano.Size{X: tileSize, Y: tileSize},
		Date:       dateFromPanoid(raw.ID),
	}
	for _, layer := range raw.ImgLayer {
		p.ImageSizes = append(p.ImageSizes, pano.Size{
			X: layer.BlockX * tileSize,
			Y: layer.BlockY * tileSize,
		})
	}
	return p, nil
}

// dateFromPanoid reads the capture timestamp embedded in positions
// 10-21 of the pano ID as YYMMDDhhmmss.
func dateFromPanoid(panoid string) string {
	if len(panoid) < 22 {
		return ""
	}
	return "20" + panoid[10:22]
}
