package naver

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

const overlayPrefix = "https://panorama.map.naver.com"

// flexInt decodes a JSON number that may arrive quoted or bare; the
// metadata API quotes its enum-ish fields inconsistently.
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

type metadataResponse struct {
	Errors json.RawMessage `json:"errors"`
	Basic  struct {
		ID             string      `json:"id"`
		Latitude       float64     `json:"latitude"`
		Longitude      float64     `json:"longitude"`
		CameraAngle    []float64 `json:"camera_angle"`
		DtlType        flexInt   `json:"dtl_type"`
		TimelineID     string    `json:"timeline_id"`
		PhotoDate      string    `json:"photodate"`
		Latest         bool      `json:"latest"`
		Description    string    `json:"description"`
		Title          string    `json:"title"`
		LandAltitude   float64   `json:"land_altitude"`
		CameraAltitude float64   `json:"camera_altitude"`
		Links          [][]any   `json:"links"`
		Image          struct {
			Segment  flexInt    `json:"segment"`
			Overlays [][]string `json:"overlays"`
		} `json:"image"`
	} `json:"basic"`
}

type nearbyResponse struct {
	Error    json.RawMessage `json:"error"`
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			ID             string    `json:"id"`
			CameraAngle    []float64 `json:"camera_angle"`
			PhotoDate      string    `json:"photodate"`
			Description    string    `json:"description"`
			Title          string    `json:"title"`
			LandAltitude   float64   `json:"land_altitude"`
			CameraAltitude float64   `json:"camera_altitude"`
			Type           flexInt   `json:"type"`
		} `json:"properties"`
	} `json:"features"`
}

type aroundResponse struct {
	Errors json.RawMessage `json:"errors"`
	Around struct {
		Panoramas map[string][][]any `json:"panoramas"`
	} `json:"around"`
}

type timelineResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Timeline struct {
		Panoramas [][]any `json:"panoramas"`
	} `json:"timeline"`
}

func parsePanorama(resp *metadataResponse) *Panorama {
	b := &resp.Basic
	elevation := b.LandAltitude * 0.01

	p := &Panorama{
		ID:           b.ID,
		Lat:          b.Latitude,
		Lon:          b.Longitude,
		Heading:      cameraHeading(b.CameraAngle),
		MaxZoom:      int(b.Image.Segment) / 2,
		TimelineID:   b.TimelineID,
		Date:         parseDate(b.PhotoDate),
		IsLatest:     b.Latest,
		Description:  b.Description,
		Title:        b.Title,
		Type:         PanoramaType(b.DtlType),
		Elevation:    elevation,
		CameraHeight: b.CameraAltitude*0.01 - elevation,
	}

	if len(b.Image.Overlays) > 1 && len(b.Image.Overlays[1]) > 1 {
		p.Overlay = &Overlay{
			Source: overlayPrefix + b.Image.Overlays[1][0],
			Mask:   overlayPrefix + b.Image.Overlays[1][1],
		}
	}
	p.Links = parseLinks(b.Links)
	return p
}

func parseNearby(resp *nearbyResponse) *Panorama {
	f := &resp.Features[0]
	elevation := f.Properties.LandAltitude * 0.01

	p := &Panorama{
		ID:           f.Properties.ID,
		Heading:      cameraHeading(f.Properties.CameraAngle),
		Date:         parseDate(f.Properties.PhotoDate),
		Description:  f.Properties.Description,
		Title:        f.Properties.Title,
		Type:         PanoramaType(f.Properties.Type),
		Elevation:    elevation,
		CameraHeight: f.Properties.CameraAltitude*0.01 - elevation,
	}
	if len(f.Geometry.Coordinates) > 1 {
		p.Lon = f.Geometry.Coordinates[0]
		p.Lat = f.Geometry.Coordinates[1]
	}
	return p
}

func parseNeighbors(resp *aroundResponse, parentID string) *Neighbors {
	return &Neighbors{
		Street: parseNeighborSection(resp.Around.Panoramas["street"], parentID),
		Other:  parseNeighborSection(resp.Around.Panoramas["air"], parentID),
	}
}

// parseNeighborSection reads one positional-array section of the
// around response. The first entry is a header; entries are
// [id, lon, lat, camera altitude, land altitude] with altitudes in
// centimeters.
func parseNeighborSection(entries [][]any, parentID string) []Panorama {
	if len(entries) < 2 {
		return nil
	}
	panos := make([]Panorama, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		if len(entry) < 5 {
			continue
		}
		id := toString(entry[0])
		if id == parentID {
			continue
		}
		elevation := toFloat(entry[4]) * 0.01
		panos = append(panos, Panorama{
			ID:           id,
			Lon:          toFloat(entry[1]),
			Lat:          toFloat(entry[2]),
			Elevation:    elevation,
			CameraHeight: toFloat(entry[3])*0.01 - elevation,
		})
	}
	return panos
}

// parseHistorical reads the timeline response. The first entry is a
// header; entries are [id, lon, lat, type, date].
func parseHistorical(resp *timelineResponse, parentID string) []Panorama {
	entries := resp.Timeline.Panoramas
	if len(entries) < 2 {
		return nil
	}
	panos := make([]Panorama, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		if len(entry) < 5 {
			continue
		}
		id := toString(entry[0])
		if id == parentID {
			continue
		}
		panos = append(panos, Panorama{
			ID:   id,
			Lon:  toFloat(entry[1]),
			Lat:  toFloat(entry[2]),
			Type: PanoramaType(toInt(entry[3])),
			Date: parseTimelineDate(toString(entry[4])),
		})
	}
	return panos
}

// parseLinks reads the links field, whose first entry is a header and
// whose remaining entries are [id, title, angle, _, lon, lat] with the
// angle in degrees as a string.
func parseLinks(raw [][]any) []pano.Link {
	if len(raw) < 2 {
		return nil
	}
	links := make([]pano.Link, 0, len(raw)-1)
	for _, entry := range raw[1:] {
		if len(entry) < 3 {
			continue
		}
		links = append(links, pano.Link{
			ID:        toString(entry[0]),
			Direction: toFloat(entry[2]) * math.Pi / 180,
		})
	}
	return links
}

func cameraHeading(angle []float64) float64 {
	if len(angle) < 2 {
		return 0
	}
	return angle[1] * math.Pi / 180
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimelineDate(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05.0", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
