package streetview

import (
	"fmt"
	"math"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

// at walks a nested positional array by index path. Any index out of
// range or non-array node along the way fails the lookup.
func at(node any, path ...int) (any, bool) {
	for _, idx := range path {
		arr, ok := node.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return nil, false
		}
		node = arr[idx]
	}
	return node, true
}

func numAt(node any, path ...int) (float64, bool) {
	v, ok := at(node, path...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func intAt(node any, path ...int) (int, bool) {
	f, ok := numAt(node, path...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func strAt(node any, path ...int) (string, bool) {
	v, ok := at(node, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// parsePanoramaMessage reads one panorama message as returned by both
// the search and the lookup endpoint.
func parsePanoramaMessage(msg any) (*Panorama, error) {
	id, ok := strAt(msg, 1, 1)
	if !ok {
		return nil, fmt.Errorf("panorama message has no ID")
	}
	lat, latOK := numAt(msg, 5, 0, 1, 0, 2)
	lon, lonOK := numAt(msg, 5, 0, 1, 0, 3)
	if !latOK || !lonOK {
		return nil, fmt.Errorf("panorama %s has no position", id)
	}

	p := &Panorama{ID: id, Lat: lat, Lon: lon}

	if heading, ok := numAt(msg, 5, 0, 1, 2, 0); ok {
		p.Heading = heading * math.Pi / 180
	}
	if pitch, ok := numAt(msg, 5, 0, 1, 2, 1); ok {
		p.Pitch = (90 - pitch) * math.Pi / 180
	}
	if roll, ok := numAt(msg, 5, 0, 1, 2, 2); ok {
		p.Roll = roll * math.Pi / 180
	}
	if elevation, ok := numAt(msg, 5, 0, 1, 1, 0); ok {
		p.Elevation = elevation
	}
	if country, ok := strAt(msg, 5, 0, 1, 4); ok {
		p.CountryCode = country
	}
	if source, ok := strAt(msg, 6, 5, 2); ok {
		p.Source = source
	}
	p.Date = parseDate(msg)
	p.ImageSizes, p.TileSize = parseImageSizes(msg)
	p.Neighbors, p.Historical = parseOtherPanoramas(msg)
	return p, nil
}

func parseDate(msg any) string {
	year, yearOK := intAt(msg, 6, 7, 0)
	month, monthOK := intAt(msg, 6, 7, 1)
	if !yearOK || !monthOK {
		return ""
	}
	return fmt.Sprintf("%d-%d", year, month)
}

func parseImageSizes(msg any) ([]pano.Size, pano.Size) {
	levels, ok := at(msg, 2, 3, 0)
	if !ok {
		return nil, pano.Size{}
	}
	arr, ok := levels.([]any)
	if !ok {
		return nil, pano.Size{}
	}
	sizes := make([]pano.Size, 0, len(arr))
	for _, level := range arr {
		h, hOK := intAt(level, 0, 0)
		w, wOK := intAt(level, 0, 1)
		if !hOK || !wOK {
			continue
		}
		sizes = append(sizes, pano.Size{X: w, Y: h})
	}
	tw, _ := intAt(msg, 2, 3, 1, 0)
	th, _ := intAt(msg, 2, 3, 1, 1)
	return sizes, pano.Size{X: tw, Y: th}
}

// parseOtherPanoramas splits the linked panorama list into spatial
// neighbors and historical captures of the same spot. Historical
// entries reference the list by index and carry their own date.
func parseOtherPanoramas(msg any) (neighbors, historical []Panorama) {
	list, ok := at(msg, 5, 0, 3, 0)
	if !ok {
		return nil, nil
	}
	arr, ok := list.([]any)
	if !ok {
		return nil, nil
	}

	historicalIdx := map[int]string{}
	if rawHist, ok := at(msg, 5, 0, 8); ok {
		if histArr, ok := rawHist.([]any); ok {
			for _, h := range histArr {
				idx, idxOK := intAt(h, 0)
				year, yearOK := intAt(h, 1, 0)
				month, monthOK := intAt(h, 1, 1)
				if idxOK && yearOK && monthOK {
					historicalIdx[idx] = fmt.Sprintf("%d-%d", year, month)
				}
			}
		}
	}

	for i, entry := range arr {
		if i == 0 {
			// first entry is the panorama itself
			continue
		}
		id, idOK := strAt(entry, 0, 1)
		if !idOK {
			continue
		}
		p := Panorama{ID: id}
		if lat, ok := numAt(entry, 2, 0, 2); ok {
			p.Lat = lat
		}
		if lon, ok := numAt(entry, 2, 0, 3); ok {
			p.Lon = lon
		}
		if date, isHistorical := historicalIdx[i]; isHistorical {
			p.Date = date
			historical = append(historical, p)
		} else {
			neighbors = append(neighbors, p)
		}
	}
	return neighbors, historical
}

// parseCoverageTile reads the panorama list of one coverage tile
// response. Tiles without coverage have an empty or missing list.
func parseCoverageTile(resp []any) ([]Panorama, error) {
	list, ok := at(resp, 1, 1)
	if !ok {
		return nil, nil
	}
	arr, ok := list.([]any)
	if !ok {
		return nil, nil
	}
	panos := make([]Panorama, 0, len(arr))
	for _, entry := range arr {
		id, idOK := strAt(entry, 0, 0, 1)
		lat, latOK := numAt(entry, 0, 2, 0, 2)
		lon, lonOK := numAt(entry, 0, 2, 0, 3)
		if !idOK || !latOK || !lonOK {
			continue
		}
		panos = append(panos, Panorama{ID: id, Lat: lat, Lon: lon})
	}
	return panos, nil
}
