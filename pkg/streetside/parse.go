package streetside

import (
	"math"
	"time"
)

// rawPanorama is the wire format of one entry in the bubble metadata
// response. The first array element only carries the elapsed time and
// decodes to a zero ID.
type rawPanorama struct {
	ID        int64    `json:"id"`
	Lat       float64  `json:"la"`
	Lon       float64  `json:"lo"`
	Date      string   `json:"cd"`
	Next      int64    `json:"ne"`
	Previous  int64    `json:"pr"`
	Elevation float64  `json:"al"`
	Heading   *float64 `json:"he"`
	Pitch     *float64 `json:"pi"`
	Roll      *float64 `json:"ro"`
}

// Bing returns dates like "4/13/2017 1:42:05 PM", without leading
// zeros.
const dateLayout = "1/2/2006 3:04:05 PM"

func parsePanoramas(raw []rawPanorama) ([]Panorama, error) {
	panos := make([]Panorama, 0, len(raw))
	for _, r := range raw {
		if r.ID == 0 {
			// elapsed-time header object
			continue
		}
		p, err := parsePanorama(r)
		if err != nil {
			return nil, err
		}
		panos = append(panos, p)
	}
	return panos, nil
}

func parsePanorama(r rawPanorama) (Panorama, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return Panorama{}, err
	}
	return Panorama{
		ID:        r.ID,
		Lat:       r.Lat,
		Lon:       r.Lon,
		Date:      date,
		Next:      r.Next,
		Previous:  r.Previous,
		Elevation: r.Elevation,
		Heading:   degPtrToRad(r.Heading),
		Pitch:     degPtrToRad(r.Pitch),
		Roll:      degPtrToRad(r.Roll),
	}, nil
}

func degPtrToRad(deg *float64) float64 {
	if deg == nil {
		return 0
	}
	return *deg * math.Pi / 180
}
