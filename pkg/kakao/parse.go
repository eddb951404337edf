package kakao

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type apiResponse struct {
	StreetView struct {
		Cnt        int           `json:"cnt"`
		Street     *rawPanorama  `json:"street"`
		StreetList []rawPanorama `json:"streetList"`
	} `json:"street_view"`
}

type rawPanorama struct {
	ID         int64         `json:"id"`
	WgsX       float64       `json:"wgsx"`
	WgsY       float64       `json:"wgsy"`
	Angle      float64       `json:"angle"`
	ImgPath    string        `json:"img_path"`
	StreetName string        `json:"st_name"`
	Address    string        `json:"addr"`
	Past       []rawPanorama `json:"past"`
}

func parsePanorama(raw *rawPanorama) (*Panorama, error) {
	p := &Panorama{
		ID:         raw.ID,
		Lat:        raw.WgsY,
		Lon:        raw.WgsX,
		Heading:    raw.Angle * math.Pi / 180,
		ImagePath:  raw.ImgPath,
		StreetName: raw.StreetName,
		Address:    raw.Address,
		Date:       dateFromImagePath(raw.ImgPath),
	}
	for i := range raw.Past {
		past, err := parsePanorama(&raw.Past[i])
		if err != nil {
			return nil, err
		}
		p.Historical = append(p.Historical, *past)
	}
	return p, nil
}

// dateFromImagePath reads the capture time from the trailing
// YYYYMMDDhhmmss segment of the image path. The shot_date field in the
// response sometimes reports midnight, but the image path is always
// correct.
func dateFromImagePath(path string) time.Time {
	idx := strings.LastIndexByte(path, '_')
	if idx < 0 || len(path)-idx-1 != 14 {
		return time.Time{}
	}
	digits := path[idx+1:]
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		return time.Time{}
	}
	t, err := time.Parse("20060102150405", digits)
	if err != nil {
		return time.Time{}
	}
	return t
}
