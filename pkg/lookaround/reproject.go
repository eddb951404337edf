package lookaround

import (
	"errors"
	"image"
)

// ErrReprojectUnavailable is returned when no reprojection backend is
// configured. Face imagery is HEIC and decoding it needs codecs this
// module does not bundle.
var ErrReprojectUnavailable = errors.New("lookaround: no reprojection backend configured")

// Reprojector turns the six cube faces of a panorama into an
// equirectangular image.
type Reprojector interface {
	Reproject(faces [][]byte) (image.Image, error)
}

// DefaultReprojector reports reprojection as unavailable. Callers who
// bring a HEIC decoder can plug in their own implementation.
var DefaultReprojector Reprojector = unavailableReprojector{}

type unavailableReprojector struct{}

func (unavailableReprojector) Reproject([][]byte) (image.Image, error) {
	return nil, ErrReprojectUnavailable
}
