// Package lookaround is a client for Apple Look Around panoramas.
//
// Panorama imagery comes as six HEIC faces rather than a single
// equirectangular image; faces are returned as raw bytes and decoding
// or reprojecting them is left to a Reprojector implementation.
package lookaround

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/streetlevel/streetlevel/pkg/fetch"
)

const faceEndpoint = "https://gspe72-ssl.ls.apple.com/mnn_us/"

const maxFaceZoom = 7

// Face identifies one side of a panorama cube.
type Face int

const (
	FaceBack Face = iota
	FaceLeft
	FaceFront
	FaceRight
	FaceTop
	FaceBottom
)

func (f Face) String() string {
	switch f {
	case FaceBack:
		return "back"
	case FaceLeft:
		return "left"
	case FaceFront:
		return "front"
	case FaceRight:
		return "right"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// Panorama is the metadata of one Look Around panorama.
type Panorama struct {
	ID      string
	BuildID string
	Lat     float64
	Lon     float64

	Heading float64 // radians
	Pitch   float64 // radians
	Roll    float64 // radians

	Elevation float64
}

// BuildPanoramaFaceURL returns the unauthenticated URL of one face of a
// panorama. Zoom runs from 0 (largest) to 7 and is clamped.
func BuildPanoramaFaceURL(panoid, buildID string, face Face, zoom int) (string, error) {
	if len(panoid) > 20 {
		return "", fmt.Errorf("pano ID %q must not be longer than 20 digits", panoid)
	}
	if len(buildID) > 10 {
		return "", fmt.Errorf("build ID %q must not be longer than 10 digits", buildID)
	}
	if zoom > maxFaceZoom {
		zoom = maxFaceZoom
	}
	if zoom < 0 {
		zoom = 0
	}

	padded := fmt.Sprintf("%020s", panoid)
	groups := make([]string, 0, 5)
	for i := 0; i < len(padded); i += 4 {
		groups = append(groups, padded[i:i+4])
	}
	return fmt.Sprintf("%s%s/%010s/t/%d/%d",
		faceEndpoint, strings.Join(groups, "/"), buildID, int(face), zoom), nil
}

// GetPanoramaFace downloads one face of a panorama and returns the raw
// HEIC bytes.
func GetPanoramaFace(ctx context.Context, c *fetch.Client, auth *Authenticator, p *Panorama, face Face, zoom int) ([]byte, error) {
	u, err := BuildPanoramaFaceURL(p.ID, p.BuildID, face, zoom)
	if err != nil {
		return nil, err
	}
	signed, err := auth.AuthenticateURL(u)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, signed)
}

// GetPanoramaFaces downloads all six faces of a panorama as raw HEIC
// bytes, ordered back, left, front, right, top, bottom.
func GetPanoramaFaces(ctx context.Context, c *fetch.Client, auth *Authenticator, p *Panorama, zoom int) ([][]byte, error) {
	faces := make([][]byte, 6)
	for f := FaceBack; f <= FaceBottom; f++ {
		data, err := GetPanoramaFace(ctx, c, auth, p, f, zoom)
		if err != nil {
			return nil, err
		}
		faces[f] = data
	}
	return faces, nil
}

// BuildPermalink creates an Apple Maps link to the location of the
// given panorama. Angles are in radians unless radians is false.
func BuildPermalink(lat, lon, heading, pitch float64, radians bool) string {
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
	}
	return fmt.Sprintf(
		"https://maps.apple.com/?ll=%f,%f&_mvs=1&t=k&center=%f,%f&heading=%f&pitch=%f",
		lat, lon, lat, lon, heading, pitch)
}
