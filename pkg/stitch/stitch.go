// Package stitch assembles downloaded tile images into full panoramas,
// either one equirectangular canvas or six cube faces.
package stitch

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

// Layout selects how the six faces of a cubemap are combined.
type Layout int

const (
	// LayoutNone returns the six faces untouched.
	LayoutNone Layout = iota
	// LayoutNet pastes the faces into a 4x3 net-of-cube canvas.
	LayoutNet
	// LayoutRow pastes the faces left to right into a 6x1 canvas.
	LayoutRow
)

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// Equirectangular pastes a grid of tiles onto one canvas of the given
// size. Canvas dimensions are caller-supplied and are not validated
// against the grid; a missing grid key leaves its region at the zero
// value rather than failing. A tile that does not decode aborts the
// whole stitch.
func Equirectangular(tiles map[pano.TileCoord][]byte, width, height, tileWidth, tileHeight int) (image.Image, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for coord, data := range tiles {
		tile, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode tile (%d,%d): %w", coord.X, coord.Y, err)
		}
		paste(canvas, tile, coord.X*tileWidth, coord.Y*tileHeight)
	}
	return canvas, nil
}

// CubemapFace stitches the tiles of a single cube face into a raster of
// cols*tileSize by rows*tileSize pixels.
func CubemapFace(tiles map[pano.TileCoord][]byte, tileSize, cols, rows int) (image.Image, error) {
	return Equirectangular(tiles, cols*tileSize, rows*tileSize, tileSize, tileSize)
}

// CombineFaces merges six stitched cube faces, in the order front,
// right, back, left, top, bottom, into one canvas. LayoutNone is not a
// merge and is rejected; callers wanting separate faces already have
// them.
func CombineFaces(faces []image.Image, faceSize int, layout Layout) (image.Image, error) {
	if len(faces) != 6 {
		return nil, fmt.Errorf("expected 6 faces, got %d", len(faces))
	}

	switch layout {
	case LayoutNet:
		canvas := image.NewRGBA(image.Rect(0, 0, 4*faceSize, 3*faceSize))
		cells := [6][2]int{{1, 1}, {2, 1}, {3, 1}, {0, 1}, {1, 0}, {1, 2}}
		for i, face := range faces {
			paste(canvas, face, cells[i][0]*faceSize, cells[i][1]*faceSize)
		}
		return canvas, nil
	case LayoutRow:
		canvas := image.NewRGBA(image.Rect(0, 0, 6*faceSize, faceSize))
		for i, face := range faces {
			paste(canvas, face, i*faceSize, 0)
		}
		return canvas, nil
	default:
		return nil, fmt.Errorf("layout %d does not produce a single image", layout)
	}
}

// Quadrants stitches a batch of 4^n equally sized square tiles, listed
// in recursive quadrant order, into one square image. Batches of this
// shape are served by providers that subdivide each cube face into
// nested quarters.
func Quadrants(tiles [][]byte, tileSize int) (image.Image, error) {
	n := len(tiles)
	switch {
	case n == 0:
		return nil, fmt.Errorf("no tiles")
	case n == 1:
		return decode(tiles[0])
	case n <= 4:
		return stitchFour(tiles, tileSize)
	}

	gridSize := int(math.Sqrt(float64(n)))
	subSize := gridSize / 2 * tileSize
	canvas := image.NewRGBA(image.Rect(0, 0, subSize*2, subSize*2))
	offsets := [4][2]int{{0, 0}, {subSize, 0}, {0, subSize}, {subSize, subSize}}
	quarter := n / 4
	for i := 0; i < 4; i++ {
		sub, err := Quadrants(tiles[i*quarter:(i+1)*quarter], tileSize)
		if err != nil {
			return nil, err
		}
		paste(canvas, sub, offsets[i][0], offsets[i][1])
	}
	return canvas, nil
}

func stitchFour(tiles [][]byte, tileSize int) (image.Image, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, tileSize*2, tileSize*2))
	for i, data := range tiles {
		tile, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode quadrant tile %d: %w", i, err)
		}
		paste(canvas, tile, i%2*tileSize, i/2*tileSize)
	}
	return canvas, nil
}

func paste(canvas *image.RGBA, img image.Image, x, y int) {
	b := img.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(canvas, r, img, b.Min, draw.Src)
}
