package stitch

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/streetlevel/streetlevel/pkg/pano"
)

func solidTile(c color.Color, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func colorAt(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestEquirectangular(t *testing.T) {
	tiles := map[pano.TileCoord][]byte{
		{X: 0, Y: 0}: solidTile(red, 16, 16),
		{X: 1, Y: 0}: solidTile(green, 16, 16),
		{X: 0, Y: 1}: solidTile(blue, 16, 16),
		{X: 1, Y: 1}: solidTile(white, 16, 16),
	}

	img, err := Equirectangular(tiles, 32, 32, 16, 16)
	if err != nil {
		t.Fatalf("Equirectangular failed: %v", err)
	}

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Fatalf("Expected 32x32 canvas, got %v", img.Bounds())
	}

	if got := colorAt(t, img, 8, 8); got != red {
		t.Errorf("Expected red at (8,8), got %v", got)
	}
	if got := colorAt(t, img, 24, 8); got != green {
		t.Errorf("Expected green at (24,8), got %v", got)
	}
	if got := colorAt(t, img, 8, 24); got != blue {
		t.Errorf("Expected blue at (8,24), got %v", got)
	}
	if got := colorAt(t, img, 24, 24); got != white {
		t.Errorf("Expected white at (24,24), got %v", got)
	}
}

func TestEquirectangularMissingTile(t *testing.T) {
	tiles := map[pano.TileCoord][]byte{
		{X: 0, Y: 0}: solidTile(red, 16, 16),
	}

	img, err := Equirectangular(tiles, 32, 16, 16, 16)
	if err != nil {
		t.Fatalf("Equirectangular failed: %v", err)
	}

	// the missing tile region stays at the zero value
	if got := colorAt(t, img, 24, 8); (got != color.RGBA{}) {
		t.Errorf("Expected transparent black at (24,8), got %v", got)
	}
}

func TestEquirectangularBadTile(t *testing.T) {
	tiles := map[pano.TileCoord][]byte{
		{X: 0, Y: 0}: []byte("not an image"),
	}

	if _, err := Equirectangular(tiles, 16, 16, 16, 16); err == nil {
		t.Error("Expected error for undecodable tile")
	}
}

func TestCombineFacesRow(t *testing.T) {
	faces := make([]image.Image, 6)
	colors := []color.RGBA{red, green, blue, white, red, green}
	for i := range faces {
		img, err := decode(solidTile(colors[i], 8, 8))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		faces[i] = img
	}

	img, err := CombineFaces(faces, 8, LayoutRow)
	if err != nil {
		t.Fatalf("CombineFaces failed: %v", err)
	}

	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 8 {
		t.Fatalf("Expected 48x8 canvas, got %v", img.Bounds())
	}
	for i, want := range colors {
		if got := colorAt(t, img, i*8+4, 4); got != want {
			t.Errorf("Face %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestCombineFacesNet(t *testing.T) {
	faces := make([]image.Image, 6)
	colors := []color.RGBA{red, green, blue, white, red, green}
	for i := range faces {
		img, err := decode(solidTile(colors[i], 8, 8))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		faces[i] = img
	}

	img, err := CombineFaces(faces, 8, LayoutNet)
	if err != nil {
		t.Fatalf("CombineFaces failed: %v", err)
	}

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Fatalf("Expected 32x24 canvas, got %v", img.Bounds())
	}

	// front center cell, top above it, bottom below it
	cells := [6][2]int{{1, 1}, {2, 1}, {3, 1}, {0, 1}, {1, 0}, {1, 2}}
	for i, cell := range cells {
		if got := colorAt(t, img, cell[0]*8+4, cell[1]*8+4); got != colors[i] {
			t.Errorf("Face %d at cell %v: expected %v, got %v", i, cell, colors[i], got)
		}
	}

	// a corner cell stays empty
	if got := colorAt(t, img, 4, 4); (got != color.RGBA{}) {
		t.Errorf("Expected empty corner cell, got %v", got)
	}
}

func TestCombineFacesRejectsLayoutNone(t *testing.T) {
	if _, err := CombineFaces(make([]image.Image, 6), 8, LayoutNone); err == nil {
		t.Error("Expected error for LayoutNone")
	}
}

func TestCombineFacesWrongCount(t *testing.T) {
	if _, err := CombineFaces(make([]image.Image, 4), 8, LayoutRow); err == nil {
		t.Error("Expected error for wrong face count")
	}
}

func TestQuadrantsSingle(t *testing.T) {
	img, err := Quadrants([][]byte{solidTile(red, 8, 8)}, 8)
	if err != nil {
		t.Fatalf("Quadrants failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("Expected single tile passthrough, got %v", img.Bounds())
	}
}

func TestQuadrantsFour(t *testing.T) {
	tiles := [][]byte{
		solidTile(red, 8, 8),
		solidTile(green, 8, 8),
		solidTile(blue, 8, 8),
		solidTile(white, 8, 8),
	}

	img, err := Quadrants(tiles, 8)
	if err != nil {
		t.Fatalf("Quadrants failed: %v", err)
	}

	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
		t.Fatalf("Expected 16x16 canvas, got %v", img.Bounds())
	}
	if got := colorAt(t, img, 4, 4); got != red {
		t.Errorf("Expected red top left, got %v", got)
	}
	if got := colorAt(t, img, 12, 4); got != green {
		t.Errorf("Expected green top right, got %v", got)
	}
	if got := colorAt(t, img, 4, 12); got != blue {
		t.Errorf("Expected blue bottom left, got %v", got)
	}
	if got := colorAt(t, img, 12, 12); got != white {
		t.Errorf("Expected white bottom right, got %v", got)
	}
}

func TestQuadrantsSixteen(t *testing.T) {
	// 16 tiles in recursive quadrant order; first four fill the top
	// left quarter
	tiles := make([][]byte, 16)
	for i := range tiles {
		c := green
		if i < 4 {
			c = red
		}
		tiles[i] = solidTile(c, 8, 8)
	}

	img, err := Quadrants(tiles, 8)
	if err != nil {
		t.Fatalf("Quadrants failed: %v", err)
	}

	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Fatalf("Expected 32x32 canvas, got %v", img.Bounds())
	}
	if got := colorAt(t, img, 8, 8); got != red {
		t.Errorf("Expected red in top left quarter, got %v", got)
	}
	if got := colorAt(t, img, 24, 8); got != green {
		t.Errorf("Expected green in top right quarter, got %v", got)
	}
}

func TestQuadrantsEmpty(t *testing.T) {
	if _, err := Quadrants(nil, 8); err == nil {
		t.Error("Expected error for empty tile list")
	}
}
