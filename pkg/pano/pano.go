// Package pano holds the small data types shared by every provider:
// tile addresses, pixel sizes and links between panoramas.
package pano

// Size is a width/height pair in pixels.
type Size struct {
	X int
	Y int
}

// Tile is the grid coordinate and fully resolved URL of one tile of a
// tiled panorama.
type Tile struct {
	X   int
	Y   int
	URL string
}

// TileCoord keys a downloaded tile map by its grid position.
type TileCoord struct {
	X int
	Y int
}

// Link points to a neighboring panorama and the direction it lies in.
type Link struct {
	ID        string
	Direction float64 // radians
}
