// Package naver is a client for Naver Street View.
//
// Naver panoramas are cubemaps with three fixed sizes: a single
// preview strip at zoom 0 and per-face 512px tile grids at zoom 1 and
// 2. 3D imagery can additionally be downloaded in equirectangular
// projection. Neighbors and the historical timeline live on separate
// endpoints and are fetched on request.
package naver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"time"

	_ "image/jpeg"

	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/pano"
	"github.com/streetlevel/streetlevel/pkg/stitch"
)

const (
	nearbyURL       = "https://map.naver.com/p/api/panorama/nearby/%f/%f"
	metadataURL     = "https://panorama.map.naver.com/metadata/basic/%s?lang=%s&version=2.1.0"
	timelineURL     = "https://panorama.map.naver.com/metadata/timeline/%s"
	aroundURL       = "https://panorama.map.naver.com/metadata/around/%s?lang=ko"
	previewURL      = "https://panorama.pstatic.net/image/%s/512/P"
	cubemapTileURL  = "https://panorama.pstatic.net/image/%s/512/%s/%s/%d/%d"
	equirectTileURL = "https://panorama.pstatic.net/imageV3/%s/%d/%d/%d"

	tileSize = 512
)

// faces on the wire, in the order front, right, back, left, top, bottom
var faceLetters = [6]string{"f", "r", "b", "l", "u", "d"}

// PanoramaType describes what kind of footage a panorama is. The
// identifiers are taken from the dtl_type field of the metadata API.
type PanoramaType int

const (
	TypeAir        PanoramaType = 1
	TypeCar        PanoramaType = 3
	TypeBicycle    PanoramaType = 4
	TypeInside     PanoramaType = 5
	TypeInterior   PanoramaType = 7
	TypeJimmyJib   PanoramaType = 8
	TypeIndoor     PanoramaType = 10
	TypeUnderwater PanoramaType = 12
	TypeTrekker    PanoramaType = 13
	TypeIndoor3D   PanoramaType = 100
)

// Panorama is the metadata of one Naver panorama. ID, latitude and
// longitude are always set; everything else depends on which endpoint
// the panorama came from.
type Panorama struct {
	ID      string
	Lat     float64
	Lon     float64
	Heading float64 // radians

	Elevation    float64 // meters above sea level
	CameraHeight float64 // meters above ground

	// MaxZoom is the highest zoom level available for this panorama.
	// Only the metadata endpoint reports it; 0 means unknown.
	MaxZoom int

	// TimelineID is the ID of the most recent panorama at this
	// location, which is the ID the timeline endpoint must be given to
	// return the full history.
	TimelineID string

	Date     time.Time
	IsLatest bool

	Description string // typically the neighborhood and city
	Title       string // typically the street name

	Type    PanoramaType
	Overlay *Overlay

	Links      []pano.Link
	Neighbors  *Neighbors
	Historical []Panorama
}

// Overlay is the road texture the client lays over the mapping car, on
// top of the car image already baked into the panorama.
type Overlay struct {
	Source string
	Mask   string
}

// Neighbors groups nearby panoramas by capture method.
type Neighbors struct {
	Street []Panorama
	Other  []Panorama // aerial or underwater
}

// FindPanorama searches for a panorama near the given point. Aerial
// and underwater panoramas are ignored by this endpoint. Returns nil
// if nothing is found. If neighbors or historical is set, follow-up
// requests fill in the corresponding lists.
func FindPanorama(ctx context.Context, c *fetch.Client, lat, lon float64, neighbors, historical bool) (*Panorama, error) {
	var resp nearbyResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(nearbyURL, lon, lat), &resp, nil); err != nil {
		return nil, err
	}
	if resp.Error != nil || len(resp.Features) == 0 {
		return nil, nil
	}
	p := parseNearby(&resp)
	return fillLists(ctx, c, p, neighbors, historical, p.ID)
}

// FindPanoramaByID fetches metadata of a specific panorama. Language
// selects the description and title language; accepted values are ko,
// en, ja and zh. Returns nil if no panorama with this ID exists. If
// neighbors or historical is set, follow-up requests fill in the
// corresponding lists.
func FindPanoramaByID(ctx context.Context, c *fetch.Client, panoid, language string, neighbors, historical bool) (*Panorama, error) {
	var resp metadataResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(metadataURL, panoid, language), &resp, nil); err != nil {
		return nil, err
	}
	if resp.Errors != nil {
		return nil, nil
	}
	p := parsePanorama(&resp)
	return fillLists(ctx, c, p, neighbors, historical, p.TimelineID)
}

func fillLists(ctx context.Context, c *fetch.Client, p *Panorama, neighbors, historical bool, timelineID string) (*Panorama, error) {
	var err error
	if neighbors {
		if p.Neighbors, err = GetNeighbors(ctx, c, p.ID); err != nil {
			return nil, err
		}
	}
	if historical {
		if p.Historical, err = GetHistorical(ctx, c, timelineID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// GetNeighbors fetches the panoramas near the given one.
func GetNeighbors(ctx context.Context, c *fetch.Client, panoid string) (*Neighbors, error) {
	var resp aroundResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(aroundURL, panoid), &resp, nil); err != nil {
		return nil, err
	}
	if resp.Errors != nil {
		return &Neighbors{}, nil
	}
	return parseNeighbors(&resp, panoid), nil
}

// GetHistorical fetches older panoramas at the location of the given
// panorama. The endpoint only returns panoramas older than the one it
// is given, so pass the TimelineID of the most recent panorama to get
// the full list.
func GetHistorical(ctx context.Context, c *fetch.Client, panoid string) ([]Panorama, error) {
	var resp timelineResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(timelineURL, panoid), &resp, nil); err != nil {
		return nil, err
	}
	if resp.Errors != nil {
		return nil, nil
	}
	return parseHistorical(&resp, panoid), nil
}

// GetPanoramaFaces downloads and stitches the six faces of a panorama,
// in the order front, right, back, left, top, bottom. Zoom 0 is the
// lowest size and 2 the highest; the zoom is clamped to the panorama's
// maximum.
func GetPanoramaFaces(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) ([]image.Image, error) {
	zoom, err := validateZoom(p, zoom)
	if err != nil {
		return nil, err
	}
	if zoom == 0 {
		return getPreviewFaces(ctx, c, p)
	}

	faceTiles, cols, rows, err := generateTileList(p.ID, zoom)
	if err != nil {
		return nil, err
	}
	tileMaps, err := c.DownloadTileFaces(ctx, faceTiles)
	if err != nil {
		return nil, err
	}
	faces := make([]image.Image, 6)
	for i, tiles := range tileMaps {
		face, err := stitch.CubemapFace(tiles, tileSize, cols, rows)
		if err != nil {
			return nil, err
		}
		faces[i] = face
	}
	return faces, nil
}

// GetPanorama downloads a panorama and merges its faces into one 6x1
// row image, in the order front, right, back, left, top, bottom.
func GetPanorama(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) (image.Image, error) {
	faces, err := GetPanoramaFaces(ctx, c, p, zoom)
	if err != nil {
		return nil, err
	}
	faceSize := faces[0].Bounds().Dx()
	return stitch.CombineFaces(faces, faceSize, stitch.LayoutRow)
}

// GetPanoramaEquirect downloads a panorama in equirectangular
// projection. Only 3D indoor imagery is served in this projection.
func GetPanoramaEquirect(ctx context.Context, c *fetch.Client, p *Panorama, zoom int) (image.Image, error) {
	if p.Type != TypeIndoor3D {
		return nil, fmt.Errorf("panorama %s has no equirectangular imagery", p.ID)
	}
	zoom, err := validateZoom(p, zoom)
	if err != nil {
		return nil, err
	}

	cols := 4 << zoom
	rows := 2 << zoom
	tiles := make([]pano.Tile, 0, cols*rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			tiles = append(tiles, pano.Tile{
				X:   x,
				Y:   y,
				URL: fmt.Sprintf(equirectTileURL, p.ID, zoom, x+1, y+1),
			})
		}
	}
	downloaded, err := c.DownloadTiles(ctx, tiles)
	if err != nil {
		return nil, err
	}
	return stitch.Equirectangular(downloaded, cols*tileSize, rows*tileSize, tileSize, tileSize)
}

// BuildPermalink creates a Naver Map link which opens the given
// panorama. Angles are in degrees unless radians is set.
func BuildPermalink(panoid string, heading, pitch, fov, mapZoom float64, radians bool) string {
	if radians {
		heading = heading * 180 / math.Pi
		pitch = pitch * 180 / math.Pi
		fov = fov * 180 / math.Pi
	}
	return fmt.Sprintf("https://map.naver.com/p?c=%f,0,0,0,adh&p=%s,%f,%f,%f,Float",
		mapZoom, panoid, heading, pitch, fov)
}

// validateZoom clamps the zoom to what the panorama offers. When the
// maximum is unknown, only the preview and zoom 1, which every
// panorama has, are allowed.
func validateZoom(p *Panorama, zoom int) (int, error) {
	if zoom < 0 {
		zoom = 0
	}
	if p.MaxZoom == 0 {
		if zoom > 1 {
			return 0, fmt.Errorf("max zoom of panorama %s is unknown; fetch it with FindPanoramaByID", p.ID)
		}
		return zoom, nil
	}
	if zoom > p.MaxZoom {
		zoom = p.MaxZoom
	}
	return zoom, nil
}

// generateTileList returns the tiles of every face, faces in the order
// front, right, back, left, top, bottom.
func generateTileList(panoid string, zoom int) ([][]pano.Tile, int, int, error) {
	if zoom != 1 && zoom != 2 {
		return nil, 0, 0, fmt.Errorf("no tiled imagery at zoom %d", zoom)
	}

	cols := zoom * 2
	rows := zoom * 2
	sizeLetter := "M"
	if zoom == 2 {
		sizeLetter = "L"
	}

	faces := make([][]pano.Tile, 6)
	for i, letter := range faceLetters {
		tiles := make([]pano.Tile, 0, cols*rows)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				tiles = append(tiles, pano.Tile{
					X:   x,
					Y:   y,
					URL: fmt.Sprintf(cubemapTileURL, panoid, sizeLetter, letter, x+1, y+1),
				})
			}
		}
		faces[i] = tiles
	}
	return faces, cols, rows, nil
}

// getPreviewFaces downloads the zoom 0 preview, a single strip of six
// 256px faces stored in the order left, front, right, back, bottom,
// top, and cuts it up.
func getPreviewFaces(ctx context.Context, c *fetch.Client, p *Panorama) ([]image.Image, error) {
	const faceSize = 256

	data, err := c.Get(ctx, fmt.Sprintf(previewURL, p.ID))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("preview image cannot be cropped")
	}

	order := [6]int{1, 2, 3, 0, 5, 4}
	faces := make([]image.Image, 6)
	for i, n := range order {
		faces[i] = sub.SubImage(image.Rect(n*faceSize, 0, (n+1)*faceSize, faceSize))
	}
	return faces, nil
}
