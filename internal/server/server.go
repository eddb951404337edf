// Package server exposes panorama search and download over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streetlevel/streetlevel/pkg/baidu"
	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/kakao"
	"github.com/streetlevel/streetlevel/pkg/naver"
	"github.com/streetlevel/streetlevel/pkg/streetside"
	"github.com/streetlevel/streetlevel/pkg/streetview"
	"github.com/streetlevel/streetlevel/pkg/yandex"
)

// Server routes panorama requests to the provider clients.
type Server struct {
	client    *fetch.Client
	startTime time.Time
	version   string
}

// NewServer creates a new server instance
func NewServer(version string, client *fetch.Client) *Server {
	return &Server{
		client:    client,
		startTime: time.Now(),
		version:   version,
	}
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Get("/{provider}/find", s.FindPanorama)
	r.Get("/{provider}/panorama/{id}", s.GetPanorama)
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  int    `json:"uptime"`
	Version string `json:"version"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type panoramaResponse struct {
	ID      string  `json:"id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Heading float64 `json:"heading"`
	Date    string  `json:"date,omitempty"`
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Uptime:  int(time.Since(s.startTime).Seconds()),
		Version: s.version,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// FindPanorama searches for the panorama closest to lat/lon with the
// requested provider.
func (s *Server) FindPanorama(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "lon must be a number")
		return
	}

	pano, err := s.findByLocation(r.Context(), provider, lat, lon)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	if pano == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "no panorama found at this location")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(pano); err != nil {
		log.Printf("Error encoding find response: %v", err)
	}
}

// GetPanorama downloads and stitches a panorama and writes it as PNG.
func (s *Server) GetPanorama(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	id := chi.URLParam(r, "id")

	zoom := 0
	if zs := r.URL.Query().Get("zoom"); zs != "" {
		z, err := strconv.Atoi(zs)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "zoom must be an integer")
			return
		}
		zoom = z
	}

	img, err := s.downloadPanorama(r.Context(), provider, id, zoom)
	if err != nil {
		if err == context.DeadlineExceeded {
			s.writeErrorResponse(w, http.StatusGatewayTimeout, "PROVIDER_TIMEOUT", "provider requests timed out")
			return
		}
		s.writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	if img == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "no panorama with this ID")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Printf("Error writing panorama response: %v", err)
	}
}

func (s *Server) findByLocation(ctx context.Context, provider string, lat, lon float64) (*panoramaResponse, error) {
	switch provider {
	case "streetview":
		p, err := streetview.FindPanorama(ctx, s.client, lat, lon, 50, "en-US", false)
		if err != nil || p == nil {
			return nil, err
		}
		return &panoramaResponse{ID: p.ID, Lat: p.Lat, Lon: p.Lon, Heading: p.Heading, Date: p.Date}, nil
	case "streetside":
		panos, err := streetside.FindPanoramas(ctx, s.client, lat, lon, 50, 1)
		if err != nil || len(panos) == 0 {
			return nil, err
		}
		p := panos[0]
		return &panoramaResponse{
			ID: strconv.FormatInt(p.ID, 10), Lat: p.Lat, Lon: p.Lon,
			Heading: p.Heading, Date: p.Date.Format("2006-01-02"),
		}, nil
	case "yandex":
		p, err := yandex.FindPanorama(ctx, s.client, lat, lon)
		if err != nil || p == nil {
			return nil, err
		}
		return &panoramaResponse{ID: p.ID, Lat: p.Lat, Lon: p.Lon, Heading: p.Heading}, nil
	case "kakao":
		panos, err := kakao.FindPanoramas(ctx, s.client, lat, lon, 100, 1)
		if err != nil || len(panos) == 0 {
			return nil, err
		}
		p := panos[0]
		return &panoramaResponse{
			ID: strconv.FormatInt(p.ID, 10), Lat: p.Lat, Lon: p.Lon,
			Heading: p.Heading, Date: p.Date.Format("2006-01-02"),
		}, nil
	case "naver":
		p, err := naver.FindPanorama(ctx, s.client, lat, lon, false, false)
		if err != nil || p == nil {
			return nil, err
		}
		return &panoramaResponse{
			ID: p.ID, Lat: p.Lat, Lon: p.Lon,
			Heading: p.Heading, Date: p.Date.Format("2006-01-02"),
		}, nil
	case "baidu":
		p, err := baidu.FindPanorama(ctx, s.client, lat, lon, baidu.Wgs84)
		if err != nil || p == nil {
			return nil, err
		}
		return &panoramaResponse{ID: p.ID, Lat: p.Lat, Lon: p.Lon, Heading: p.Heading, Date: p.Date}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func (s *Server) downloadPanorama(ctx context.Context, provider, id string, zoom int) (image.Image, error) {
	switch provider {
	case "streetview":
		p, err := streetview.FindPanoramaByID(ctx, s.client, id, "en-US")
		if err != nil || p == nil {
			return nil, err
		}
		return streetview.GetPanorama(ctx, s.client, p, zoom)
	case "streetside":
		panoid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("streetside pano IDs are numeric: %v", err)
		}
		return streetside.GetPanorama(ctx, s.client, panoid, zoom)
	case "yandex":
		p, err := yandex.FindPanoramaByID(ctx, s.client, id)
		if err != nil || p == nil {
			return nil, err
		}
		return yandex.GetPanorama(ctx, s.client, p, zoom)
	case "kakao":
		panoid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("kakao pano IDs are numeric: %v", err)
		}
		p, err := kakao.FindPanoramaByID(ctx, s.client, panoid, false)
		if err != nil || p == nil {
			return nil, err
		}
		return kakao.GetPanorama(ctx, s.client, p, zoom)
	case "naver":
		p, err := naver.FindPanoramaByID(ctx, s.client, id, "en", false, false)
		if err != nil || p == nil {
			return nil, err
		}
		return naver.GetPanorama(ctx, s.client, p, zoom)
	case "baidu":
		p, err := baidu.FindPanoramaByID(ctx, s.client, id)
		if err != nil || p == nil {
			return nil, err
		}
		return baidu.GetPanorama(ctx, s.client, p, zoom)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{Error: errorCode, Message: message})
}
