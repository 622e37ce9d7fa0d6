package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ivlev/route2video/internal/journey"
)

// DefaultOSRMURL is the public demo instance. It rate-limits aggressively;
// point OSRM_URL at a self-hosted instance for anything beyond casual use.
const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRM speaks the OSRM HTTP API. Only the route service is used, with full
// geojson geometry so the polyline can be drawn directly.
type OSRM struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewOSRM(baseURL, userAgent string) *OSRM {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	return &OSRM{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// profile maps travel modes onto the profiles the public OSRM serves. Hiking
// rides the walking profile; ferries have no profile at all.
func profile(mode journey.Mode) (string, bool) {
	switch mode {
	case journey.ModeDriving:
		return "driving", true
	case journey.ModeCycling:
		return "cycling", true
	case journey.ModeWalking, journey.ModeHiking:
		return "walking", true
	default:
		return "", false
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry geojson.Geometry `json:"geometry"`
		Distance float64          `json:"distance"`
		Duration float64          `json:"duration"`
	} `json:"routes"`
}

func (o *OSRM) Route(ctx context.Context, mode journey.Mode, waypoints []journey.Coordinate) ([]journey.Coordinate, error) {
	prof, ok := profile(mode)
	if !ok {
		return nil, fmt.Errorf("route: no osrm profile for mode %q", mode)
	}
	if len(waypoints) < 2 {
		return nil, ErrNeedTwoStops
	}

	var coords strings.Builder
	for i, wp := range waypoints {
		if i > 0 {
			coords.WriteByte(';')
		}
		fmt.Fprintf(&coords, "%f,%f", wp.Lng, wp.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson", o.baseURL, prof, coords.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("route: build osrm request: %w", err)
	}
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route: osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("route: osrm returned status %d: %s", resp.StatusCode, body)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("route: bad osrm response: %w", err)
	}
	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("route: osrm rejected the request: code %q", decoded.Code)
	}

	line, ok := decoded.Routes[0].Geometry.Geometry().(orb.LineString)
	if !ok {
		return nil, errors.New("route: osrm geometry is not a line")
	}
	pts := make([]journey.Coordinate, len(line))
	for i, p := range line {
		pts[i] = journey.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return pts, nil
}
