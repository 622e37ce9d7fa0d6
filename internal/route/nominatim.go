package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ivlev/route2video/internal/journey"
)

// DefaultNominatimURL is the public OSM geocoder.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// nominatimInterval is the public instance's usage policy: one request per
// second, identified by a real User-Agent.
const nominatimInterval = time.Second

// Nominatim resolves place names through the OSM geocoder, throttled to the
// public usage policy.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	mu       sync.Mutex
	nextSlot time.Time
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Geocode(ctx context.Context, place string) (journey.Coordinate, error) {
	if err := n.throttle(ctx); err != nil {
		return journey.Coordinate{}, err
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", n.baseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return journey.Coordinate{}, fmt.Errorf("route: build nominatim request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return journey.Coordinate{}, fmt.Errorf("route: nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return journey.Coordinate{}, fmt.Errorf("route: nominatim returned status %d: %s", resp.StatusCode, body)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return journey.Coordinate{}, fmt.Errorf("route: bad nominatim response: %w", err)
	}
	if len(results) == 0 {
		return journey.Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, place)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return journey.Coordinate{}, fmt.Errorf("route: bad latitude for %q: %w", place, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return journey.Coordinate{}, fmt.Errorf("route: bad longitude for %q: %w", place, err)
	}

	c := journey.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return journey.Coordinate{}, fmt.Errorf("route: nominatim returned %v for %q: %w", c, place, journey.ErrBadCoordinate)
	}
	return c, nil
}

// throttle reserves the next one-second request slot, waiting if the previous
// call was too recent.
func (n *Nominatim) throttle(ctx context.Context) error {
	n.mu.Lock()
	now := time.Now()
	wait := n.nextSlot.Sub(now)
	if wait > 0 {
		n.nextSlot = n.nextSlot.Add(nominatimInterval)
	} else {
		wait = 0
		n.nextSlot = now.Add(nominatimInterval)
	}
	n.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
