package route

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNominatimGeocode(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query().Get("q")
		if req.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", req.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"lat":"46.2043907","lon":"6.1431577","display_name":"Geneva, Switzerland"}]`)
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, "route2video-test")
	c, err := n.Geocode(context.Background(), "Geneva")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if gotQuery != "Geneva" {
		t.Errorf("query %q, want Geneva", gotQuery)
	}
	if math.Abs(c.Lat-46.2043907) > 1e-9 || math.Abs(c.Lng-6.1431577) > 1e-9 {
		t.Errorf("coordinate %v", c)
	}
}

func TestNominatimNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, "")
	if _, err := n.Geocode(context.Background(), "Nowhereville"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestNominatimThrottlesSecondCall(t *testing.T) {
	n := NewNominatim("http://invalid.local", "")

	start := time.Now()
	if err := n.throttle(context.Background()); err != nil {
		t.Fatalf("first throttle: %v", err)
	}
	if err := n.throttle(context.Background()); err != nil {
		t.Fatalf("second throttle: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("second call went through after %v, want about a second", elapsed)
	}
}
