package geo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"googlemaps.github.io/maps"
)

const staticMapBase = "https://maps.googleapis.com/maps/api/staticmap"

// GoogleMaps implements Service using the Google Maps Platform.
type GoogleMaps struct {
	client  *maps.Client
	apiKey  string
	timeout time.Duration
}

// NewGoogleMaps creates a Google Maps backed Service.
func NewGoogleMaps(apiKey string, timeout time.Duration) (*GoogleMaps, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &GoogleMaps{
		client:  client,
		apiKey:  apiKey,
		timeout: timeout,
	}, nil
}

// Geocode resolves an address via the Geocoding API. Provider failures and
// timeouts surface as ErrUnavailable so callers can retry; an empty result
// set is ErrUnresolvable.
func (g *GoogleMaps) Geocode(ctx context.Context, address string) (Point, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(results) == 0 {
		return Point{}, ErrUnresolvable
	}

	loc := results[0].Geometry.Location
	return Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// StaticMapURL returns a Static Maps image URL centered on p.
func (g *GoogleMaps) StaticMapURL(p Point) string {
	q := url.Values{}
	q.Set("center", formatPoint(p))
	q.Set("zoom", "15")
	q.Set("size", "600x400")
	q.Set("markers", formatPoint(p))
	q.Set("key", g.apiKey)
	return staticMapBase + "?" + q.Encode()
}

// RouteMapURL returns a Static Maps image URL showing pickup and dropoff.
func (g *GoogleMaps) RouteMapURL(a, b Point) string {
	q := url.Values{}
	q.Set("size", "600x400")
	q.Add("markers", "color:green|label:A|"+formatPoint(a))
	q.Add("markers", "color:red|label:B|"+formatPoint(b))
	q.Set("path", formatPoint(a)+"|"+formatPoint(b))
	q.Set("key", g.apiKey)
	return staticMapBase + "?" + q.Encode()
}

func formatPoint(p Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

var _ Service = (*GoogleMaps)(nil)
