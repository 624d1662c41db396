package distance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

// DefaultRoutingURL is the openrouteservice API base.
const DefaultRoutingURL = "https://api.openrouteservice.org"

const (
	metersPerMile  = 1609.34
	memoSize       = 256
	memoExpiration = 24 * time.Hour
)

// ErrRoutingFailed wraps every routing API failure.
var ErrRoutingFailed = errors.New("routing request failed")

// Router computes route distances from one origin to many destinations.
type Router interface {
	Matrix(ctx context.Context, origin geo.Coordinate, dests []geo.Coordinate, mode facility.Mode) ([]facility.Record, error)
}

// RoutingClient calls the openrouteservice matrix endpoint.
// Successful rows are memoized per quantized origin and profile.
type RoutingClient struct {
	apiKey  string
	baseURL string
	http    *resty.Client
	memo    gcache.Cache
}

// NewRoutingClient creates a client for the given API key. baseURL may be empty.
func NewRoutingClient(apiKey, baseURL string) *RoutingClient {
	if baseURL == "" {
		baseURL = DefaultRoutingURL
	}
	return &RoutingClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("Accept", "application/json"),
		memo: gcache.New(memoSize).
			LRU().
			Expiration(memoExpiration).
			Build(),
	}
}

type matrixRequest struct {
	Locations [][2]float64 `json:"locations"`
	Sources   []int        `json:"sources"`
	Metrics   []string     `json:"metrics"`
	Units     string       `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix returns one record per destination, in order.
// Any transport error, non-2xx status or malformed body is returned wrapped in ErrRoutingFailed.
func (c *RoutingClient) Matrix(ctx context.Context, origin geo.Coordinate, dests []geo.Coordinate, mode facility.Mode) ([]facility.Record, error) {
	profile := mode.Profile()
	if profile == "" {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrRoutingFailed, mode)
	}

	key := memoKey(origin, dests, profile)
	if cached, err := c.memo.Get(key); err == nil {
		return copyRecords(cached.([]facility.Record)), nil
	}

	body := matrixRequest{
		Locations: make([][2]float64, 0, len(dests)+1),
		Sources:   []int{0},
		Metrics:   []string{"distance", "duration"},
		Units:     "m",
	}
	// openrouteservice takes [lng, lat].
	body.Locations = append(body.Locations, [2]float64{origin.Lng, origin.Lat})
	for _, d := range dests {
		body.Locations = append(body.Locations, [2]float64{d.Lng, d.Lat})
	}

	var result matrixResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(c.baseURL + "/v2/matrix/" + profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoutingFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: API returned status %d", ErrRoutingFailed, resp.StatusCode())
	}

	records, err := parseMatrix(result, len(dests))
	if err != nil {
		return nil, err
	}

	_ = c.memo.Set(key, copyRecords(records))
	return records, nil
}

// parseMatrix reads row 0 of the response, discarding the origin's own cell.
func parseMatrix(m matrixResponse, n int) ([]facility.Record, error) {
	if len(m.Distances) < 1 || len(m.Durations) < 1 {
		return nil, fmt.Errorf("%w: response has no rows", ErrRoutingFailed)
	}
	distances, durations := m.Distances[0], m.Durations[0]
	if len(distances) != n+1 || len(durations) != n+1 {
		return nil, fmt.Errorf("%w: row has %d/%d cells, want %d", ErrRoutingFailed, len(distances), len(durations), n+1)
	}

	out := make([]facility.Record, n)
	for i := 0; i < n; i++ {
		meters, seconds := distances[i+1], durations[i+1]
		if meters == nil || seconds == nil {
			return nil, fmt.Errorf("%w: no route to destination %d", ErrRoutingFailed, i)
		}
		out[i] = facility.NewRecord(*meters/metersPerMile, *seconds/60, false)
	}
	return out, nil
}

func memoKey(origin geo.Coordinate, dests []geo.Coordinate, profile string) string {
	return fmt.Sprintf("%s|%s|%d", profile, geo.Quantize(origin), len(dests))
}

func copyRecords(in []facility.Record) []facility.Record {
	out := make([]facility.Record, len(in))
	copy(out, in)
	return out
}
