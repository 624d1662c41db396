// Package locate finds the user's approximate position.
//
// Locators are wrapped in Bounded, which caps each attempt at a timeout and reuses a
// recent fix. A failed or timed-out attempt is reported as ErrLocationUnavailable and is
// not retried; the distance resolver then falls back to cached or static data.
package locate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 60 * time.Second

	// DefaultIPLookupURL is the ip-api.com JSON endpoint.
	DefaultIPLookupURL = "http://ip-api.com/json/"
)

// ErrLocationUnavailable is returned when no position could be determined.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator determines a position.
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// Fixed is a Locator that always returns the same coordinate.
type Fixed geo.Coordinate

// Locate returns the fixed coordinate.
func (f Fixed) Locate(ctx context.Context) (geo.Coordinate, error) {
	c := geo.Coordinate(f)
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("%w: coordinate %v out of range", ErrLocationUnavailable, c)
	}
	return c, nil
}

// IPLocator approximates the position from the public IP address.
type IPLocator struct {
	url    string
	client *resty.Client
}

// NewIPLocator creates an IP locator. url may be empty for the default service.
func NewIPLocator(url string) *IPLocator {
	if url == "" {
		url = DefaultIPLookupURL
	}
	return &IPLocator{
		url:    url,
		client: resty.New().SetHeader("Accept", "application/json"),
	}
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Locate queries the IP geolocation service.
func (l *IPLocator) Locate(ctx context.Context) (geo.Coordinate, error) {
	var result ipResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon,city").
		SetResult(&result).
		Get(l.url)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if !resp.IsSuccess() {
		return geo.Coordinate{}, fmt.Errorf("%w: lookup returned status %d", ErrLocationUnavailable, resp.StatusCode())
	}
	if result.Status != "success" {
		return geo.Coordinate{}, fmt.Errorf("%w: lookup failed: %s", ErrLocationUnavailable, result.Message)
	}

	c := geo.Coordinate{Lat: result.Lat, Lng: result.Lon}
	logger.Debug("Located by IP address", logger.Fields{"city": result.City, "coordinate": c.String()})
	return c, nil
}

// Bounded limits each attempt of an inner Locator and reuses a recent fix.
type Bounded struct {
	inner   Locator
	timeout time.Duration
	maxAge  time.Duration
	now     func() time.Time

	mu    sync.Mutex
	last  geo.Coordinate
	fixAt time.Time
}

// NewBounded wraps inner with the default 10 second timeout and 60 second fix reuse.
func NewBounded(inner Locator) *Bounded {
	return &Bounded{
		inner:   inner,
		timeout: DefaultTimeout,
		maxAge:  DefaultMaxAge,
		now:     time.Now,
	}
}

// Locate returns the last fix if it is fresh enough, otherwise asks the inner locator
// once. Any failure, including the timeout, is ErrLocationUnavailable.
func (b *Bounded) Locate(ctx context.Context) (geo.Coordinate, error) {
	b.mu.Lock()
	if !b.fixAt.IsZero() && b.now().Sub(b.fixAt) <= b.maxAge {
		c := b.last
		b.mu.Unlock()
		return c, nil
	}
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type fix struct {
		c   geo.Coordinate
		err error
	}
	done := make(chan fix, 1)
	go func() {
		c, err := b.inner.Locate(ctx)
		done <- fix{c, err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("Location request timed out", logger.Fields{"timeout": b.timeout.String()})
		logger.IncrCounter("locate.failures")
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, ctx.Err())
	case f := <-done:
		if f.err != nil {
			logger.Warn("Location request failed", logger.Fields{"error": f.err.Error()})
			logger.IncrCounter("locate.failures")
			if errors.Is(f.err, ErrLocationUnavailable) {
				return geo.Coordinate{}, f.err
			}
			return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, f.err)
		}
		b.mu.Lock()
		b.last = f.c
		b.fixAt = b.now()
		b.mu.Unlock()
		return f.c, nil
	}
}

// Optional runs a locator and returns nil instead of an error, for callers that treat a
// missing location as a normal state.
func Optional(ctx context.Context, l Locator) *geo.Coordinate {
	if l == nil {
		return nil
	}
	c, err := l.Locate(ctx)
	if err != nil {
		return nil
	}
	return &c
}
