package distance

import (
	"context"
	"sync"
	"time"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/geocache"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
)

// Config wires a Resolver. Facilities is required; the rest are optional.
type Config struct {
	Facilities *facility.Registry
	Cache      *geocache.Cache
	Static     *StaticTable
	Router     Router
}

// Resolver chooses and computes facility distances for a user location.
type Resolver struct {
	facilities *facility.Registry
	cache      *geocache.Cache
	static     *StaticTable
	router     Router

	mu     sync.Mutex
	latest uint64
}

// NewResolver creates a resolver. Static table rows are joined to facility IDs up front.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		facilities: cfg.Facilities,
		cache:      cfg.Cache,
		router:     cfg.Router,
	}
	if r.facilities == nil {
		r.facilities = facility.Builtin()
	}

	if cfg.Static != nil {
		static := &StaticTable{
			Origin:  cfg.Static.Origin,
			Centers: make([]facility.Distances, len(cfg.Static.Centers)),
		}
		copy(static.Centers, cfg.Static.Centers)
		for i := range static.Centers {
			if static.Centers[i].FacilityID != "" {
				continue
			}
			if f, kind := r.facilities.Match(static.Centers[i].Name); kind != facility.MatchNone {
				static.Centers[i].FacilityID = f.ID
			}
		}
		r.static = static
	}

	return r
}

// HasRouting reports whether a routing API is configured.
func (r *Resolver) HasRouting() bool {
	return r.router != nil
}

// Resolve returns distances to every facility for origin. A nil origin means the user's
// location is unknown. The result is never nil.
func (r *Resolver) Resolve(ctx context.Context, origin *geo.Coordinate) *Result {
	start := time.Now()

	result := r.resolve(ctx, origin)
	result.facilities = r.facilities

	logger.IncrCounter("distance.source." + string(result.Source))
	logger.RecordTiming("distance.resolve", time.Since(start))
	logger.Debug("Resolved facility distances", logger.Fields{
		"source":    string(result.Source),
		"estimated": result.Estimated,
		"stale":     result.Stale,
		"centers":   len(result.Centers),
	})

	return result
}

func (r *Resolver) resolve(ctx context.Context, origin *geo.Coordinate) *Result {
	if origin == nil {
		if entry := r.cachedEntry(); entry != nil {
			return fromEntry(entry)
		}
		return &Result{Source: SourceNone}
	}

	if r.static != nil && geo.Within(r.static.Origin, *origin, geo.StaticProximityMiles) {
		o := r.static.Origin
		centers := make([]facility.Distances, len(r.static.Centers))
		copy(centers, r.static.Centers)
		return &Result{Source: SourceStatic, Centers: centers, Origin: &o}
	}

	if entry := r.cachedEntry(); entry != nil && geo.Within(entry.Origin, *origin, geo.MovementThresholdMiles) {
		return fromEntry(entry)
	}

	// Only fresh computations take a token; reads never supersede one in flight.
	token := r.begin()
	result := r.compute(ctx, *origin)

	if !r.commit(token, result) {
		result.Stale = true
		logger.Info("Discarding superseded distance computation", logger.Fields{
			"origin": origin.String(),
		})
	}
	return result
}

// compute runs steps 4 and 5 for every mode.
func (r *Resolver) compute(ctx context.Context, origin geo.Coordinate) *Result {
	all := r.facilities.All()
	centers := make([]facility.Distances, len(all))
	for i, f := range all {
		centers[i] = facility.Distances{FacilityID: f.ID, Name: f.Name, Address: f.Address}
	}

	result := &Result{Source: SourceEstimate, Centers: centers, Origin: &origin}
	for _, mode := range facility.Modes {
		records, source := r.computeMode(ctx, origin, mode)
		for i := range centers {
			centers[i].Set(mode, records[i])
		}
		if source == SourceRouting {
			result.Source = SourceRouting
		} else {
			result.Estimated = true
		}
	}
	return result
}

// computeMode computes fresh records for one mode, in facility registry order, using the
// routing API when configured and the straight-line estimate otherwise or on failure.
func (r *Resolver) computeMode(ctx context.Context, origin geo.Coordinate, mode facility.Mode) ([]facility.Record, Source) {
	all := r.facilities.All()
	dests := make([]geo.Coordinate, len(all))
	for i, f := range all {
		dests[i] = f.Coordinate()
	}

	if r.router != nil {
		records, err := r.router.Matrix(ctx, origin, dests, mode)
		if err == nil && len(records) == len(dests) {
			return records, SourceRouting
		}
		logger.Warn("Routing request failed, using estimate", logger.Fields{
			"mode":  string(mode),
			"error": errString(err),
		})
		logger.IncrCounter("distance.routing_failures")
	}

	return Estimate(origin, dests, mode), SourceEstimate
}

func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest++
	return r.latest
}

// commit writes a fresh result to the cache unless a newer computation has started.
func (r *Resolver) commit(token uint64, result *Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token != r.latest {
		return false
	}
	if r.cache == nil {
		return true
	}

	err := r.cache.Set(geocache.Entry{
		Origin:    *result.Origin,
		Timestamp: time.Now().UTC(),
		Centers:   result.Centers,
		Estimated: result.Estimated,
	})
	if err != nil {
		logger.Error("Failed to save distance cache", nil, err)
	}
	return true
}

func (r *Resolver) cachedEntry() *geocache.Entry {
	if r.cache == nil {
		return nil
	}
	return r.cache.Get()
}

func fromEntry(entry *geocache.Entry) *Result {
	o := entry.Origin
	return &Result{
		Source:    SourceCache,
		Centers:   entry.Centers,
		Estimated: entry.Estimated,
		Origin:    &o,
	}
}

func errString(err error) string {
	if err == nil {
		return "short response"
	}
	return err.Error()
}
