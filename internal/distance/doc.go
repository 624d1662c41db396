// Package distance resolves travel distance and time from the user's location to every
// facility, for each travel mode.
//
// Resolve picks a source in priority order:
//
//  1. No location: the last cached computation, if any.
//  2. The precomputed static table, when the user is within 0.1 miles of its origin.
//  3. The cached computation, when the user has moved less than 0.25 miles since it was made.
//  4. The routing API (openrouteservice matrix), when an API key is configured.
//  5. A straight-line estimate: haversine distance times a road factor, divided by an
//     average speed per mode.
//
// Fresh results (4 and 5) replace the cache. Each fresh computation takes a request number; one
// that finishes after a newer computation has started returns its result marked Stale and leaves
// the cache alone. Steps 1 to 3 only read and never take a number. Routing failures never surface as errors: they fall through to the estimate.
package distance
