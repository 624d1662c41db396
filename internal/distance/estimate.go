package distance

import (
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

// RoadFactor converts a straight-line distance into an approximate route distance.
const RoadFactor = 1.35

// Estimate returns a straight-line estimate from origin to each destination for one mode.
// Records are marked Estimated.
func Estimate(origin geo.Coordinate, dests []geo.Coordinate, mode facility.Mode) []facility.Record {
	speed := mode.SpeedMPH()
	out := make([]facility.Record, len(dests))
	for i, d := range dests {
		miles := geo.Miles(origin, d) * RoadFactor
		var minutes float64
		if speed > 0 {
			minutes = miles / speed * 60
		}
		out[i] = facility.NewRecord(miles, minutes, true)
	}
	return out
}
