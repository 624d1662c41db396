package distance

import (
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

// Source names where a Result came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceCache    Source = "cache"
	SourceStatic   Source = "static"
	SourceRouting  Source = "routing"
	SourceEstimate Source = "estimate"
)

// Result is the outcome of one Resolve call.
type Result struct {
	Source    Source               `json:"source"`
	Centers   []facility.Distances `json:"centers"`
	Estimated bool                 `json:"estimated"`
	Origin    *geo.Coordinate      `json:"origin,omitempty"`

	// Stale is set when a newer fresh computation started before this one finished.
	Stale bool `json:"stale,omitempty"`

	facilities *facility.Registry
}

// Empty reports whether the result carries no distances.
func (r *Result) Empty() bool {
	return r == nil || len(r.Centers) == 0
}

// Lookup finds the distances for a facility named as in schedule data.
// Names are joined through the facility registry; names the registry cannot map
// exactly fall back to a two-way substring comparison against row names.
func (r *Result) Lookup(name string) (facility.Distances, bool) {
	if r.Empty() || strings.TrimSpace(name) == "" {
		return facility.Distances{}, false
	}

	if r.facilities != nil {
		if f, kind := r.facilities.Match(name); kind == facility.MatchKey {
			for _, d := range r.Centers {
				if r.rowID(d) == f.ID {
					return d, true
				}
			}
		}
	}

	key := facility.Key(name)
	for _, d := range r.Centers {
		row := facility.Key(d.Name)
		if row == "" {
			continue
		}
		if strings.Contains(row, key) || strings.Contains(key, row) {
			return d, true
		}
	}
	return facility.Distances{}, false
}

// Minutes returns the travel time to a facility for a mode.
// ok is false when no distance is known.
func (r *Result) Minutes(name string, mode facility.Mode) (int, bool) {
	d, ok := r.Lookup(name)
	if !ok {
		return 0, false
	}
	rec := d.Get(mode)
	if rec.IsZero() {
		return 0, false
	}
	return rec.Minutes, true
}

// Record returns the full record for a facility and mode.
func (r *Result) Record(name string, mode facility.Mode) (facility.Record, bool) {
	d, ok := r.Lookup(name)
	if !ok {
		return facility.Record{}, false
	}
	rec := d.Get(mode)
	return rec, !rec.IsZero()
}

// ModeRow is one facility's record for a single travel mode.
type ModeRow struct {
	Facility string          `json:"facility"`
	Record   facility.Record `json:"record"`
}

// ForMode projects every row onto one travel mode. It returns nil when the result is empty.
func (r *Result) ForMode(mode facility.Mode) []ModeRow {
	if r.Empty() {
		return nil
	}
	rows := make([]ModeRow, len(r.Centers))
	for i, d := range r.Centers {
		rows[i] = ModeRow{Facility: d.Name, Record: d.Get(mode)}
	}
	return rows
}

func (r *Result) rowID(d facility.Distances) string {
	if d.FacilityID != "" {
		return d.FacilityID
	}
	if f, kind := r.facilities.Match(d.Name); kind == facility.MatchKey {
		return f.ID
	}
	return ""
}
