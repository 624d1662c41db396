// Package facility provides the static set of recreation centers, the travel modes the
// distance resolver supports, and the per-facility distance records it produces.
//
// Schedule data names facilities loosely ("Ashland", "Martin Luther King Jr."), while distance
// tables carry full center names. Registry.Match joins both to a stable facility ID; a two-way
// substring comparison is kept only as a fallback for names no alias covers.
package facility

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/geo"
)

//go:embed facilities.json
var builtinJSON []byte

// Facility is a recreation center with fixed coordinates.
type Facility struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Aliases []string `json:"aliases,omitempty"`
}

// Coordinate returns the facility location.
func (f Facility) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: f.Lat, Lng: f.Lng}
}

// MatchKind tells how a name was joined to a facility.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchKey
	MatchLegacySubstring
)

// Registry is an immutable, ordered set of facilities with a name index.
type Registry struct {
	facilities []Facility
	byKey      map[string]int
}

// Builtin returns the embedded Denver facility set.
func Builtin() *Registry {
	reg, err := Parse(builtinJSON)
	if err != nil {
		panic(fmt.Sprintf("facility: embedded facilities.json is invalid: %v", err))
	}
	return reg
}

// Parse decodes a JSON array of facilities into a Registry.
func Parse(data []byte) (*Registry, error) {
	var list []Facility
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing facilities: %w", err)
	}
	return NewRegistry(list)
}

// NewRegistry indexes facilities by ID, name and aliases.
func NewRegistry(list []Facility) (*Registry, error) {
	reg := &Registry{
		facilities: make([]Facility, len(list)),
		byKey:      make(map[string]int),
	}
	copy(reg.facilities, list)

	for i, f := range reg.facilities {
		if f.ID == "" {
			return nil, fmt.Errorf("facility %q has no id", f.Name)
		}
		keys := append([]string{f.ID, f.Name}, f.Aliases...)
		for _, k := range keys {
			key := Key(k)
			if key == "" {
				continue
			}
			if prev, exists := reg.byKey[key]; exists && prev != i {
				return nil, fmt.Errorf("name %q maps to both %s and %s", k, reg.facilities[prev].ID, f.ID)
			}
			reg.byKey[key] = i
		}
	}

	return reg, nil
}

// All returns the facilities in registry order.
func (r *Registry) All() []Facility {
	out := make([]Facility, len(r.facilities))
	copy(out, r.facilities)
	return out
}

// Len returns the number of facilities.
func (r *Registry) Len() int {
	return len(r.facilities)
}

// ByID returns the facility with the given ID.
func (r *Registry) ByID(id string) (Facility, bool) {
	if i, ok := r.byKey[Key(id)]; ok && r.facilities[i].ID == id {
		return r.facilities[i], true
	}
	return Facility{}, false
}

// Match resolves a schedule or table name to a facility.
// Exact key matches (ID, name or alias after normalization) win; otherwise the legacy
// two-way substring comparison picks the facility with the longest overlapping key.
func (r *Registry) Match(name string) (Facility, MatchKind) {
	key := Key(name)
	if key == "" {
		return Facility{}, MatchNone
	}
	if i, ok := r.byKey[key]; ok {
		return r.facilities[i], MatchKey
	}

	// Legacy fallback for unmapped names.
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.Contains(key, k) || strings.Contains(k, key) {
			return r.facilities[r.byKey[k]], MatchLegacySubstring
		}
	}

	return Facility{}, MatchNone
}

// Key normalizes a facility name into a join key: lowercase, no punctuation, and without
// the "recreation center" suffix.
func Key(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(".", "", ",", "", "'", "", "-", " ").Replace(s)
	for _, suffix := range []string{" recreation center", " rec center", " rec"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.Join(strings.Fields(s), " ")
}
