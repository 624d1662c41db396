// Package filter narrows a day's events and groups them by facility.
//
// Apply runs a fixed pipeline, skipping any step whose criterion is empty:
//   - Drop cancelled classes (HideCancelled)
//   - Keep selected facilities (Facilities)
//   - Keep selected activities, exact title match ignoring case (Activities)
//   - Keep events whose facility, title or category contains Search, ignoring case
//   - Group by facility in order of first appearance
//   - Order groups by travel time for a mode, or by name (Sort)
//   - Keep the first Limit groups, unless facilities were selected explicitly
//
// Apply never mutates its input and returns the same output for the same input.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Activities = []string{"Lap Swim"}
//	f.Sort = filter.SortDriving
//	f.Limit = 5
//
//	groups := f.Apply(day.Events, distances)
package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
)

// missingDistance orders facilities without a known travel time after every real one.
const missingDistance = math.MaxInt

// Lookup provides travel minutes to a facility for a mode.
type Lookup interface {
	Minutes(facility string, mode facility.Mode) (int, bool)
}

// Filter represents schedule filtering criteria
type Filter struct {
	// Facility names to keep; empty keeps all
	Facilities []string `json:"facilities,omitempty"`

	// Activity titles to keep; empty keeps all
	Activities []string `json:"activities,omitempty"`

	// Case-insensitive substring over facility, title and category
	Search string `json:"search,omitempty"`

	HideCancelled bool `json:"hide_cancelled,omitempty"`

	Sort SortMode `json:"sort,omitempty"`

	// Maximum number of facility groups; 0 or less is unbounded
	Limit int `json:"limit,omitempty"`
}

// Group is one facility's filtered events, in input order.
type Group struct {
	Facility string        `json:"facility"`
	Events   []event.Event `json:"events"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter keeps every event until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Facilities: []string{},
		Activities: []string{},
		Sort:       SortNone,
	}
}

// IsEmpty checks if the filter has any active criteria.
// Sort and Limit only order and trim groups, so they do not count.
func (f *Filter) IsEmpty() bool {
	return len(f.Facilities) == 0 &&
		len(f.Activities) == 0 &&
		strings.TrimSpace(f.Search) == "" &&
		!f.HideCancelled
}

// Matches checks if an event passes every active criterion.
func (f *Filter) Matches(evt event.Event) bool {
	if f.HideCancelled && evt.Cancelled {
		return false
	}

	if len(f.Facilities) > 0 && !containsKey(f.Facilities, evt.Facility, facility.Key) {
		return false
	}

	if len(f.Activities) > 0 && !containsKey(f.Activities, evt.Title, foldKey) {
		return false
	}

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(evt.Facility), search) &&
			!strings.Contains(strings.ToLower(evt.Title), search) &&
			!strings.Contains(strings.ToLower(evt.Category), search) {
			return false
		}
	}

	return true
}

// Apply filters events, groups them by facility and orders the groups.
// distances may be nil, in which case distance sorts keep every group at the end in
// first-appearance order.
func (f *Filter) Apply(events []event.Event, distances Lookup) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, evt := range events {
		if !f.Matches(evt) {
			continue
		}
		i, ok := index[evt.Facility]
		if !ok {
			i = len(groups)
			index[evt.Facility] = i
			groups = append(groups, Group{Facility: evt.Facility})
		}
		groups[i].Events = append(groups[i].Events, evt)
	}

	switch mode, byDistance := f.Sort.Mode(); {
	case byDistance:
		metric := make(map[string]int, len(groups))
		for _, g := range groups {
			metric[g.Facility] = minutesFor(distances, g.Facility, mode)
		}
		sort.SliceStable(groups, func(i, j int) bool {
			return metric[groups[i].Facility] < metric[groups[j].Facility]
		})
	case f.Sort == SortName:
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Facility) < strings.ToLower(groups[j].Facility)
		})
	}

	if f.Limit > 0 && len(f.Facilities) == 0 && len(groups) > f.Limit {
		groups = groups[:f.Limit]
	}

	return groups
}

// String returns a human-readable description of the active criteria.
// Format: "Facilities: Barnum | Activities: Lap Swim | Search: "yoga" | Hide cancelled | Sort: driving | Limit: 5"
func (f *Filter) String() string {
	var parts []string

	if len(f.Facilities) > 0 {
		parts = append(parts, fmt.Sprintf("Facilities: %s", strings.Join(f.Facilities, ", ")))
	}

	if len(f.Activities) > 0 {
		parts = append(parts, fmt.Sprintf("Activities: %s", strings.Join(f.Activities, ", ")))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", s))
	}

	if f.HideCancelled {
		parts = append(parts, "Hide cancelled")
	}

	if f.Sort != "" && f.Sort != SortNone {
		parts = append(parts, fmt.Sprintf("Sort: %s", f.Sort))
	}

	if f.Limit > 0 {
		parts = append(parts, fmt.Sprintf("Limit: %d", f.Limit))
	}

	if len(parts) == 0 {
		return "No active filters"
	}
	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := *f
	clone.Facilities = append([]string{}, f.Facilities...)
	clone.Activities = append([]string{}, f.Activities...)
	return &clone
}

// Facilities returns the distinct facility names in events, sorted ignoring case.
func Facilities(events []event.Event) []string {
	return distinct(events, func(e event.Event) string { return e.Facility })
}

// Activities returns the distinct activity titles in events, sorted ignoring case.
func Activities(events []event.Event) []string {
	return distinct(events, func(e event.Event) string { return e.Title })
}

func distinct(events []event.Event, field func(event.Event) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range events {
		v := strings.TrimSpace(field(e))
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func minutesFor(distances Lookup, name string, mode facility.Mode) int {
	if distances == nil {
		return missingDistance
	}
	if m, ok := distances.Minutes(name, mode); ok {
		return m
	}
	return missingDistance
}

func containsKey(list []string, value string, key func(string) string) bool {
	v := key(value)
	for _, item := range list {
		if key(item) == v {
			return true
		}
	}
	return false
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
