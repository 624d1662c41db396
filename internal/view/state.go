package view

import (
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/filter"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
)

// State is what the user has selected: which day, which filters, which travel mode and
// which part of the day is visible.
type State struct {
	WeekIndex int           `json:"week_index"`
	DayIndex  int           `json:"day_index"`
	Filter    filter.Filter `json:"filter"`
	Mode      facility.Mode `json:"mode"`
	Window    layout.Window `json:"window"`
}

// NewState returns the initial state: first day of the first week, no filters,
// driving distances and the default window.
func NewState() State {
	return State{
		Filter: *filter.NewFilter(),
		Mode:   facility.Driving,
		Window: layout.DefaultWindow,
	}
}

// SelectWeek moves to a week and its first day.
func (s State) SelectWeek(index int) State {
	next := s.clone()
	next.WeekIndex = clampIndex(index)
	next.DayIndex = 0
	return next
}

// SelectDay moves to a day within the current week.
func (s State) SelectDay(index int) State {
	next := s.clone()
	next.DayIndex = clampIndex(index)
	return next
}

// WithFilter replaces the filter.
func (s State) WithFilter(f filter.Filter) State {
	next := s
	next.Filter = *f.Clone()
	return next
}

// ToggleFacility adds the facility to the selection, or removes it when already selected.
func (s State) ToggleFacility(name string) State {
	next := s.clone()
	next.Filter.Facilities = toggle(next.Filter.Facilities, name, facility.Key)
	return next
}

// ToggleActivity adds the activity to the selection, or removes it when already selected.
func (s State) ToggleActivity(name string) State {
	next := s.clone()
	next.Filter.Activities = toggle(next.Filter.Activities, name, func(v string) string {
		return strings.ToLower(strings.TrimSpace(v))
	})
	return next
}

// WithSearch sets the search text.
func (s State) WithSearch(text string) State {
	next := s.clone()
	next.Filter.Search = strings.TrimSpace(text)
	return next
}

// WithHideCancelled sets whether cancelled classes are hidden.
func (s State) WithHideCancelled(hide bool) State {
	next := s.clone()
	next.Filter.HideCancelled = hide
	return next
}

// WithSort sets the facility order. A distance sort also selects its travel mode.
func (s State) WithSort(mode filter.SortMode) State {
	next := s.clone()
	next.Filter.Sort = mode
	if m, ok := mode.Mode(); ok {
		next.Mode = m
	}
	return next
}

// WithLimit caps the number of facilities shown; 0 removes the cap.
func (s State) WithLimit(limit int) State {
	next := s.clone()
	if limit < 0 {
		limit = 0
	}
	next.Filter.Limit = limit
	return next
}

// WithMode sets the travel mode whose distance is shown. A distance sort follows it.
func (s State) WithMode(mode facility.Mode) State {
	next := s.clone()
	next.Mode = mode
	if _, byDistance := next.Filter.Sort.Mode(); byDistance {
		next.Filter.Sort = filter.SortMode(mode)
	}
	return next
}

// WithWindow sets the visible time range. Invalid windows are ignored.
func (s State) WithWindow(w layout.Window) State {
	if !w.Valid() {
		return s.clone()
	}
	next := s.clone()
	next.Window = w
	return next
}

// ClearFilters drops every criterion but keeps sort order and limit.
func (s State) ClearFilters() State {
	next := s.clone()
	next.Filter.Facilities = []string{}
	next.Filter.Activities = []string{}
	next.Filter.Search = ""
	next.Filter.HideCancelled = false
	return next
}

func (s State) clone() State {
	next := s
	next.Filter = *s.Filter.Clone()
	return next
}

func toggle(list []string, value string, key func(string) string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	k := key(value)
	out := make([]string, 0, len(list)+1)
	removed := false
	for _, item := range list {
		if key(item) == k {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		out = append(out, value)
	}
	return out
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
