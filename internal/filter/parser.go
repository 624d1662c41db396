package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
)

// SortMode selects how facility groups are ordered.
type SortMode string

const (
	SortNone    SortMode = "none"
	SortName    SortMode = "name"
	SortDriving SortMode = "driving"
	SortBiking  SortMode = "biking"
	SortWalking SortMode = "walking"
)

// ParseSortMode parses a sort mode name. An empty string means SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNone:
		return SortNone, nil
	case SortName, "alpha", "alphabetical":
		return SortName, nil
	case SortDriving:
		return SortDriving, nil
	case SortBiking:
		return SortBiking, nil
	case SortWalking:
		return SortWalking, nil
	}
	return "", fmt.Errorf("invalid sort mode: %q (must be none, name, driving, biking or walking)", s)
}

// Mode returns the travel mode a distance sort uses. ok is false for name and none.
func (s SortMode) Mode() (facility.Mode, bool) {
	switch s {
	case SortDriving:
		return facility.Driving, true
	case SortBiking:
		return facility.Biking, true
	case SortWalking:
		return facility.Walking, true
	}
	return "", false
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromValues builds a filter from URL query parameters:
//
//	facility=Barnum&facility=Ashland  (or facility=Barnum,Ashland)
//	activity=Lap Swim
//	q=yoga
//	hide_cancelled=true
//	sort=driving
//	limit=5
func FromValues(v url.Values) (*Filter, error) {
	f := NewFilter()

	for _, raw := range v["facility"] {
		f.Facilities = append(f.Facilities, SplitList(raw)...)
	}
	for _, raw := range v["activity"] {
		f.Activities = append(f.Activities, SplitList(raw)...)
	}
	f.Search = strings.TrimSpace(v.Get("q"))

	if raw := v.Get("hide_cancelled"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid hide_cancelled: %q", raw)
		}
		f.HideCancelled = hide
	}

	sortMode, err := ParseSortMode(v.Get("sort"))
	if err != nil {
		return nil, err
	}
	f.Sort = sortMode

	if raw := v.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %q", raw)
		}
		f.Limit = limit
	}

	return f, nil
}

// Values encodes the filter as URL query parameters understood by FromValues.
func (f *Filter) Values() url.Values {
	v := url.Values{}
	for _, name := range f.Facilities {
		v.Add("facility", name)
	}
	for _, name := range f.Activities {
		v.Add("activity", name)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("q", s)
	}
	if f.HideCancelled {
		v.Set("hide_cancelled", "true")
	}
	if f.Sort != "" && f.Sort != SortNone {
		v.Set("sort", string(f.Sort))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}
