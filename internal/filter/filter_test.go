package filter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
)

// minutesTable is a Lookup keyed by facility name, for driving only.
type minutesTable map[string]int

func (m minutesTable) Minutes(name string, mode facility.Mode) (int, bool) {
	if mode != facility.Driving {
		return 0, false
	}
	v, ok := m[name]
	return v, ok
}

func sampleEvents() []event.Event {
	return []event.Event{
		{Facility: "Ashland", Title: "Lap Swim", Category: "Aquatics", StartTime: "6:00am", EndTime: "7:00am"},
		{Facility: "Barnum", Title: "Yoga Flow", Category: "Fitness", StartTime: "9:00am", EndTime: "10:00am"},
		{Facility: "Ashland", Title: "Zumba", Category: "Fitness", StartTime: "5:30pm", EndTime: "6:30pm", Cancelled: true},
		{Facility: "Highland", Title: "Lap Swim", Category: "Aquatics", StartTime: "7:00am", EndTime: "8:00am"},
		{Facility: "Barnum", Title: "Pickleball", Category: "Sports", StartTime: "1:00pm", EndTime: "3:00pm"},
	}
}

func groupNames(groups []Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Facility
	}
	return names
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"empty filter", NewFilter(), true},
		{"sort and limit only", &Filter{Sort: SortDriving, Limit: 5}, true},
		{"whitespace search", &Filter{Search: "  "}, true},
		{"facility", &Filter{Facilities: []string{"Barnum"}}, false},
		{"activity", &Filter{Activities: []string{"Lap Swim"}}, false},
		{"search", &Filter{Search: "swim"}, false},
		{"hide cancelled", &Filter{HideCancelled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name       string
		filter     *Filter
		wantGroups []string
		wantEvents int
	}{
		{
			name:       "empty filter groups by first appearance",
			filter:     NewFilter(),
			wantGroups: []string{"Ashland", "Barnum", "Highland"},
			wantEvents: 5,
		},
		{
			name:       "hide cancelled",
			filter:     &Filter{HideCancelled: true},
			wantGroups: []string{"Ashland", "Barnum", "Highland"},
			wantEvents: 4,
		},
		{
			name:       "facility selection",
			filter:     &Filter{Facilities: []string{"barnum"}},
			wantGroups: []string{"Barnum"},
			wantEvents: 2,
		},
		{
			name:       "activity is exact ignoring case",
			filter:     &Filter{Activities: []string{"lap swim"}},
			wantGroups: []string{"Ashland", "Highland"},
			wantEvents: 2,
		},
		{
			name:       "activity substring does not match",
			filter:     &Filter{Activities: []string{"Swim"}},
			wantGroups: []string{},
			wantEvents: 0,
		},
		{
			name:       "search matches category",
			filter:     &Filter{Search: "FITNESS"},
			wantGroups: []string{"Barnum", "Ashland"},
			wantEvents: 2,
		},
		{
			name:       "search matches facility",
			filter:     &Filter{Search: "high"},
			wantGroups: []string{"Highland"},
			wantEvents: 1,
		},
		{
			name:       "name sort",
			filter:     &Filter{Sort: SortName},
			wantGroups: []string{"Ashland", "Barnum", "Highland"},
			wantEvents: 5,
		},
		{
			name:       "limit",
			filter:     &Filter{Limit: 2},
			wantGroups: []string{"Ashland", "Barnum"},
			wantEvents: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := tt.filter.Apply(sampleEvents(), nil)

			names := groupNames(groups)
			if len(names) != len(tt.wantGroups) || (len(names) > 0 && !reflect.DeepEqual(names, tt.wantGroups)) {
				t.Errorf("groups = %v, want %v", names, tt.wantGroups)
			}

			total := 0
			for _, g := range groups {
				total += len(g.Events)
			}
			if total != tt.wantEvents {
				t.Errorf("events = %d, want %d", total, tt.wantEvents)
			}
		})
	}
}

func TestFilter_ApplyKeepsEventOrderWithinGroup(t *testing.T) {
	groups := NewFilter().Apply(sampleEvents(), nil)
	ashland := groups[0]
	if ashland.Events[0].Title != "Lap Swim" || ashland.Events[1].Title != "Zumba" {
		t.Errorf("Ashland events out of input order: %+v", ashland.Events)
	}
}

func TestFilter_DistanceSort(t *testing.T) {
	events := []event.Event{
		{Facility: "Far", Title: "A"},
		{Facility: "Unknown One", Title: "B"},
		{Facility: "Near", Title: "C"},
		{Facility: "Unknown Two", Title: "D"},
		{Facility: "Middle", Title: "E"},
		{Facility: "Tied", Title: "F"},
	}
	distances := minutesTable{"Far": 40, "Near": 5, "Middle": 12, "Tied": 12}

	got := groupNames((&Filter{Sort: SortDriving}).Apply(events, distances))
	want := []string{"Near", "Middle", "Tied", "Far", "Unknown One", "Unknown Two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("driving sort = %v, want %v", got, want)
	}

	// No walking data at all keeps first-appearance order.
	got = groupNames((&Filter{Sort: SortWalking}).Apply(events, distances))
	want = []string{"Far", "Unknown One", "Near", "Unknown Two", "Middle", "Tied"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walking sort = %v, want %v", got, want)
	}

	// Name sort ignores distances.
	got = groupNames((&Filter{Sort: SortName}).Apply(events, distances))
	want = []string{"Far", "Middle", "Near", "Tied", "Unknown One", "Unknown Two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("name sort = %v, want %v", got, want)
	}
}

func TestFilter_SelectionBypassesLimit(t *testing.T) {
	names := []string{"Ashland", "Athmar", "Aztlan", "Barnum", "Carla Madison", "Glenarm", "Highland", "Rude"}
	var events []event.Event
	for _, name := range names {
		events = append(events, event.Event{Facility: name, Title: "Open Gym", StartTime: "9am", EndTime: "10am"})
	}

	limited := (&Filter{Limit: 5}).Apply(events, nil)
	if len(limited) != 5 {
		t.Errorf("limit 5 over 8 facilities gave %d groups", len(limited))
	}

	selected := (&Filter{Facilities: []string{"Barnum"}, Limit: 5}).Apply(events, nil)
	if len(selected) != 1 || selected[0].Facility != "Barnum" {
		t.Errorf("selected = %v, want [Barnum]", groupNames(selected))
	}

	many := (&Filter{Facilities: names[:7], Limit: 5}).Apply(events, nil)
	if len(many) != 7 {
		t.Errorf("7 selected facilities with limit 5 gave %d groups, want 7", len(many))
	}
}

func TestFilter_ApplyIsIdempotent(t *testing.T) {
	events := sampleEvents()
	original := append([]event.Event{}, events...)
	f := &Filter{HideCancelled: true, Search: "a", Sort: SortDriving, Limit: 2}
	distances := minutesTable{"Highland": 3, "Barnum": 9}

	first := f.Apply(events, distances)
	second := f.Apply(events, distances)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Apply not idempotent:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(events, original) {
		t.Error("Apply mutated its input")
	}
}

func TestFilter_String(t *testing.T) {
	if got := NewFilter().String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}

	f := &Filter{
		Facilities:    []string{"Barnum", "Ashland"},
		Activities:    []string{"Lap Swim"},
		Search:        "yoga",
		HideCancelled: true,
		Sort:          SortDriving,
		Limit:         5,
	}
	got := f.String()
	for _, want := range []string{"Facilities: Barnum, Ashland", "Activities: Lap Swim", `Search: "yoga"`, "Hide cancelled", "Sort: driving", "Limit: 5"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestFilter_Clone(t *testing.T) {
	f := &Filter{Facilities: []string{"Barnum"}, Activities: []string{"Yoga"}, Limit: 3}
	clone := f.Clone()
	clone.Facilities[0] = "Ashland"
	clone.Activities = append(clone.Activities, "Zumba")

	if f.Facilities[0] != "Barnum" || len(f.Activities) != 1 {
		t.Errorf("Clone shares memory with original: %+v", f)
	}
	if clone.Limit != 3 {
		t.Errorf("clone.Limit = %d", clone.Limit)
	}
}

func TestOptions(t *testing.T) {
	events := append(sampleEvents(), event.Event{Facility: "ashland", Title: "lap swim"})

	if got, want := Facilities(events), []string{"Ashland", "Barnum", "Highland"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Facilities() = %v, want %v", got, want)
	}
	if got, want := Activities(events), []string{"Lap Swim", "Pickleball", "Yoga Flow", "Zumba"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Activities() = %v, want %v", got, want)
	}
	if got := Activities(nil); len(got) != 0 {
		t.Errorf("Activities(nil) = %v", got)
	}
}
