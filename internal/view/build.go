package view

import (
	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
)

// Grid geometry used for event blocks.
const (
	HourHeight     = 60.0
	MinBlockHeight = 20.0
)

// Distances provides per-facility travel data. *distance.Result implements it.
type Distances interface {
	Minutes(name string, mode facility.Mode) (int, bool)
	Record(name string, mode facility.Mode) (facility.Record, bool)
}

// Describer looks up a class description by title. *descriptions.Catalog implements it.
type Describer interface {
	Lookup(title string) (string, bool)
}

// Placed is an event with its computed placement in the day grid.
type Placed struct {
	Event      event.Event     `json:"event"`
	ID         string          `json:"id"`
	Start      int             `json:"start"`
	End        int             `json:"end"`
	StartLabel string          `json:"start_label"`
	EndLabel   string          `json:"end_label"`
	Position   layout.Position `json:"position"`
	Rect       layout.Rect     `json:"rect"`

	Description string `json:"description,omitempty"`
}

// FacilityView is one facility column of the day grid.
type FacilityView struct {
	Name     string           `json:"name"`
	Distance *facility.Record `json:"distance,omitempty"`
	Events   []Placed         `json:"events"`
}

// DayView is the renderable model of one day.
type DayView struct {
	Date        string         `json:"date"`
	DisplayDate string         `json:"display_date"`
	DayName     string         `json:"day_name"`
	Mode        facility.Mode  `json:"mode"`
	Window      layout.Window  `json:"window"`
	Hours       []int          `json:"hours"`
	Filter      string         `json:"filter"`
	Groups      []FacilityView `json:"groups"`
	EventCount  int            `json:"event_count"`

	// Empty is set when no event survives the filter.
	Empty bool `json:"empty"`
}

// Build filters the day's events by state, then orders and places each facility's events.
// distances may be nil.
func Build(day event.Day, state State, distances Distances) DayView {
	v := DayView{
		Date:        day.Date,
		DisplayDate: day.DisplayDate,
		DayName:     day.DayName,
		Mode:        state.Mode,
		Window:      state.Window,
		Hours:       state.Window.Hours(),
		Filter:      state.Filter.String(),
		Groups:      []FacilityView{},
	}

	groups := state.Filter.Apply(day.Events, distances)
	for _, g := range groups {
		fv := FacilityView{Name: g.Facility}
		if distances != nil {
			if rec, ok := distances.Record(g.Facility, state.Mode); ok {
				r := rec
				fv.Distance = &r
			}
		}

		positions := layout.Arrange(g.Events, state.Window.Start, state.Window.End)
		for _, i := range layout.Order(g.Events) {
			e := g.Events[i]
			start, end := e.Span()
			fv.Events = append(fv.Events, Placed{
				Event:      e,
				ID:         e.ID(day.Date),
				Start:      start,
				End:        end,
				StartLabel: event.FormatClock(start),
				EndLabel:   event.FormatClock(end),
				Position:   positions[i],
				Rect:       layout.Block(positions[i], start, end, state.Window, HourHeight, MinBlockHeight),
			})
		}

		v.EventCount += len(fv.Events)
		v.Groups = append(v.Groups, fv)
	}

	v.Empty = v.EventCount == 0
	return v
}

// Describe attaches class descriptions to every placed event that has one.
func (v *DayView) Describe(d Describer) {
	if d == nil {
		return
	}
	for gi := range v.Groups {
		events := v.Groups[gi].Events
		for i := range events {
			if text, ok := d.Lookup(events[i].Event.Title); ok {
				events[i].Description = text
			}
		}
	}
}
