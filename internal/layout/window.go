package layout

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/event"
)

const minutesPerDay = 24 * 60

// Window is the visible time range of a day grid, in minutes after midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DefaultWindow shows 5:00am to 10:00pm.
var DefaultWindow = Window{Start: 5 * 60, End: 22 * 60}

// ParseWindow parses a range such as "6am-9pm" or "5:30am - 10pm".
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window %q: expected START-END", s)
	}

	start, err := event.ParseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window start: %w", err)
	}
	end, err := event.ParseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window end: %w", err)
	}
	if end == 0 {
		end = minutesPerDay
	}

	w := Window{Start: start, End: end}
	if !w.Valid() {
		return Window{}, fmt.Errorf("invalid window %q: end must be after start", s)
	}
	return w, nil
}

// Valid reports whether the window is non-empty and within one day.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.End <= minutesPerDay && w.End > w.Start
}

// String formats the window as "5:00am-10:00pm".
func (w Window) String() string {
	return event.FormatClock(w.Start) + "-" + event.FormatClock(w.End)
}

// Hours returns the whole hours at or after Start and before End, for grid labels.
func (w Window) Hours() []int {
	var hours []int
	for h := (w.Start + 59) / 60; h*60 < w.End; h++ {
		hours = append(hours, h)
	}
	return hours
}

// FitWindow widens base to whole hours covering every event with a parseable start time.
func FitWindow(events []event.Event, base Window) Window {
	w := base
	for _, e := range events {
		if _, err := event.ParseClock(e.StartTime); err != nil {
			continue
		}
		start, end := e.Span()
		if floor := start / 60 * 60; floor < w.Start {
			w.Start = floor
		}
		if ceil := (end + 59) / 60 * 60; ceil > w.End {
			w.End = ceil
		}
	}
	if w.Start < 0 {
		w.Start = 0
	}
	if w.End > minutesPerDay {
		w.End = minutesPerDay
	}
	return w
}

// Rect is the on-screen box of an event: Top and Height in pixels from the top of the
// grid, Left and Width in percent of the facility column.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// Block computes the box for an event spanning [start, end] placed at pos.
// The visible part is clipped to w, and the height is at least minHeight.
func Block(pos Position, start, end int, w Window, hourHeight, minHeight float64) Rect {
	if end < start {
		end = start
	}
	if start < w.Start {
		start = w.Start
	}
	if end > w.End {
		end = w.End
	}
	if end < start {
		end = start
	}

	total := pos.TotalColumns
	if total < 1 {
		total = 1
	}

	height := float64(end-start) / 60 * hourHeight
	if height < minHeight {
		height = minHeight
	}

	return Rect{
		Top:    float64(start-w.Start) / 60 * hourHeight,
		Height: height,
		Left:   float64(pos.Column) * 100 / float64(total),
		Width:  100 / float64(total),
	}
}
