package layout

import (
	"sort"

	"github.com/pfrederiksen/rec-schedule/internal/event"
)

// Position is an event's column within its facility and how many columns its overlap
// cluster spans.
type Position struct {
	Column       int `json:"column"`
	TotalColumns int `json:"total_columns"`
}

type interval struct {
	index      int
	start, end int
}

func overlaps(a, b interval) bool {
	return a.start < b.end && a.end > b.start
}

// Order returns event indexes sorted by start time; equal starts keep input order.
func Order(events []event.Event) []int {
	starts := make([]int, len(events))
	idx := make([]int, len(events))
	for i, e := range events {
		starts[i], _ = e.Span()
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return starts[idx[a]] < starts[idx[b]]
	})
	return idx
}

// Arrange assigns a column to every event and returns positions parallel to events.
//
// Events entirely outside [visibleStart, visibleEnd] get {0, 1} and do not affect others.
// The rest are placed in start order into the lowest column free of still-running events.
// Zero-length events are treated as one minute long when checking overlap.
// TotalColumns is then spread across each overlap cluster until it is uniform.
func Arrange(events []event.Event, visibleStart, visibleEnd int) []Position {
	positions := make([]Position, len(events))
	for i := range positions {
		positions[i] = Position{Column: 0, TotalColumns: 1}
	}

	var placed []interval
	for _, i := range Order(events) {
		start, end := events[i].Span()
		if end <= visibleStart || start >= visibleEnd {
			continue
		}
		// A zero-length event still draws at minimum height, so it occupies its start minute.
		if end == start {
			end = start + 1
		}
		placed = append(placed, interval{index: i, start: start, end: end})
	}

	columns := make([]int, len(placed))
	var active []int // positions in placed
	for p, iv := range placed {
		kept := active[:0]
		for _, a := range active {
			if placed[a].end > iv.start {
				kept = append(kept, a)
			}
		}
		active = kept

		used := make(map[int]bool, len(active))
		for _, a := range active {
			used[columns[a]] = true
		}
		col := 0
		for used[col] {
			col++
		}
		columns[p] = col
		active = append(active, p)
	}

	total := make([]int, len(placed))
	for p := range placed {
		maxCol := columns[p]
		for q := range placed {
			if p != q && overlaps(placed[p], placed[q]) && columns[q] > maxCol {
				maxCol = columns[q]
			}
		}
		total[p] = maxCol + 1
	}

	for changed := true; changed; {
		changed = false
		for p := range placed {
			for q := range placed {
				if p != q && overlaps(placed[p], placed[q]) && total[q] > total[p] {
					total[p] = total[q]
					changed = true
				}
			}
		}
	}

	for p, iv := range placed {
		positions[iv.index] = Position{Column: columns[p], TotalColumns: total[p]}
	}
	return positions
}
