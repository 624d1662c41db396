package layout

import (
	"testing"

	"github.com/pfrederiksen/rec-schedule/internal/event"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"6am-9pm", Window{360, 1260}, false},
		{"5:30am - 10pm", Window{330, 1320}, false},
		{"6am-12am", Window{360, 1440}, false},
		{"9pm-6am", Window{}, true},
		{"6am", Window{}, true},
		{"six-nine", Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWindow(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWindow_StringAndHours(t *testing.T) {
	w := Window{Start: 330, End: 480}
	if got := w.String(); got != "5:30am-8:00am" {
		t.Errorf("String() = %q", got)
	}
	hours := w.Hours()
	if len(hours) != 2 || hours[0] != 6 || hours[1] != 7 {
		t.Errorf("Hours() = %v, want [6 7]", hours)
	}
	if DefaultWindow.String() != "5:00am-10:00pm" {
		t.Errorf("DefaultWindow = %s", DefaultWindow)
	}
}

func TestFitWindow(t *testing.T) {
	events := []event.Event{
		{StartTime: "4:30am", EndTime: "5:15am"},
		{StartTime: "9:00pm", EndTime: "10:20pm"},
		{StartTime: "TBD", EndTime: "TBD"},
	}

	got := FitWindow(events, DefaultWindow)
	want := Window{Start: 4 * 60, End: 23 * 60}
	if got != want {
		t.Errorf("FitWindow() = %+v, want %+v", got, want)
	}

	if got := FitWindow(nil, DefaultWindow); got != DefaultWindow {
		t.Errorf("FitWindow(nil) = %+v, want default", got)
	}
}

func TestBlock(t *testing.T) {
	w := Window{Start: 6 * 60, End: 22 * 60}

	tests := []struct {
		name       string
		pos        Position
		start, end int
		want       Rect
	}{
		{"one hour, full width", Position{0, 1}, 7 * 60, 8 * 60, Rect{Top: 60, Height: 60, Left: 0, Width: 100}},
		{"second of two columns", Position{1, 2}, 6*60 + 30, 7 * 60, Rect{Top: 30, Height: 30, Left: 50, Width: 50}},
		{"zero duration gets minimum height", Position{0, 1}, 9 * 60, 9 * 60, Rect{Top: 180, Height: 20, Left: 0, Width: 100}},
		{"clipped at window start", Position{0, 1}, 5 * 60, 7 * 60, Rect{Top: 0, Height: 60, Left: 0, Width: 100}},
		{"bad total columns", Position{0, 0}, 7 * 60, 8 * 60, Rect{Top: 60, Height: 60, Left: 0, Width: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Block(tt.pos, tt.start, tt.end, w, 60, 20)
			if got != tt.want {
				t.Errorf("Block() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
