package event

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDay_UnmarshalSpellings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "snake case",
			input: `{"date":"2025-11-24","display_date":"Monday, November 24, 2025","day_name":"Monday","events":[]}`,
		},
		{
			name:  "camel case",
			input: `{"date":"2025-11-24","displayDate":"Monday, November 24, 2025","dayName":"Monday","events":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var day Day
			if err := json.Unmarshal([]byte(tt.input), &day); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if day.DayName != "Monday" {
				t.Errorf("DayName = %q, want Monday", day.DayName)
			}
			if day.DisplayDate != "Monday, November 24, 2025" {
				t.Errorf("DisplayDate = %q", day.DisplayDate)
			}
		})
	}
}

func TestDay_ZeroEventsIsValid(t *testing.T) {
	var day Day
	if err := json.Unmarshal([]byte(`{"date":"2025-11-27","day_name":"Thursday"}`), &day); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if day.Events == nil || len(day.Events) != 0 {
		t.Errorf("Events = %v, want empty non-nil slice", day.Events)
	}
}

func TestDay_RoundTrip(t *testing.T) {
	in := Day{
		Date:        "2025-11-24",
		DisplayDate: "Monday, November 24, 2025",
		DayName:     "Monday",
		Events: []Event{
			{Facility: "Ashland", Title: "Zumba", StartTime: "9:00am", EndTime: "10:00am", Cancelled: true},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out Day
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.DisplayDate != in.DisplayDate || len(out.Events) != 1 || out.Events[0] != in.Events[0] {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestWeekManifest(t *testing.T) {
	input := `{"days":[
		{"date":"2025-11-24","day_name":"Monday","display_date":"Monday, November 24, 2025","event_count":12,"file":"denver_2025_11_24.json"},
		{"date":"2025-11-25","dayName":"Tuesday","displayDate":"Tuesday, November 25, 2025","file":"denver_2025_11_25.json"}
	]}`

	var week WeekManifest
	if err := json.Unmarshal([]byte(input), &week); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := week.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if week.Days[1].DayName != "Tuesday" {
		t.Errorf("Days[1].DayName = %q, want Tuesday", week.Days[1].DayName)
	}
	if got := week.Find("2025-11-25"); got != 1 {
		t.Errorf("Find() = %d, want 1", got)
	}
	if got := week.Find("2025-12-01"); got != -1 {
		t.Errorf("Find(missing) = %d, want -1", got)
	}

	week.Days = append(week.Days, DayRef{Date: "11/26/2025", File: "x.json"})
	if err := week.Validate(); err == nil {
		t.Error("Validate() should reject non-ISO dates")
	}
}

func TestMasterManifest(t *testing.T) {
	input := `{"current_week":1,"weeks":[{"file":"week_a.json","displayRange":"Nov 17 - Nov 23"},{"file":"week_b.json","display_range":"Nov 24 - Nov 30"}]}`

	var master MasterManifest
	if err := json.Unmarshal([]byte(input), &master); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if master.CurrentWeek != 1 || len(master.Weeks) != 2 {
		t.Fatalf("unexpected manifest: %+v", master)
	}
	if master.Weeks[1].DisplayRange != "Nov 24 - Nov 30" {
		t.Errorf("Weeks[1].DisplayRange = %q", master.Weeks[1].DisplayRange)
	}
}

func TestDayFileName(t *testing.T) {
	if got := DayFileName("2025-11-24"); got != "denver_2025_11_24.json" {
		t.Errorf("DayFileName() = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-11-24", false},
		{" 2025-11-24 ", false},
		{"11/24/2025", true},
		{"2025-02-30", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDate) {
				t.Errorf("error should wrap ErrInvalidDate: %v", err)
			}
		})
	}
}
