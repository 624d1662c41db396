package facility

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"driving", Driving, false},
		{"Bicycling", Biking, false},
		{"walk", Walking, false},
		{"transit", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModeSpeeds(t *testing.T) {
	if Driving.SpeedMPH() != 18 || Biking.SpeedMPH() != 10 || Walking.SpeedMPH() != 3 {
		t.Errorf("unexpected speeds: %v %v %v", Driving.SpeedMPH(), Biking.SpeedMPH(), Walking.SpeedMPH())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "1 min"},
		{1, "1 min"},
		{14, "14 mins"},
		{60, "1 hour"},
		{65, "1 hour 5 mins"},
		{121, "2 hours 1 min"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord(3.4567, 11.6, true)
	if r.Miles != 3.5 || r.Minutes != 12 || r.TimeLabel != "12 mins" || !r.Estimated {
		t.Errorf("NewRecord() = %+v", r)
	}
}

func TestDistances_GetSet(t *testing.T) {
	var d Distances
	d.Set(Biking, Record{Miles: 2, Minutes: 12})
	if d.Get(Biking).Minutes != 12 {
		t.Errorf("Get(Biking) = %+v", d.Get(Biking))
	}
	if !d.Get(Driving).IsZero() {
		t.Errorf("Get(Driving) should be zero, got %+v", d.Get(Driving))
	}
}
