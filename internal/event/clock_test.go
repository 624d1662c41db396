package event

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "bare hour pm", raw: "6pm", want: 18 * 60},
		{name: "hour and minutes", raw: "6:00pm", want: 18 * 60},
		{name: "uppercase with space", raw: "6:00 PM", want: 18 * 60},
		{name: "periods in meridiem", raw: "6p.m.", want: 18 * 60},
		{name: "half past", raw: "6:30pm", want: 18*60 + 30},
		{name: "spaced bare hour", raw: " 6 PM ", want: 18 * 60},
		{name: "morning", raw: "9:15am", want: 9*60 + 15},
		{name: "midnight", raw: "12am", want: 0},
		{name: "twelve thirty am", raw: "12:30am", want: 30},
		{name: "noon", raw: "12pm", want: 12 * 60},
		{name: "twelve forty five pm", raw: "12:45 P.M.", want: 12*60 + 45},
		{name: "last minute", raw: "11:59pm", want: 1439},
		{name: "empty", raw: "", wantErr: true},
		{name: "24 hour clock", raw: "18:00", wantErr: true},
		{name: "hour out of range", raw: "13pm", wantErr: true},
		{name: "minutes out of range", raw: "6:75pm", wantErr: true},
		{name: "garbage", raw: "noonish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) = %d, want error", tt.raw, got)
				}
				if !errors.Is(err, ErrUnparseableTime) {
					t.Errorf("ParseClock(%q) error = %v, want ErrUnparseableTime", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeClock_EquivalentSpellings(t *testing.T) {
	a := NormalizeClock("6pm")
	b := NormalizeClock("6:00pm")
	c := NormalizeClock("6:00 PM")

	if a != 1080 || b != 1080 || c != 1080 {
		t.Errorf("NormalizeClock spellings = %d, %d, %d; want 1080 for all", a, b, c)
	}
}

func TestNormalizeClock_FailureReturnsZero(t *testing.T) {
	if got := NormalizeClock("whenever"); got != 0 {
		t.Errorf("NormalizeClock(whenever) = %d, want 0", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "12:00am"},
		{30, "12:30am"},
		{9 * 60, "9:00am"},
		{12 * 60, "12:00pm"},
		{18*60 + 5, "6:05pm"},
		{1439, "11:59pm"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatClock(tt.minutes); got != tt.want {
				t.Errorf("FormatClock(%d) = %q, want %q", tt.minutes, got, tt.want)
			}
			back, err := ParseClock(tt.want)
			if err != nil || back != tt.minutes {
				t.Errorf("ParseClock(FormatClock(%d)) = %d, %v", tt.minutes, back, err)
			}
		})
	}
}
