package facility

import (
	"fmt"
	"math"
	"strings"
)

// Mode is a travel mode.
type Mode string

const (
	Driving Mode = "driving"
	Biking  Mode = "biking"
	Walking Mode = "walking"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{Driving, Biking, Walking}

// ParseMode accepts a mode name, also tolerating "bicycling" and "walk"/"bike"/"drive".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "driving", "drive", "car":
		return Driving, nil
	case "biking", "bike", "bicycling", "cycling":
		return Biking, nil
	case "walking", "walk", "foot":
		return Walking, nil
	}
	return "", fmt.Errorf("unknown travel mode: %q (must be driving, biking or walking)", s)
}

// SpeedMPH is the average speed assumed when estimating travel time.
func (m Mode) SpeedMPH() float64 {
	switch m {
	case Driving:
		return 18
	case Biking:
		return 10
	case Walking:
		return 3
	}
	return 0
}

// Profile is the openrouteservice profile name for the mode.
func (m Mode) Profile() string {
	switch m {
	case Driving:
		return "driving-car"
	case Biking:
		return "cycling-regular"
	case Walking:
		return "foot-walking"
	}
	return ""
}

// Record is a distance and travel time to one facility for one mode.
type Record struct {
	Miles     float64 `json:"miles"`
	Minutes   int     `json:"minutes"`
	TimeLabel string  `json:"time_label"`
	Estimated bool    `json:"estimated,omitempty"`
}

// IsZero reports whether the record carries no data.
func (r Record) IsZero() bool {
	return r.Miles == 0 && r.Minutes == 0 && r.TimeLabel == ""
}

// Distances holds the records of all modes for one facility.
type Distances struct {
	FacilityID string `json:"facility_id,omitempty"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Driving    Record `json:"driving"`
	Biking     Record `json:"biking"`
	Walking    Record `json:"walking"`
}

// Get returns the record for a mode.
func (d Distances) Get(m Mode) Record {
	switch m {
	case Driving:
		return d.Driving
	case Biking:
		return d.Biking
	case Walking:
		return d.Walking
	}
	return Record{}
}

// Set stores the record for a mode.
func (d *Distances) Set(m Mode, r Record) {
	switch m {
	case Driving:
		d.Driving = r
	case Biking:
		d.Biking = r
	case Walking:
		d.Walking = r
	}
}

// NewRecord builds a record from raw miles and minutes, rounding miles to a tenth.
func NewRecord(miles, minutes float64, estimated bool) Record {
	m := int(math.Round(minutes))
	return Record{
		Miles:     math.Round(miles*10) / 10,
		Minutes:   m,
		TimeLabel: FormatDuration(m),
		Estimated: estimated,
	}
}

// FormatDuration renders minutes the way the Directions API labels durations:
// "1 min", "14 mins", "1 hour 5 mins", "2 hours".
func FormatDuration(minutes int) string {
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return plural(minutes, "min")
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return plural(h, "hour")
	}
	return plural(h, "hour") + " " + plural(m, "min")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
