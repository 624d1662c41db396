package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date format used by every manifest and day file.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that are not ISO YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// Day is one day's schedule as stored in a day data file.
type Day struct {
	Date        string  `json:"date"`
	DisplayDate string  `json:"display_date"`
	DayName     string  `json:"day_name"`
	Events      []Event `json:"events"`
}

// DayRef describes one day entry of a week manifest.
type DayRef struct {
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	DayName     string `json:"day_name"`
	File        string `json:"file"`
	EventCount  int    `json:"event_count,omitempty"`
}

// WeekManifest lists the days of one scraped week in order.
type WeekManifest struct {
	Days []DayRef `json:"days"`
}

// WeekRef describes one week entry of the master manifest.
type WeekRef struct {
	File         string `json:"file"`
	DisplayRange string `json:"displayRange"`
}

// MasterManifest indexes multiple weeks.
type MasterManifest struct {
	CurrentWeek int       `json:"current_week"`
	Weeks       []WeekRef `json:"weeks"`
}

// dayHeader accepts camelCase and snake_case spellings of the day fields.
type dayHeader struct {
	Date             string `json:"date"`
	DisplayDate      string `json:"displayDate"`
	DisplayDateSnake string `json:"display_date"`
	DayName          string `json:"dayName"`
	DayNameSnake     string `json:"day_name"`
}

// UnmarshalJSON decodes a day file, accepting both field spellings.
func (d *Day) UnmarshalJSON(data []byte) error {
	var payload struct {
		dayHeader
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*d = Day{
		Date:        payload.Date,
		DisplayDate: firstNonEmpty(payload.DisplayDate, payload.DisplayDateSnake),
		DayName:     firstNonEmpty(payload.DayName, payload.DayNameSnake),
		Events:      payload.Events,
	}
	if d.Events == nil {
		d.Events = []Event{}
	}
	return nil
}

// UnmarshalJSON decodes a week manifest entry, accepting both field spellings.
func (r *DayRef) UnmarshalJSON(data []byte) error {
	var payload struct {
		dayHeader
		File       string `json:"file"`
		EventCount int    `json:"event_count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*r = DayRef{
		Date:        payload.Date,
		DisplayDate: firstNonEmpty(payload.DisplayDate, payload.DisplayDateSnake),
		DayName:     firstNonEmpty(payload.DayName, payload.DayNameSnake),
		File:        payload.File,
		EventCount:  payload.EventCount,
	}
	return nil
}

// UnmarshalJSON decodes a master manifest week entry; display_range is accepted too.
func (w *WeekRef) UnmarshalJSON(data []byte) error {
	var payload struct {
		File              string `json:"file"`
		DisplayRange      string `json:"displayRange"`
		DisplayRangeSnake string `json:"display_range"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*w = WeekRef{
		File:         payload.File,
		DisplayRange: firstNonEmpty(payload.DisplayRange, payload.DisplayRangeSnake),
	}
	return nil
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	return t, nil
}

// DayFileName returns the conventional data file name for an ISO date:
// "2025-11-24" becomes "denver_2025_11_24.json".
func DayFileName(date string) string {
	return "denver_" + strings.ReplaceAll(date, "-", "_") + ".json"
}

// Find returns the index of the day with the given date, or -1.
func (w *WeekManifest) Find(date string) int {
	for i, d := range w.Days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// Validate checks that every day carries an ISO date and a file reference.
func (w *WeekManifest) Validate() error {
	for i, d := range w.Days {
		if _, err := ParseDate(d.Date); err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
		if d.File == "" {
			return fmt.Errorf("day %d (%s): missing file", i, d.Date)
		}
	}
	return nil
}
