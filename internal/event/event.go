package event

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes event IDs so they never collide with other v5 UUIDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/rec-schedule/event"))

// Event represents one scheduled class at a facility
type Event struct {
	Facility       string `json:"location"`
	Title          string `json:"class_name"`
	Category       string `json:"category"`
	Studio         string `json:"studio"`
	Instructor     string `json:"instructor"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Cancelled      bool   `json:"cancelled"`
	RequiresSignup bool   `json:"requires_signup"`
}

// rawEvent accepts every field spelling found in day files.
type rawEvent struct {
	Location       string `json:"location"`
	LocationName   string `json:"location_name"`
	ClassName      string `json:"class_name"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Studio         string `json:"studio"`
	Instructor     string `json:"instructor"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Cancelled      bool   `json:"cancelled"`
	RequiresSignup bool   `json:"requires_signup"`
}

// UnmarshalJSON decodes an event, accepting location|location_name and class_name|title.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event{
		Facility:       firstNonEmpty(raw.Location, raw.LocationName),
		Title:          firstNonEmpty(raw.ClassName, raw.Title),
		Category:       raw.Category,
		Studio:         strings.TrimSpace(raw.Studio),
		Instructor:     raw.Instructor,
		StartTime:      raw.StartTime,
		EndTime:        raw.EndTime,
		Cancelled:      raw.Cancelled,
		RequiresSignup: raw.RequiresSignup,
	}
	return nil
}

// ID returns a deterministic identifier for the event on a given date.
// The same class at the same facility and time always yields the same ID.
func (e Event) ID(date string) string {
	key := strings.Join([]string{
		date,
		strings.ToLower(strings.TrimSpace(e.Facility)),
		strings.ToLower(strings.TrimSpace(e.Title)),
		strings.ToLower(strings.TrimSpace(e.StartTime)),
		strings.ToLower(strings.TrimSpace(e.EndTime)),
	}, "|")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// StartMinutes returns the normalized start time in minutes after midnight.
func (e Event) StartMinutes() int {
	return NormalizeClock(e.StartTime)
}

// EndMinutes returns the normalized end time in minutes after midnight.
func (e Event) EndMinutes() int {
	return NormalizeClock(e.EndTime)
}

// Span returns normalized start and end; an end before the start collapses to the start.
func (e Event) Span() (start, end int) {
	start = e.StartMinutes()
	end = e.EndMinutes()
	if end < start {
		end = start
	}
	return start, end
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
