// Package calendar exports classes to external calendars: iCalendar files and
// Google Calendar "add event" links.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
)

const (
	prodID       = "-//rec-schedule//rec-schedule//EN"
	uidDomain    = "rec-schedule"
	maxLineBytes = 75
	localLayout  = "20060102T150405"
	googleBase   = "https://calendar.google.com/calendar/render"
)

var facilities = facility.Builtin()

// Now is the clock used for DTSTAMP.
var Now = time.Now

// GenerateICS generates an iCalendar file with one VEVENT per event of the day.
// Times are written in tz with a TZID parameter.
func GenerateICS(day event.Day, events []event.Event, tz *time.Location) (string, error) {
	return GenerateWeekICS([]event.Day{{
		Date:        day.Date,
		DisplayDate: day.DisplayDate,
		DayName:     day.DayName,
		Events:      events,
	}}, tz, "")
}

// GenerateWeekICS generates one calendar holding every event of several days.
// name, when set, becomes the calendar's display name.
func GenerateWeekICS(days []event.Day, tz *time.Location, name string) (string, error) {
	if tz == nil {
		tz = time.Local
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	writeLine(&ics, "PRODID:"+prodID)
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	writeLine(&ics, "X-WR-TIMEZONE:"+tz.String())
	if name != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(name))
	}

	stamp := formatUTC(Now())
	for _, day := range days {
		date, err := event.ParseDate(day.Date)
		if err != nil {
			return "", fmt.Errorf("exporting day: %w", err)
		}
		for _, evt := range day.Events {
			writeEvent(&ics, day.Date, date, evt, tz, stamp)
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String(), nil
}

func writeEvent(ics *strings.Builder, isoDate string, date time.Time, evt event.Event, tz *time.Location, stamp string) {
	start, end := eventTimes(date, evt, tz)

	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s@%s", evt.ID(isoDate), uidDomain))
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, fmt.Sprintf("DTSTART;TZID=%s:%s", tz.String(), start.Format(localLayout)))
	// Without DTEND a timed event ends when it starts.
	if end.After(start) {
		writeLine(ics, fmt.Sprintf("DTEND;TZID=%s:%s", tz.String(), end.Format(localLayout)))
	}
	writeLine(ics, "SUMMARY:"+escapeICS(summary(evt)))
	if d := description(evt); d != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(d))
	}
	writeLine(ics, "LOCATION:"+escapeICS(location(evt.Facility)))
	if evt.Category != "" {
		writeLine(ics, "CATEGORIES:"+escapeICS(evt.Category))
	}
	if evt.Cancelled {
		ics.WriteString("STATUS:CANCELLED\r\n")
	} else {
		ics.WriteString("STATUS:CONFIRMED\r\n")
	}
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// GoogleCalendarURL returns a link that opens Google Calendar's new-event form
// prefilled with the class.
func GoogleCalendarURL(day event.Day, evt event.Event, tz *time.Location) (string, error) {
	if tz == nil {
		tz = time.Local
	}
	date, err := event.ParseDate(day.Date)
	if err != nil {
		return "", fmt.Errorf("building calendar link: %w", err)
	}
	start, end := eventTimes(date, evt, tz)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", summary(evt))
	q.Set("dates", start.Format(localLayout)+"/"+end.Format(localLayout))
	q.Set("ctz", tz.String())
	q.Set("location", location(evt.Facility))
	if d := description(evt); d != "" {
		q.Set("details", d)
	}
	return googleBase + "?" + q.Encode(), nil
}

func eventTimes(date time.Time, evt event.Event, tz *time.Location) (time.Time, time.Time) {
	startMin, endMin := evt.Span()
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, tz)
	return midnight.Add(time.Duration(startMin) * time.Minute), midnight.Add(time.Duration(endMin) * time.Minute)
}

func summary(evt event.Event) string {
	title := strings.TrimSpace(evt.Title)
	if title == "" {
		title = "Class"
	}
	if evt.Cancelled {
		return "CANCELLED: " + title
	}
	return title
}

func description(evt event.Event) string {
	var lines []string
	if evt.Category != "" {
		lines = append(lines, "Category: "+evt.Category)
	}
	if evt.Studio != "" {
		lines = append(lines, "Studio: "+evt.Studio)
	}
	if evt.Instructor != "" {
		lines = append(lines, "Instructor: "+evt.Instructor)
	}
	if evt.RequiresSignup {
		lines = append(lines, "Registration required")
	}
	if evt.Cancelled {
		lines = append(lines, "This class has been cancelled.")
	}
	return strings.Join(lines, "\n")
}

// location expands a schedule facility name to the center's full name and address.
func location(name string) string {
	f, kind := facilities.Match(name)
	if kind != facility.MatchKey {
		return name
	}
	if f.Address == "" {
		return f.Name
	}
	return f.Name + ", " + f.Address
}

// formatUTC formats a time.Time as an iCalendar UTC datetime string
func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes a content line, folding it at 75 octets without splitting a UTF-8 rune.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineBytes
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space, which counts toward the limit.
		limit = maxLineBytes - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
