package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/rec-schedule/internal/calendar"
	"github.com/pfrederiksen/rec-schedule/internal/event"
)

func main() {
	// Create a sample day
	day := event.Day{
		Date:        time.Now().Format(event.DateLayout),
		DisplayDate: time.Now().Format("January 2"),
		DayName:     time.Now().Weekday().String(),
		Events: []event.Event{
			{
				Facility:   "Ashland",
				Title:      "Vinyasa Yoga",
				Category:   "Fitness",
				Studio:     "Studio A",
				Instructor: "Kim",
				StartTime:  "6:00pm",
				EndTime:    "7:00pm",
			},
			{
				Facility:  "Barnum",
				Title:     "Lap Swim",
				Category:  "Aquatics",
				StartTime: "6:00am",
				EndTime:   "8:00am",
				Cancelled: true,
			},
		},
	}

	tz, err := time.LoadLocation("America/Denver")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	// Generate .ics file
	icsContent, err := calendar.GenerateICS(day, day.Events, tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	// Write to file (owner read/write only for security)
	filename := "test-rec-schedule.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	link, err := calendar.GoogleCalendarURL(day, day.Events[0], tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building link: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("3. Or open the Google Calendar link:")
	fmt.Println("  ", link)
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
