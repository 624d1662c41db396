// Package event provides the schedule data model for rec-schedule.
//
// An Event is one scheduled class at a facility as it appears in a day's data file. Days are
// grouped into week manifests, and an optional master manifest indexes several weeks. The
// package also owns the time-of-day normalizer that turns loose strings such as "6pm" or
// "6:30 P.M." into minutes after midnight.
package event
