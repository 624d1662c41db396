// Package cli implements the command-line interface for rec-schedule.
//
// The cli package provides the Cobra-based CLI: showing a filtered, laid-out day (text, JSON
// or an HTML grid), listing weeks, resolving facility distances, exporting iCalendar files,
// running the HTTP server and managing persisted preferences. Configuration comes from the
// config package; flags given on the command line override it.
package cli
