// Package schedule loads week manifests and day files from a data directory or a web
// server.
//
// The data layout is the one written by the schedule generator:
//
//	manifest.json            master index of weeks (optional)
//	week_manifest.json       days of the current week
//	denver_2025_01_13.json   one file per day
//
// A missing file or non-2xx response is reported as ErrDataUnavailable so callers can
// show an empty state instead of failing.
package schedule
