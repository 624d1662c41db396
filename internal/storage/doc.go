// Package storage provides durable key-value persistence for rec-schedule client state.
//
// Each key is stored as its own JSON file (<key>.json) in the data directory, written via a
// temporary file and rename so a reader never sees a partial value. The default location is
// ~/.local/share/rec-schedule/. Absent keys are not an error: Load reports found=false.
package storage
