// Package preferences manages persisted client state for rec-schedule.
//
// Two preferences are kept, each under its own storage key: the display theme and the
// routing API key. The API key is sealed with a passphrase when one is configured. Both
// are optional; an absent value yields the default theme and an empty key.
package preferences
