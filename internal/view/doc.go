// Package view holds the application state of a schedule viewer and builds the
// renderable model of one day from it.
//
// State is a value. Every transition returns a new State and leaves the receiver
// untouched, so callers can keep history or share a State between goroutines freely.
package view
