// Package layout places a facility's events into side-by-side columns for a day grid.
//
// Arrange works purely in minutes after midnight. Overlapping events get distinct columns,
// and every event in a connected run of overlaps shares one column count, so the cluster
// renders at a uniform width. Block converts a placement into pixel and percent geometry,
// which is where zero-length events get a minimum height.
package layout
