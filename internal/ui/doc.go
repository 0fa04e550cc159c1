// Package ui implements the terminal now-playing view.
//
// The [Model] polls the configured [services.Player] on a fixed interval and
// renders the current track with a progress readout. A spinner runs while the
// first snapshot is in flight.
package ui
