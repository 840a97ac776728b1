// Package viz provides a terminal view of a running particle simulation.
//
// The package implements a live TUI using the Bubble Tea framework:
//
//   - [Model]: steps a simulator on a timer and renders it
//   - [Canvas]: Braille-based pixel canvas for the x/y projection
//   - Particle count and kinetic energy history charts
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	+/-   - Change steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
