// Package viz draws a running simulation in the terminal.
//
// Particles are projected orthographically by a [Camera] onto a braille
// [Canvas]; [Model] is a Bubble Tea program that steps the simulation on
// every tick, plots total energy with asciigraph and lists the standard
// metrics beside the view.
//
// # Key Bindings
//
//	a/d w/s q/e - Rotate (yaw, pitch, roll)
//	z/x         - Zoom in / out
//	c           - Reset camera
//	Space       - Pause/Resume simulation
//	n           - Single step while paused
//	t           - Cycle color themes
//	?           - Show help overlay
package viz
