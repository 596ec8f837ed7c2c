// Package app wires the pieces of the simulator CLI together: logger
// construction, definition loading, machine build, and driver-script
// execution against the resulting simulator.
package app
