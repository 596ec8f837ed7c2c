// Package machine compiles a declarative machine description into the
// executable structures the simulator walks: validated states, an ordered
// transition table, and snippet programs bound through the callback factory.
//
// Compilation is the only place build errors can surface; a compiled
// Machine is immutable and safe to bind to any number of simulators.
package machine
