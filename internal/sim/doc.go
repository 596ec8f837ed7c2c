// Package sim implements the hierarchical state machine simulator: a
// single-threaded, synchronous step executor over a compiled machine.
//
// A Simulator owns its current-state pointer, a flat cty variable store, an
// append-only action log drained by the caller, and at most one child
// simulator, which exists exactly while its superstate is active. Every
// Step call runs to completion on the calling goroutine; the engine offers
// no thread-safety guarantees and an embedding application that steps from
// a background goroutine must serialize access itself.
package sim
