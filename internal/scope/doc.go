// Package scope defines the restricted execution context for user-authored
// guard and action snippets: a fixed, enumerated table of cty functions plus
// an optional registry of embedder-supplied additions.
//
// The table is the entire capability surface of the snippet language. There
// is deliberately no function that touches the filesystem, the network, the
// process, or Go reflection, so nothing dangerous is expressible.
package scope
