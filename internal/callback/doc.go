// Package callback turns snippet source text into compiled programs bound
// at run time to a simulator's variable store.
//
// Compilation parses and safety-checks the snippet exactly once. A rejected
// snippet yields a permanently inert program: invoking it logs the block and
// resolves to false (conditions) or does nothing (actions). Runtime faults
// are categorized and returned as tagged results; nothing in this package
// panics across its boundary and no error escapes as control flow.
package callback
