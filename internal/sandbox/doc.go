// Package sandbox parses user-authored guard and action snippets and
// statically vets them before any evaluation occurs.
//
// The snippet language is HCL expression syntax: a condition is a single
// expression, an action is an ordered sequence of `name = expression`
// assignments. Vetting rejects calls to functions outside the restricted
// scope, attribute-style traversals into values, and reserved identifiers.
// All violations are collected, not just the first; a snippet that fails to
// parse is rejected with a distinct syntax-error shape.
package sandbox
