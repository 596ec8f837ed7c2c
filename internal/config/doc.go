// Package config defines the format-agnostic description of a state machine
// as produced by an editor or persistence layer, together with the Loader
// interface that format-specific packages (hcldef, yamldef) implement.
//
// The model is purely declarative: snippets are carried as source text and
// are only parsed and vetted when a machine is compiled.
package config
