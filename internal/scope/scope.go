package scope

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty/function"
)

// Registry holds embedder-supplied functions layered on top of the base
// table. Registration happens before machine build; the safety checker
// treats registered names as callable.
type Registry struct {
	extra map[string]function.Function
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{extra: make(map[string]function.Function)}
}

// Register adds a function under the given name. Names already present in
// the base table, the reserved log() name, or a previous registration are
// rejected so a machine definition always means the same thing.
func (r *Registry) Register(name string, fn function.Function) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if name == LogFuncName {
		return fmt.Errorf("function name %q is reserved", name)
	}
	if _, ok := base[name]; ok {
		return fmt.Errorf("function %q shadows a built-in function", name)
	}
	if _, ok := r.extra[name]; ok {
		return fmt.Errorf("function %q already registered", name)
	}
	r.extra[name] = fn
	return nil
}

// Names returns the sorted registered function names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extra))
	for name := range r.extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a function name is callable from snippets given the
// base table plus the registry. A nil registry means base functions only.
func Has(reg *Registry, name string) bool {
	if name == LogFuncName {
		return true
	}
	if _, ok := base[name]; ok {
		return true
	}
	if reg != nil {
		if _, ok := reg.extra[name]; ok {
			return true
		}
	}
	return false
}

// Functions builds a fresh per-simulator function table: the base table,
// the registry's additions, and a log() implementation bound to the given
// sink. The returned map is owned by the caller.
func Functions(reg *Registry, sink Sink) map[string]function.Function {
	funcs := make(map[string]function.Function, len(base)+8)
	for name, fn := range base {
		funcs[name] = fn
	}
	if reg != nil {
		for name, fn := range reg.extra {
			funcs[name] = fn
		}
	}
	funcs[LogFuncName] = newLogFunc(sink)
	return funcs
}
