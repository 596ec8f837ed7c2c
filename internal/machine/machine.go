package machine

import (
	"fmt"

	"github.com/vk/fsmrig/internal/callback"
)

// DefinitionError is the distinguished fatal error for malformed machine
// descriptions. An engine must not be constructed from a definition that
// produced one.
type DefinitionError struct {
	Detail string
}

func (e *DefinitionError) Error() string {
	return "invalid machine definition: " + e.Detail
}

func definitionErrorf(format string, args ...any) error {
	return &DefinitionError{Detail: fmt.Sprintf(format, args...)}
}

// State is one compiled state. Snippet programs are nil when the
// description carried no code for that hook.
type State struct {
	Name    string
	Initial bool
	Final   bool

	Entry  *callback.Program
	During *callback.Program
	Exit   *callback.Program

	// Sub is the compiled nested machine for a superstate. The simulator
	// instantiates a child engine from it lazily, on entry.
	Sub *Machine
}

// Superstate reports whether the state hosts a nested machine.
func (s *State) Superstate() bool { return s.Sub != nil }

// Transition is one compiled transition. Internal transitions carry a
// synthesized event name which is never listed to callers.
type Transition struct {
	Index    int
	Source   string
	Target   string
	Event    string
	Internal bool
	Wildcard bool

	Guard  *callback.Program
	Action *callback.Program
}

// Matches reports whether a delivered event fires this transition: exact
// name, declared wildcard, or an eventless transition, which matches any
// delivered event.
func (t *Transition) Matches(event string) bool {
	return t.Event == event || t.Wildcard || t.Internal
}

// Machine is a compiled, immutable machine definition.
type Machine struct {
	States      map[string]*State
	Order       []string
	Initial     string
	Transitions []*Transition

	bySource map[string][]*Transition
	notes    []string
}

// InitialState returns the compiled initial state.
func (m *Machine) InitialState() *State {
	return m.States[m.Initial]
}

// From returns the transitions leaving a state, in declaration order.
func (m *Machine) From(state string) []*Transition {
	return m.bySource[state]
}

// BuildNotes returns the decisions and warnings recorded during compilation
// (initial-state promotion, synthesized events, blocked snippets). A
// simulator replays them into its action log when it binds the machine.
func (m *Machine) BuildNotes() []string {
	notes := make([]string, len(m.notes))
	copy(notes, m.notes)
	return notes
}
