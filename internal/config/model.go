package config

// Model is the unified, format-agnostic representation of a loaded machine
// definition file.
type Model struct {
	// Name is the label of the top-level machine block. Informational only.
	Name string

	// Machine is the top-level machine description.
	Machine *MachineDecl
}

// MachineDecl describes one machine: a flat list of states plus the
// transitions between them. Nested machines reuse the same shape.
type MachineDecl struct {
	States      []*StateDecl
	Transitions []*TransitionDecl
}

// StateDecl describes a single state. All snippet fields hold raw source
// text in the restricted expression language; empty means "no action".
type StateDecl struct {
	Name    string
	Initial bool
	Final   bool

	Entry  string
	During string
	Exit   string

	// Sub, when non-nil, marks this state as a superstate whose behavior is
	// the nested machine description.
	Sub *MachineDecl
}

// TransitionDecl describes a directed transition between two declared
// states. Event may be empty (the builder synthesizes an internal name) or
// "*" (matches any delivered event).
type TransitionDecl struct {
	Source string
	Target string
	Event  string
	Guard  string
	Action string
}

// EventWildcard is the event name that matches any delivered event.
const EventWildcard = "*"
