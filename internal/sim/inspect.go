package sim

import (
	"sort"

	"github.com/vk/fsmrig/internal/ctyutil"
)

// CurrentState returns the externally visible state name. With an active
// sub-machine the format is "Parent (Child)", recursively.
func (s *Simulator) CurrentState() string {
	if s.current == nil {
		return "Uninitialized"
	}
	name := s.current.Name
	if s.child != nil {
		name += " (" + s.child.CurrentState() + ")"
	}
	return name
}

// LeafState returns the innermost active state name with no parent
// qualifier, the node a diagram would highlight.
func (s *Simulator) LeafState() string {
	if s.child != nil {
		return s.child.LeafState()
	}
	if s.current == nil {
		return "Uninitialized"
	}
	return s.current.Name
}

// Variables returns a native-Go snapshot of the variable store. The copy is
// deep; caller mutation never reaches the live store.
func (s *Simulator) Variables() map[string]any {
	snapshot := make(map[string]any, len(s.vars))
	for name, val := range s.vars {
		native, err := ctyutil.Native(val)
		if err != nil {
			snapshot[name] = ctyutil.Render(val)
			continue
		}
		snapshot[name] = native
	}
	return snapshot
}

// DrainLog atomically returns and clears the accumulated log lines. Calling
// it twice without an intervening step yields an empty second result.
func (s *Simulator) DrainLog() []string {
	out := s.logBuf
	s.logBuf = nil
	return out
}

// Halted reports whether the sticky halted flag is set.
func (s *Simulator) Halted() bool { return s.halted }

// ActiveChild returns the live sub-machine simulator, or nil. Drivers use
// it to deliver events directly to a nested machine; the handle stays owned
// by this simulator and dies when the superstate is exited.
func (s *Simulator) ActiveChild() *Simulator { return s.child }

// PossibleEvents returns the sorted event names structurally admissible
// right now: named transitions leaving the current state, ignoring guards.
// Synthesized internal names and the wildcard are not listed. With an
// active child, its leaf-level events are included alongside this level's,
// since an external event could still be delivered to either.
func (s *Simulator) PossibleEvents() []string {
	seen := make(map[string]struct{})
	s.collectEvents(seen)

	events := make([]string, 0, len(seen))
	for name := range seen {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

func (s *Simulator) collectEvents(seen map[string]struct{}) {
	if s.current == nil {
		return
	}
	for _, t := range s.mach.From(s.current.Name) {
		if t.Internal || t.Wildcard {
			continue
		}
		seen[t.Event] = struct{}{}
	}
	if s.child != nil {
		s.child.collectEvents(seen)
	}
}
