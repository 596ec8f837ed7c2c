package sim

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fsmrig/internal/machine"
)

// CompletionFlagSuffix is appended to a superstate's name to form the
// parent-visible variable that records sub-machine completion.
const CompletionFlagSuffix = "_sub_completed"

// Step advances the machine by one external event, or by one internal tick
// when event is empty. It returns the possibly-nested current state name
// and the log lines accumulated since the last drain.
//
// A halted simulator ignores every step until Reset.
func (s *Simulator) Step(event string) (string, []string) {
	label := event
	if label == "" {
		label = "internal"
	}

	if s.halted {
		s.logf("simulation halted; event %q ignored, reset required", label)
		return s.CurrentState(), s.DrainLog()
	}

	s.logf("--- step; state: %s, event: %s ---", s.CurrentState(), label)

	// During action of the current state runs before anything else.
	if s.current.During != nil && !s.runAction(s.current.During, "state "+s.current.Name) {
		return s.CurrentState(), s.DrainLog()
	}

	// An active sub-machine gets one internal tick. External events are
	// never forwarded into children automatically.
	if s.child != nil && !s.tickChild() {
		return s.CurrentState(), s.DrainLog()
	}

	if event != "" {
		s.fire(event)
	} else if s.child == nil {
		s.logf("internal tick complete; state remains %q", s.current.Name)
	}

	return s.CurrentState(), s.DrainLog()
}

// tickChild steps the active sub-machine, propagates its halted state, and
// surfaces its completion into this engine's store. It returns false when
// the parent must stop advancing.
func (s *Simulator) tickChild() bool {
	s.logf("internal step for sub-machine in %q", s.childSuper)
	_, subLog := s.child.Step("")
	s.absorb(subLog)

	if s.child.halted {
		s.halted = true
		s.logf("[simulation halted] propagated from sub-machine error in superstate %q", s.childSuper)
		return false
	}

	if s.child.current != nil && s.child.current.Final {
		s.logf("sub-machine in %q reached final state %q", s.childSuper, s.child.current.Name)
		flag := s.childSuper + CompletionFlagSuffix
		if existing, ok := s.vars[flag]; !ok || !existing.RawEquals(cty.True) {
			s.vars[flag] = cty.True
			s.logf("variable %q set to true in parent machine", flag)
		}
	}
	return true
}

// fire resolves an external event against the transitions leaving the
// current state, in declaration order; the first structural match whose
// guard passes wins. No match is not an error.
func (s *Simulator) fire(event string) {
	for _, t := range s.mach.From(s.current.Name) {
		if !t.Matches(event) {
			continue
		}
		if t.Guard != nil && !t.Guard.EvalCondition(s.env(transitionContext(t.Source, t.Target))) {
			continue
		}
		s.take(t, event)
		return
	}
	s.logf("event %q not handled from state %q", event, s.current.Name)
}

// take executes one transition: exit the source, run the transition action,
// move the pointer, enter the target.
func (s *Simulator) take(t *machine.Transition, event string) {
	s.logf("transition on %q from %q to %q", event, t.Source, t.Target)

	s.exitState(s.current)
	if s.halted {
		return
	}

	if t.Action != nil && !s.runAction(t.Action, transitionContext(t.Source, t.Target)) {
		return
	}

	s.current = s.mach.States[t.Target]
	s.enterState(s.current)
}

func transitionContext(source, target string) string {
	return fmt.Sprintf("transition %s->%s", source, target)
}
