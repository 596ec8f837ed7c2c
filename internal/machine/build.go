package machine

import (
	"fmt"
	"strings"

	"github.com/vk/fsmrig/internal/callback"
	"github.com/vk/fsmrig/internal/config"
	"github.com/vk/fsmrig/internal/sandbox"
)

// Compile validates a machine description and builds its executable form.
// allowed is the snippet-callable function predicate from the scope layer.
func Compile(decl *config.MachineDecl, allowed sandbox.AllowFunc) (*Machine, error) {
	if decl == nil || len(decl.States) == 0 {
		return nil, definitionErrorf("no states defined")
	}

	m := &Machine{
		States:   make(map[string]*State, len(decl.States)),
		bySource: make(map[string][]*Transition),
	}
	b := &builder{machine: m, allowed: allowed}

	if err := b.states(decl.States); err != nil {
		return nil, err
	}
	if err := b.transitions(decl.Transitions); err != nil {
		return nil, err
	}
	return m, nil
}

type builder struct {
	machine *Machine
	allowed sandbox.AllowFunc
}

func (b *builder) note(format string, args ...any) {
	b.machine.notes = append(b.machine.notes, fmt.Sprintf(format, args...))
}

func (b *builder) states(decls []*config.StateDecl) error {
	m := b.machine

	for _, sd := range decls {
		if sd.Name == "" {
			return definitionErrorf("state with empty name")
		}
		if _, exists := m.States[sd.Name]; exists {
			return definitionErrorf("duplicate state name %q", sd.Name)
		}
		if sd.Initial {
			if m.Initial != "" {
				return definitionErrorf("multiple initial states: %q and %q", m.Initial, sd.Name)
			}
			m.Initial = sd.Name
		}

		st := &State{
			Name:    sd.Name,
			Initial: sd.Initial,
			Final:   sd.Final,
			Entry:   b.program(sd.Entry, sandbox.KindAction, "entry_"+sd.Name),
			During:  b.program(sd.During, sandbox.KindAction, "during_"+sd.Name),
			Exit:    b.program(sd.Exit, sandbox.KindAction, "exit_"+sd.Name),
		}

		if sd.Sub != nil {
			if len(sd.Sub.States) == 0 {
				b.note("superstate %q has no sub-machine states; treating it as a plain state", sd.Name)
			} else {
				sub, err := Compile(sd.Sub, b.allowed)
				if err != nil {
					return definitionErrorf("in sub-machine of %q: %v", sd.Name, err)
				}
				st.Sub = sub
			}
		}

		m.States[sd.Name] = st
		m.Order = append(m.Order, sd.Name)
	}

	if m.Initial == "" {
		// Promote the first declared state, as editors routinely omit the
		// marker on single-entry machines. The decision is replayed into
		// the simulation log via build notes.
		m.Initial = m.Order[0]
		m.States[m.Initial].Initial = true
		b.note("no initial state marked; using first declared state %q as initial", m.Initial)
	}
	return nil
}

func (b *builder) transitions(decls []*config.TransitionDecl) error {
	m := b.machine

	for idx, td := range decls {
		if _, ok := m.States[td.Source]; !ok {
			return definitionErrorf("transition %d references unknown source state %q", idx, td.Source)
		}
		if _, ok := m.States[td.Target]; !ok {
			return definitionErrorf("transition %d references unknown target state %q", idx, td.Target)
		}

		t := &Transition{
			Index:  idx,
			Source: td.Source,
			Target: td.Target,
			Event:  td.Event,
		}

		switch td.Event {
		case "":
			t.Event = syntheticEventName(idx, td.Source, td.Target)
			t.Internal = true
			b.note("transition %s->%s has no event; synthesized internal event %q", td.Source, td.Target, t.Event)
		case config.EventWildcard:
			t.Wildcard = true
		}

		if td.Guard != "" {
			t.Guard = b.program(td.Guard, sandbox.KindCondition, fmt.Sprintf("cond_t%d_%s", idx, t.Event))
		}
		if td.Action != "" {
			t.Action = b.program(td.Action, sandbox.KindAction, fmt.Sprintf("action_t%d_%s", idx, t.Event))
		}

		m.Transitions = append(m.Transitions, t)
		m.bySource[t.Source] = append(m.bySource[t.Source], t)
	}
	return nil
}

// program compiles one snippet, or returns nil for an absent one. Safety
// rejections are not build errors: the program stays as an inert stand-in
// and the rejection is recorded once as a build note.
func (b *builder) program(src string, kind sandbox.Kind, name string) *callback.Program {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	p := callback.Compile(src, kind, name, b.allowed)
	if p.Blocked() {
		b.note("[safety check failed] code execution blocked for %q: %s", name, p.BlockReason())
	}
	return p
}

// syntheticEventName derives the deterministic internal event identifier
// for an unlabeled transition so log lines can correlate repeated runs.
func syntheticEventName(idx int, source, target string) string {
	raw := fmt.Sprintf("_internal_t%d_%s_to_%s", idx, source, target)
	var sb strings.Builder
	for _, r := range raw {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
