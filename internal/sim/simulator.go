package sim

import (
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/fsmrig/internal/callback"
	"github.com/vk/fsmrig/internal/config"
	"github.com/vk/fsmrig/internal/machine"
	"github.com/vk/fsmrig/internal/sandbox"
	"github.com/vk/fsmrig/internal/scope"
)

// subLogPrefix marks log lines harvested from nested machines; it stacks
// with depth.
const subLogPrefix = "  [SUB] "

// Options configures a top-level simulator.
type Options struct {
	// HaltOnActionError promotes the first contained action fault into the
	// sticky halted state instead of logging and continuing.
	HaltOnActionError bool

	// Logger receives a debug mirror of every action-log line. Nil means
	// slog.Default().
	Logger *slog.Logger

	// Registry supplies embedder functions for the restricted scope.
	Registry *scope.Registry
}

// Simulator drives one compiled machine. Construct with New; the zero value
// is not usable.
type Simulator struct {
	mach *machine.Machine
	opts Options

	vars   map[string]cty.Value
	funcs  map[string]function.Function
	logBuf []string
	logger *slog.Logger
	prefix string

	current    *machine.State
	halted     bool
	child      *Simulator
	childSuper string

	// parent is non-owning and used only for log attribution; a child never
	// mutates its parent's structure through it.
	parent *Simulator
}

// New compiles the description and binds a simulator to it, entering the
// initial state (and lazily instantiating its sub-machine if the initial
// state is a superstate). The only error surface is a malformed definition.
func New(decl *config.MachineDecl, opts Options) (*Simulator, error) {
	mach, err := machine.Compile(decl, allowFunc(opts.Registry))
	if err != nil {
		return nil, fmt.Errorf("machine build failed: %w", err)
	}

	s := newSimulator(mach, opts, nil, "")
	s.bind()
	return s, nil
}

func allowFunc(reg *scope.Registry) sandbox.AllowFunc {
	return func(name string) bool { return scope.Has(reg, name) }
}

func newSimulator(mach *machine.Machine, opts Options, parent *Simulator, prefix string) *Simulator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		mach:   mach,
		opts:   opts,
		vars:   make(map[string]cty.Value),
		logger: logger,
		prefix: prefix,
		parent: parent,
	}
	s.funcs = scope.Functions(opts.Registry, func(msg string) {
		s.logf("[log] %s", msg)
	})
	return s
}

// bind replays build notes and enters the initial state. It runs once per
// construction and again on every Reset.
func (s *Simulator) bind() {
	for _, note := range s.mach.BuildNotes() {
		s.logf("%s", note)
	}
	s.current = s.mach.InitialState()
	s.enterState(s.current)
	s.logf("machine initialized; current state: %s", s.current.Name)
}

// logf appends a prefixed line to the action log and mirrors it to the
// structured logger.
func (s *Simulator) logf(format string, args ...any) {
	msg := s.prefix + fmt.Sprintf(format, args...)
	s.logBuf = append(s.logBuf, msg)
	s.logger.Debug(msg)
}

// absorb appends already-prefixed lines harvested from a child.
func (s *Simulator) absorb(lines []string) {
	s.logBuf = append(s.logBuf, lines...)
}

func (s *Simulator) env(context string) callback.Env {
	return callback.Env{
		Vars:    s.vars,
		Funcs:   s.funcs,
		Log:     s.logf,
		Context: context,
	}
}

// runAction invokes an action program and applies the halt policy. It
// returns false when the simulation must stop advancing.
func (s *Simulator) runAction(p *callback.Program, context string) bool {
	res := p.RunAction(s.env(context))
	if res.Status == callback.StatusError && s.opts.HaltOnActionError {
		s.halted = true
		s.logf("[simulation halted] action error in %s: %v", context, res.Err)
		return false
	}
	return true
}

// enterState runs the entry action and, for superstates, constructs the
// child engine. Child construction is deferred to this point so an inert
// superstate never pays for it.
func (s *Simulator) enterState(st *machine.State) {
	s.logf("entering state: %s", st.Name)

	if st.Entry != nil && !s.runAction(st.Entry, "state "+st.Name) {
		return
	}

	if st.Superstate() {
		s.logf("superstate %q entered; initializing its sub-machine", st.Name)
		child := newSimulator(st.Sub, s.opts, s, s.prefix+subLogPrefix)
		child.bind()
		s.child = child
		s.childSuper = st.Name
		s.absorb(child.DrainLog())
		if child.halted {
			s.halted = true
			s.logf("[simulation halted] sub-machine of %q halted during initialization", st.Name)
		}
	}
}

// exitState runs the exit action and tears down an active child engine,
// harvesting its final log lines first.
func (s *Simulator) exitState(st *machine.State) {
	s.logf("exiting state: %s", st.Name)

	if st.Exit != nil && !s.runAction(st.Exit, "state "+st.Name) {
		return
	}

	if s.child != nil && s.childSuper == st.Name {
		s.logf("superstate %q exited; terminating its sub-machine", st.Name)
		s.absorb(s.child.DrainLog())
		s.child = nil
		s.childSuper = ""
	}
}

// Reset clears the variable store, discards any child engine, clears the
// halted flag, and re-enters the initial state, re-running its entry
// actions.
func (s *Simulator) Reset() {
	s.logf("--- machine reset ---")
	if s.child != nil {
		s.logf("discarding active sub-machine of %q", s.childSuper)
		s.absorb(s.child.DrainLog())
		s.child = nil
		s.childSuper = ""
	}
	s.vars = make(map[string]cty.Value)
	s.halted = false
	s.current = s.mach.InitialState()
	s.enterState(s.current)
	s.logf("machine reset; current state: %s", s.current.Name)
}
