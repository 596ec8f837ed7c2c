package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/fsmrig/internal/ctxlog"
	"github.com/vk/fsmrig/internal/script"
	"github.com/vk/fsmrig/internal/sim"
)

// Run executes the main application logic: load the definition, build the
// simulator, and drive it with the configured script (or stdin).
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, a.config.MachinePath)
	if err != nil {
		return fmt.Errorf("failed to load machine definition: %w", err)
	}

	simulator, err := sim.New(model.Machine, sim.Options{
		HaltOnActionError: a.config.HaltOnActionError,
		Logger:            a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build machine %q: %w", model.Name, err)
	}
	a.printLines(simulator.DrainLog())
	fmt.Fprintf(a.outW, "state: %s\n", simulator.CurrentState())

	commands, err := a.loadScript()
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := a.execute(simulator, cmd); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// loadScript reads the driver script from the configured path, or from
// stdin when no script was given.
func (a *App) loadScript() ([]script.Command, error) {
	var raw []byte
	var err error
	if a.config.ScriptPath != "" {
		raw, err = os.ReadFile(a.config.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
	} else {
		raw, err = io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to read commands from stdin: %w", err)
		}
	}

	commands, err := script.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid driver script: %w", err)
	}
	return commands, nil
}

func (a *App) execute(simulator *sim.Simulator, cmd script.Command) error {
	switch cmd.Kind {
	case script.KindSend:
		state, log := simulator.Step(cmd.Event)
		a.printLines(log)
		fmt.Fprintf(a.outW, "state: %s\n", state)

	case script.KindSubSend:
		child := innermost(simulator)
		if child == nil {
			fmt.Fprintln(a.outW, "no active sub-machine")
			return nil
		}
		_, log := child.Step(cmd.Event)
		a.printLines(log)
		fmt.Fprintf(a.outW, "state: %s\n", simulator.CurrentState())

	case script.KindTick:
		for i := 0; i < cmd.Count; i++ {
			state, log := simulator.Step("")
			a.printLines(log)
			fmt.Fprintf(a.outW, "state: %s\n", state)
		}

	case script.KindReset:
		simulator.Reset()
		a.printLines(simulator.DrainLog())
		fmt.Fprintf(a.outW, "state: %s\n", simulator.CurrentState())

	case script.KindState:
		fmt.Fprintf(a.outW, "state: %s (leaf: %s)\n", simulator.CurrentState(), simulator.LeafState())

	case script.KindVars:
		vars := simulator.Variables()
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(a.outW, "%s = %v\n", name, vars[name])
		}

	case script.KindEvents:
		for _, event := range simulator.PossibleEvents() {
			fmt.Fprintln(a.outW, event)
		}

	default:
		return fmt.Errorf("line %d: unhandled command kind %d", cmd.Line, cmd.Kind)
	}
	return nil
}

// innermost walks to the deepest active sub-machine.
func innermost(s *sim.Simulator) *sim.Simulator {
	child := s.ActiveChild()
	if child == nil {
		return nil
	}
	for child.ActiveChild() != nil {
		child = child.ActiveChild()
	}
	return child
}

func (a *App) printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(a.outW, line)
	}
}
