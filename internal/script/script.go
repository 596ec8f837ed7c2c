// Package script parses simulation driver scripts: one command per line,
// executed in order against a simulator by the app layer.
//
//	# comments and blank lines are skipped
//	send start          deliver an event to the top-level machine
//	sub send go_fast    deliver an event to the innermost active sub-machine
//	tick 3              run three internal ticks
//	reset               reset the simulation
//	state | vars | events   print inspection output
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies a driver command.
type Kind int

const (
	KindSend Kind = iota
	KindSubSend
	KindTick
	KindReset
	KindState
	KindVars
	KindEvents
)

// Command is one parsed script line.
type Command struct {
	Kind  Kind
	Event string // for KindSend / KindSubSend
	Count int    // for KindTick, >= 1
	Line  int    // 1-based source line, for error reporting
}

// eventNameRegex matches the event identifiers a definition may declare.
var eventNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse reads a whole script. The first malformed line fails the parse;
// partial scripts are never executed.
func Parse(src string) ([]Command, error) {
	var commands []Command
	for i, line := range strings.Split(src, "\n") {
		cmd, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			commands = append(commands, *cmd)
		}
	}
	return commands, nil
}

// parseLine parses a single line; it returns nil for blanks and comments.
func parseLine(line string, num int) (*Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	fields := strings.Fields(trimmed)
	cmd := &Command{Line: num}

	switch fields[0] {
	case "send":
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: usage: send <event>", num)
		}
		if !eventNameRegex.MatchString(fields[1]) {
			return nil, fmt.Errorf("line %d: invalid event name %q", num, fields[1])
		}
		cmd.Kind = KindSend
		cmd.Event = fields[1]

	case "sub":
		if len(fields) != 3 || fields[1] != "send" {
			return nil, fmt.Errorf("line %d: usage: sub send <event>", num)
		}
		if !eventNameRegex.MatchString(fields[2]) {
			return nil, fmt.Errorf("line %d: invalid event name %q", num, fields[2])
		}
		cmd.Kind = KindSubSend
		cmd.Event = fields[2]

	case "tick":
		cmd.Kind = KindTick
		cmd.Count = 1
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: usage: tick [count]", num)
		}
		if len(fields) == 2 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: tick count must be a positive integer, got %q", num, fields[1])
			}
			cmd.Count = n
		}

	case "reset", "state", "vars", "events":
		if len(fields) != 1 {
			return nil, fmt.Errorf("line %d: %q takes no arguments", num, fields[0])
		}
		switch fields[0] {
		case "reset":
			cmd.Kind = KindReset
		case "state":
			cmd.Kind = KindState
		case "vars":
			cmd.Kind = KindVars
		case "events":
			cmd.Kind = KindEvents
		}

	default:
		return nil, fmt.Errorf("line %d: unknown command %q", num, fields[0])
	}

	return cmd, nil
}
