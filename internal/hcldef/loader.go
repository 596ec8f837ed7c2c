// Package hcldef loads machine definitions written in HCL and translates
// them into the format-agnostic config model.
package hcldef

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/fsmrig/internal/config"
	"github.com/vk/fsmrig/internal/ctxlog"
)

// Loader implements config.Loader for .hcl definition files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates an HCL definition loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses one definition file and returns the translated model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading HCL machine definition.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	var schema fileSchema
	diags = gohcl.DecodeBody(file.Body, nil, &schema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %s", path, diags.Error())
	}
	if schema.Machine == nil {
		return nil, fmt.Errorf("%s: no machine block found", path)
	}

	model := &config.Model{
		Name: schema.Machine.Name,
		Machine: translateMachine(&subMachineBlock{
			States:      schema.Machine.States,
			Transitions: schema.Machine.Transitions,
		}),
	}
	logger.Debug("HCL machine definition loaded.",
		"machine", model.Name,
		"states", len(model.Machine.States),
		"transitions", len(model.Machine.Transitions),
	)
	return model, nil
}

func translateMachine(block *subMachineBlock) *config.MachineDecl {
	decl := &config.MachineDecl{}
	for _, sb := range block.States {
		sd := &config.StateDecl{
			Name:    sb.Name,
			Initial: sb.Initial,
			Final:   sb.Final,
			Entry:   sb.Entry,
			During:  sb.During,
			Exit:    sb.Exit,
		}
		if sb.Machine != nil {
			sd.Sub = translateMachine(sb.Machine)
		}
		decl.States = append(decl.States, sd)
	}
	for _, tb := range block.Transitions {
		decl.Transitions = append(decl.Transitions, &config.TransitionDecl{
			Source: tb.From,
			Target: tb.To,
			Event:  tb.On,
			Guard:  tb.Guard,
			Action: tb.Action,
		})
	}
	return decl
}
