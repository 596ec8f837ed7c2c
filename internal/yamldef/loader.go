// Package yamldef loads machine definitions written in YAML and translates
// them into the format-agnostic config model. It exists for editors and
// persistence layers that emit YAML rather than HCL; both loaders produce
// identical models.
package yamldef

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/fsmrig/internal/config"
	"github.com/vk/fsmrig/internal/ctxlog"
)

// Loader implements config.Loader for .yaml/.yml definition files.
type Loader struct{}

// NewLoader creates a YAML definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileDoc struct {
	Machine *machineDoc `yaml:"machine"`
}

type machineDoc struct {
	Name        string           `yaml:"name"`
	States      []*stateDoc      `yaml:"states"`
	Transitions []*transitionDoc `yaml:"transitions"`
}

type stateDoc struct {
	Name    string      `yaml:"name"`
	Initial bool        `yaml:"initial"`
	Final   bool        `yaml:"final"`
	Entry   string      `yaml:"entry"`
	During  string      `yaml:"during"`
	Exit    string      `yaml:"exit"`
	Sub     *machineDoc `yaml:"sub"`
}

type transitionDoc struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Event  string `yaml:"event"`
	Guard  string `yaml:"guard"`
	Action string `yaml:"action"`
}

// Load parses one definition file and returns the translated model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading YAML machine definition.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if doc.Machine == nil {
		return nil, fmt.Errorf("%s: no machine document found", path)
	}

	model := &config.Model{
		Name:    doc.Machine.Name,
		Machine: translateMachine(doc.Machine),
	}
	logger.Debug("YAML machine definition loaded.",
		"machine", model.Name,
		"states", len(model.Machine.States),
		"transitions", len(model.Machine.Transitions),
	)
	return model, nil
}

func translateMachine(doc *machineDoc) *config.MachineDecl {
	decl := &config.MachineDecl{}
	for _, sd := range doc.States {
		stateDecl := &config.StateDecl{
			Name:    sd.Name,
			Initial: sd.Initial,
			Final:   sd.Final,
			Entry:   sd.Entry,
			During:  sd.During,
			Exit:    sd.Exit,
		}
		if sd.Sub != nil {
			stateDecl.Sub = translateMachine(sd.Sub)
		}
		decl.States = append(decl.States, stateDecl)
	}
	for _, td := range doc.Transitions {
		decl.Transitions = append(decl.Transitions, &config.TransitionDecl{
			Source: td.From,
			Target: td.To,
			Event:  td.Event,
			Guard:  td.Guard,
			Action: td.Action,
		})
	}
	return decl
}
