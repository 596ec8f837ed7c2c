package hcldef

// The HCL surface of a machine definition file:
//
//	machine "traffic_light" {
//	  state "Red" {
//	    initial = true
//	    entry   = "ticks = 0"
//	  }
//	  state "Green" {}
//	  transition {
//	    from  = "Red"
//	    to    = "Green"
//	    on    = "go"
//	    guard = "ticks > 3"
//	  }
//	}
//
// A state block may carry a nested unlabeled machine block, which marks the
// state as a superstate.

// fileSchema is the top-level structure of a definition file. Exactly one
// machine block is allowed.
type fileSchema struct {
	Machine *machineBlock `hcl:"machine,block"`
}

type machineBlock struct {
	Name        string             `hcl:"name,label"`
	States      []*stateBlock      `hcl:"state,block"`
	Transitions []*transitionBlock `hcl:"transition,block"`
}

// subMachineBlock is the unlabeled nested form used inside a superstate.
type subMachineBlock struct {
	States      []*stateBlock      `hcl:"state,block"`
	Transitions []*transitionBlock `hcl:"transition,block"`
}

type stateBlock struct {
	Name    string           `hcl:"name,label"`
	Initial bool             `hcl:"initial,optional"`
	Final   bool             `hcl:"final,optional"`
	Entry   string           `hcl:"entry,optional"`
	During  string           `hcl:"during,optional"`
	Exit    string           `hcl:"exit,optional"`
	Machine *subMachineBlock `hcl:"machine,block"`
}

type transitionBlock struct {
	From   string `hcl:"from"`
	To     string `hcl:"to"`
	On     string `hcl:"on,optional"`
	Guard  string `hcl:"guard,optional"`
	Action string `hcl:"action,optional"`
}
