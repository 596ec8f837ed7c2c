package callback

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Status is the tagged outcome of invoking a program.
type Status int

const (
	// StatusOK means the snippet ran (or was an admitted no-op).
	StatusOK Status = iota
	// StatusBlocked means the snippet was rejected by the safety check and
	// the invocation was an inert stand-in.
	StatusBlocked
	// StatusError means the snippet ran and faulted; the fault was contained.
	StatusError
)

// Category classifies a contained runtime fault, mirroring the error
// taxonomy callers see in log lines.
type Category int

const (
	CategoryName Category = iota
	CategoryType
	CategoryRuntime
)

func (c Category) String() string {
	switch c {
	case CategoryName:
		return "name"
	case CategoryType:
		return "type"
	default:
		return "runtime"
	}
}

// EvalError describes one contained evaluation fault.
type EvalError struct {
	Category Category
	Detail   string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Category, e.Detail)
}

// Result is returned by every program invocation. Err is set only for
// StatusError.
type Result struct {
	Status Status
	Err    *EvalError
}

var okResult = Result{Status: StatusOK}

// categorize maps HCL evaluation diagnostics onto the fault taxonomy by
// their summaries. Unrecognized summaries are generic runtime faults.
func categorize(diags hcl.Diagnostics) *EvalError {
	category := CategoryRuntime
	for _, diag := range diags {
		switch {
		case strings.Contains(diag.Summary, "Unknown variable"),
			strings.Contains(diag.Summary, "unknown function"),
			strings.Contains(diag.Summary, "Unknown function"):
			category = CategoryName
		case strings.Contains(diag.Summary, "Invalid operand"),
			strings.Contains(diag.Summary, "Unsuitable value"),
			strings.Contains(diag.Summary, "Invalid function argument"),
			strings.Contains(diag.Summary, "Incorrect value type"),
			strings.Contains(diag.Summary, "Invalid template interpolation value"):
			if category != CategoryName {
				category = CategoryType
			}
		}
	}
	return &EvalError{Category: category, Detail: diags.Error()}
}
