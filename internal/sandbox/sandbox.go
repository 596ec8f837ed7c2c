package sandbox

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Kind distinguishes the two snippet grammars.
type Kind int

const (
	// KindAction is an ordered body of `name = expression` assignments.
	KindAction Kind = iota
	// KindCondition is a single boolean-valued expression.
	KindCondition
)

func (k Kind) String() string {
	if k == KindCondition {
		return "condition"
	}
	return "action"
}

// AllowFunc reports whether a function name is callable from snippets.
type AllowFunc func(name string) bool

// Assign is one `name = expression` line of an action, in source order.
type Assign struct {
	Name  string
	Expr  hclsyntax.Expression
	Range hcl.Range
}

// Snippet is an admitted, parsed snippet ready for evaluation.
type Snippet struct {
	Kind    Kind
	Cond    hclsyntax.Expression // set for conditions
	Assigns []Assign             // set for actions
}

// Report is the outcome of vetting one snippet. SyntaxError and Violations
// are mutually exclusive failure shapes; either rejects the snippet.
type Report struct {
	Admitted    bool
	SyntaxError string
	Violations  []string
}

// Reason joins the rejection details into a single human-readable string.
func (r Report) Reason() string {
	if r.SyntaxError != "" {
		return r.SyntaxError
	}
	return strings.Join(r.Violations, "; ")
}

// deniedCalls maps well-known dangerous operation names to targeted
// messages. None of these exist in the scope table, so the generic unknown
// function rule would reject them anyway; naming them makes the log entry
// say why.
var deniedCalls = map[string]string{
	"eval":    "dynamic code evaluation is not allowed",
	"exec":    "dynamic code execution is not allowed",
	"compile": "dynamic code compilation is not allowed",
	"import":  "imports are not allowed in machine code",
	"open":    "file access is not allowed",
	"file":    "file access is not allowed",
	"env":     "process environment access is not allowed",
	"system":  "process control is not allowed",
	"getattr": "reflective attribute access is not allowed",
	"setattr": "reflective attribute access is not allowed",
	"delattr": "reflective attribute access is not allowed",
}

// Vet parses src according to kind and walks every node of the result. The
// returned Snippet is nil unless the report admits the code. An empty
// snippet is admitted and parses to an empty Snippet.
func Vet(src string, kind Kind, filename string, allowed AllowFunc) (*Snippet, Report) {
	if strings.TrimSpace(src) == "" {
		return &Snippet{Kind: kind}, Report{Admitted: true}
	}

	c := &checker{allowed: allowed}
	snippet := &Snippet{Kind: kind}

	switch kind {
	case KindCondition:
		expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
		if diags.HasErrors() {
			return nil, syntaxReport(kind, diags)
		}
		c.expr(expr)
		snippet.Cond = expr

	case KindAction:
		assigns, diags := parseAssigns(src, filename)
		if diags.HasErrors() {
			return nil, syntaxReport(kind, diags)
		}
		for _, a := range assigns {
			if restrictedName(a.Name) {
				c.violate("security: identifier %q is restricted", a.Name)
			}
			c.expr(a.Expr)
		}
		snippet.Assigns = assigns
	}

	if len(c.violations) > 0 {
		return nil, Report{Violations: dedupe(c.violations)}
	}
	return snippet, Report{Admitted: true}
}

// parseAssigns parses an action body and returns its attributes ordered by
// source position. HCL bodies expose attributes as a map, so declaration
// order has to be restored from the ranges.
func parseAssigns(src, filename string) ([]Assign, hcl.Diagnostics) {
	file, diags := hclsyntax.ParseConfig([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid action body",
			Detail:   "Internal error: parsed body is not native syntax.",
		}}
	}

	if len(body.Blocks) > 0 {
		blk := body.Blocks[0]
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Blocks are not allowed in action code",
			Detail:   fmt.Sprintf("Action code is a sequence of assignments; found a %q block.", blk.Type),
			Subject:  blk.DefRange().Ptr(),
		}}
	}

	assigns := make([]Assign, 0, len(body.Attributes))
	for name, attr := range body.Attributes {
		assigns = append(assigns, Assign{
			Name:  name,
			Expr:  attr.Expr,
			Range: attr.SrcRange,
		})
	}
	sort.Slice(assigns, func(i, j int) bool {
		return assigns[i].Range.Start.Byte < assigns[j].Range.Start.Byte
	})
	return assigns, nil
}

func syntaxReport(kind Kind, diags hcl.Diagnostics) Report {
	return Report{
		SyntaxError: fmt.Sprintf("syntax error in %s code: %s", kind, diags.Error()),
	}
}

// restrictedName reports whether an identifier uses the reserved
// double-underscore form that the engine keeps for itself.
func restrictedName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
