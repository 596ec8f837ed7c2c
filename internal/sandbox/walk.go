package sandbox

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// checker accumulates security violations while walking a syntax tree.
type checker struct {
	allowed    AllowFunc
	violations []string
}

func (c *checker) violate(format string, args ...any) {
	c.violations = append(c.violations, fmt.Sprintf(format, args...))
}

func (c *checker) call(name string) {
	if restrictedName(name) {
		c.violate("security: identifier %q is restricted", name)
		return
	}
	if msg, ok := deniedCalls[name]; ok {
		c.violate("security: calling %q is not allowed: %s", name, msg)
		return
	}
	if c.allowed == nil || !c.allowed(name) {
		c.violate("security: function %q is not available to machine code", name)
	}
}

// traversal vets one variable reference. Only a bare root name plus index
// steps is admitted; attribute-style steps reach into value internals and
// are rejected wholesale.
func (c *checker) traversal(t hcl.Traversal) {
	if len(t) == 0 {
		return
	}
	if root, ok := t[0].(hcl.TraverseRoot); ok {
		if restrictedName(root.Name) {
			c.violate("security: identifier %q is restricted", root.Name)
		}
	}
	for _, step := range t[1:] {
		if attr, ok := step.(hcl.TraverseAttr); ok {
			c.violate("security: attribute access %q is restricted", attr.Name)
		}
	}
}

// expr recursively walks the syntax tree. The shape mirrors the function
// discovery walk used by the grid expression analyzer, extended to vet
// traversals and identifiers as well as calls.
func (c *checker) expr(expr hclsyntax.Expression) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		c.call(e.Name)
		for _, arg := range e.Args {
			c.expr(arg)
		}
	case *hclsyntax.ScopeTraversalExpr:
		c.traversal(e.Traversal)
	case *hclsyntax.RelativeTraversalExpr:
		c.traversal(e.Traversal)
		c.expr(e.Source)
	case *hclsyntax.BinaryOpExpr:
		c.expr(e.LHS)
		c.expr(e.RHS)
	case *hclsyntax.ConditionalExpr:
		c.expr(e.Condition)
		c.expr(e.TrueResult)
		c.expr(e.FalseResult)
	case *hclsyntax.UnaryOpExpr:
		c.expr(e.Val)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			c.expr(part)
		}
	case *hclsyntax.TemplateWrapExpr:
		c.expr(e.Wrapped)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			c.expr(item)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			c.expr(item.KeyExpr)
			c.expr(item.ValueExpr)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		c.expr(e.Wrapped)
	case *hclsyntax.ForExpr:
		c.expr(e.CollExpr)
		c.expr(e.KeyExpr)
		c.expr(e.ValExpr)
		c.expr(e.CondExpr)
	case *hclsyntax.IndexExpr:
		c.expr(e.Collection)
		c.expr(e.Key)
	case *hclsyntax.SplatExpr:
		c.expr(e.Source)
		c.expr(e.Each)
	case *hclsyntax.ParenthesesExpr:
		c.expr(e.Expression)
	}
}
