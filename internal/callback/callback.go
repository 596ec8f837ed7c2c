package callback

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/fsmrig/internal/ctyutil"
	"github.com/vk/fsmrig/internal/sandbox"
)

// Env carries the live pieces a program needs at invocation time. Vars is
// the owning simulator's store and is written through directly by actions;
// Log appends to the simulator's action log.
type Env struct {
	Vars    map[string]cty.Value
	Funcs   map[string]function.Function
	Log     func(format string, args ...any)
	Context string // owning state/transition, for fault messages
}

// Program is a compiled snippet. Compile never fails: a rejected snippet
// produces a blocked program whose invocations are cheap inert stand-ins.
type Program struct {
	Kind sandbox.Kind
	Name string
	Src  string

	snippet *sandbox.Snippet
	report  sandbox.Report
}

// Compile parses and safety-checks src once. name identifies the snippet in
// logs (for example "entry_Idle" or "cond_t0_start").
func Compile(src string, kind sandbox.Kind, name string, allowed sandbox.AllowFunc) *Program {
	snippet, report := sandbox.Vet(src, kind, name, allowed)
	return &Program{
		Kind:    kind,
		Name:    name,
		Src:     src,
		snippet: snippet,
		report:  report,
	}
}

// Blocked reports whether the safety check rejected this snippet.
func (p *Program) Blocked() bool { return !p.report.Admitted }

// BlockReason returns the joined rejection details for a blocked program.
func (p *Program) BlockReason() string { return p.report.Reason() }

// Empty reports whether the snippet has nothing to run.
func (p *Program) Empty() bool {
	return p.snippet != nil && p.snippet.Cond == nil && len(p.snippet.Assigns) == 0
}

// RunAction executes an action program against the live store. Each
// assignment is evaluated in source order and written back before the next
// one runs, so later assignments observe earlier ones.
func (p *Program) RunAction(env Env) Result {
	if p.Blocked() {
		env.Log("[action blocked by safety check] unsafe code ignored: %q (%s)", p.Src, p.report.Reason())
		return Result{Status: StatusBlocked}
	}
	if p.Empty() {
		return okResult
	}

	env.Log("[action runtime] executing %q for %q in %s with vars %s",
		p.Src, p.Name, env.Context, ctyutil.RenderStore(env.Vars))

	for _, assign := range p.snippet.Assigns {
		val, evalErr := evalExpr(assign.Expr, env)
		if evalErr != nil {
			env.Log("[code error] %s in action %q (%s). code: %q", evalErr.Error(), p.Name, env.Context, p.Src)
			return Result{Status: StatusError, Err: evalErr}
		}
		old, existed := env.Vars[assign.Name]
		env.Vars[assign.Name] = val
		if !existed || !old.RawEquals(val) {
			env.Log("[action runtime] variable %q set to %s", assign.Name, ctyutil.Render(val))
		}
	}

	env.Log("[action runtime] finished %q. variables now %s", p.Src, ctyutil.RenderStore(env.Vars))
	return okResult
}

// EvalCondition evaluates a condition program to a boolean. It never raises:
// blocked snippets, evaluation faults, and non-boolean results all resolve
// to false with a log entry saying why.
func (p *Program) EvalCondition(env Env) bool {
	if p.Blocked() {
		env.Log("[condition blocked by safety check] unsafe code %q evaluated as false", p.Src)
		return false
	}
	if p.Empty() {
		return true
	}

	env.Log("[condition runtime] evaluating %q for %q in %s with vars %s",
		p.Src, p.Name, env.Context, ctyutil.RenderStore(env.Vars))

	val, evalErr := evalExpr(p.snippet.Cond, env)
	if evalErr != nil {
		env.Log("[code error] %s in condition %q (%s). code: %q", evalErr.Error(), p.Name, env.Context, p.Src)
		return false
	}

	boolVal, err := convert.Convert(val, cty.Bool)
	if err != nil || boolVal.IsNull() {
		env.Log("[code error] type error: condition %q did not produce a boolean (got %s). code: %q",
			p.Name, val.Type().FriendlyName(), p.Src)
		return false
	}

	result := boolVal.True()
	env.Log("[condition runtime] result of %q: %t", p.Src, result)
	return result
}

// evalExpr evaluates one expression against a snapshot of the store. A
// panic inside cty (for example degenerate arithmetic) is contained here
// and reported as a runtime fault.
func evalExpr(expr hclsyntax.Expression, env Env) (val cty.Value, evalErr *EvalError) {
	defer func() {
		if r := recover(); r != nil {
			val = cty.NilVal
			evalErr = &EvalError{
				Category: CategoryRuntime,
				Detail:   fmt.Sprintf("panic during evaluation: %v", r),
			}
		}
	}()

	vars := make(map[string]cty.Value, len(env.Vars))
	for k, v := range env.Vars {
		vars[k] = v
	}
	ectx := &hcl.EvalContext{Variables: vars, Functions: env.Funcs}

	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return cty.NilVal, categorize(diags)
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, &EvalError{Category: CategoryRuntime, Detail: "expression produced an unknown value"}
	}
	return v, nil
}
