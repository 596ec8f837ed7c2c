package callback

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fsmrig/internal/sandbox"
	"github.com/vk/fsmrig/internal/scope"
)

type testEnv struct {
	Env
	lines *[]string
}

func newTestEnv(vars map[string]cty.Value) testEnv {
	if vars == nil {
		vars = make(map[string]cty.Value)
	}
	lines := &[]string{}
	return testEnv{
		Env: Env{
			Vars: vars,
			Funcs: scope.Functions(nil, func(msg string) {
				*lines = append(*lines, "[log] "+msg)
			}),
			Log: func(format string, args ...any) {
				*lines = append(*lines, fmt.Sprintf(format, args...))
			},
			Context: "state Test",
		},
		lines: lines,
	}
}

func (e testEnv) joined() string { return strings.Join(*e.lines, "\n") }

func allowBase(name string) bool { return scope.Has(nil, name) }

func compileAction(t *testing.T, src string) *Program {
	t.Helper()
	return Compile(src, sandbox.KindAction, "test_action", allowBase)
}

func compileCondition(t *testing.T, src string) *Program {
	t.Helper()
	return Compile(src, sandbox.KindCondition, "test_cond", allowBase)
}

func TestBlockedActionIsInert(t *testing.T) {
	p := compileAction(t, `x = eval("1")`)
	require.True(t, p.Blocked())
	assert.Contains(t, p.BlockReason(), "dynamic code evaluation")

	env := newTestEnv(nil)
	res := p.RunAction(env.Env)
	assert.Equal(t, StatusBlocked, res.Status)
	assert.Empty(t, env.Vars, "blocked action must not touch the store")
	assert.Contains(t, env.joined(), "[action blocked by safety check]")
}

func TestActionWriteBack(t *testing.T) {
	p := compileAction(t, "count = count + 1")
	require.False(t, p.Blocked())

	env := newTestEnv(map[string]cty.Value{"count": cty.NumberIntVal(1)})
	res := p.RunAction(env.Env)
	require.Equal(t, StatusOK, res.Status)
	assert.True(t, env.Vars["count"].RawEquals(cty.NumberIntVal(2)))
	assert.Contains(t, env.joined(), `variable "count" set to 2`)
}

func TestActionSequentialAssigns(t *testing.T) {
	p := compileAction(t, "a = 1\nb = a + 1")
	env := newTestEnv(nil)
	res := p.RunAction(env.Env)
	require.Equal(t, StatusOK, res.Status)
	assert.True(t, env.Vars["b"].RawEquals(cty.NumberIntVal(2)), "second assignment must see the first")
}

func TestActionNameError(t *testing.T) {
	p := compileAction(t, "a = missing + 1")
	env := newTestEnv(nil)
	res := p.RunAction(env.Env)
	require.Equal(t, StatusError, res.Status)
	require.NotNil(t, res.Err)
	assert.Equal(t, CategoryName, res.Err.Category)
	assert.NotContains(t, env.Vars, "a")
	assert.Contains(t, env.joined(), "[code error]")
}

func TestActionTypeError(t *testing.T) {
	p := compileAction(t, `a = "text" + 1`)
	env := newTestEnv(nil)
	res := p.RunAction(env.Env)
	require.Equal(t, StatusError, res.Status)
	require.NotNil(t, res.Err)
	assert.Equal(t, CategoryType, res.Err.Category)
}

func TestActionLogFunction(t *testing.T) {
	p := compileAction(t, `noted = log("count is", count)`)
	env := newTestEnv(map[string]cty.Value{"count": cty.NumberIntVal(7)})
	res := p.RunAction(env.Env)
	require.Equal(t, StatusOK, res.Status)
	assert.Contains(t, *env.lines, "[log] count is 7")
	assert.True(t, env.Vars["noted"].RawEquals(cty.True))
}

func TestEmptyAction(t *testing.T) {
	p := compileAction(t, "")
	env := newTestEnv(nil)
	res := p.RunAction(env.Env)
	assert.Equal(t, StatusOK, res.Status)
	assert.Empty(t, *env.lines)
}

func TestConditionTrueFalse(t *testing.T) {
	env := newTestEnv(map[string]cty.Value{"count": cty.NumberIntVal(5)})
	assert.True(t, compileCondition(t, "count > 3").EvalCondition(env.Env))
	assert.False(t, compileCondition(t, "count > 9").EvalCondition(env.Env))
}

func TestConditionEmptyIsTrue(t *testing.T) {
	env := newTestEnv(nil)
	assert.True(t, compileCondition(t, "  ").EvalCondition(env.Env))
}

func TestConditionBlockedIsFalse(t *testing.T) {
	p := compileCondition(t, `eval("true")`)
	require.True(t, p.Blocked())
	env := newTestEnv(nil)
	assert.False(t, p.EvalCondition(env.Env))
	assert.Contains(t, env.joined(), "[condition blocked by safety check]")
}

func TestConditionErrorIsFalse(t *testing.T) {
	p := compileCondition(t, "missing > 1")
	env := newTestEnv(nil)
	assert.False(t, p.EvalCondition(env.Env))
	assert.Contains(t, env.joined(), "[code error]")
}

func TestConditionNonBooleanIsFalse(t *testing.T) {
	p := compileCondition(t, `"not a bool"`)
	env := newTestEnv(nil)
	assert.False(t, p.EvalCondition(env.Env))
	assert.Contains(t, env.joined(), "did not produce a boolean")
}

func TestConditionNumericCoercion(t *testing.T) {
	// cty refuses number-to-bool conversion, so a bare number reads false.
	p := compileCondition(t, "1")
	env := newTestEnv(nil)
	assert.False(t, p.EvalCondition(env.Env))
}
