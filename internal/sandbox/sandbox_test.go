package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowBasic(name string) bool {
	switch name {
	case "min", "max", "len", "log":
		return true
	}
	return false
}

func TestVetEmptySnippet(t *testing.T) {
	for _, kind := range []Kind{KindAction, KindCondition} {
		snippet, report := Vet("   \n", kind, "test", allowBasic)
		require.True(t, report.Admitted)
		require.NotNil(t, snippet)
		assert.Nil(t, snippet.Cond)
		assert.Empty(t, snippet.Assigns)
	}
}

func TestVetConditionAdmitted(t *testing.T) {
	snippet, report := Vet("x > 1 && min(x, 2) == 2", KindCondition, "test", allowBasic)
	require.True(t, report.Admitted)
	require.NotNil(t, snippet)
	assert.NotNil(t, snippet.Cond)
}

func TestVetIndexAccessAdmitted(t *testing.T) {
	_, report := Vet("xs[0] > 1", KindCondition, "test", allowBasic)
	assert.True(t, report.Admitted)
}

func TestVetDeniedCall(t *testing.T) {
	_, report := Vet(`eval("1 + 1")`, KindCondition, "test", allowBasic)
	require.False(t, report.Admitted)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0], "dynamic code evaluation")
}

func TestVetUnknownFunction(t *testing.T) {
	_, report := Vet("launch(1)", KindCondition, "test", allowBasic)
	require.False(t, report.Admitted)
	assert.Contains(t, report.Reason(), `function "launch" is not available`)
}

func TestVetAttributeAccessRestricted(t *testing.T) {
	_, report := Vet("a.b > 1", KindCondition, "test", allowBasic)
	require.False(t, report.Admitted)
	assert.Contains(t, report.Reason(), `attribute access "b" is restricted`)
}

func TestVetRestrictedIdentifier(t *testing.T) {
	t.Run("as variable", func(t *testing.T) {
		_, report := Vet("__class__ > 1", KindCondition, "test", allowBasic)
		require.False(t, report.Admitted)
		assert.Contains(t, report.Reason(), `identifier "__class__" is restricted`)
	})

	t.Run("as assignment target", func(t *testing.T) {
		_, report := Vet("__globals__ = 1", KindAction, "test", allowBasic)
		require.False(t, report.Admitted)
		assert.Contains(t, report.Reason(), "restricted")
	})
}

func TestVetCollectsAllViolations(t *testing.T) {
	_, report := Vet("eval(1) + launch(2)", KindCondition, "test", allowBasic)
	require.False(t, report.Admitted)
	assert.Len(t, report.Violations, 2)
}

func TestVetSyntaxErrorShape(t *testing.T) {
	_, report := Vet("x >", KindCondition, "test", allowBasic)
	require.False(t, report.Admitted)
	assert.Empty(t, report.Violations)
	assert.True(t, strings.HasPrefix(report.SyntaxError, "syntax error in condition code:"), report.SyntaxError)
}

func TestVetActionAssignOrder(t *testing.T) {
	snippet, report := Vet("b = 2\na = 1\nc = 3", KindAction, "test", allowBasic)
	require.True(t, report.Admitted)
	require.Len(t, snippet.Assigns, 3)
	assert.Equal(t, "b", snippet.Assigns[0].Name)
	assert.Equal(t, "a", snippet.Assigns[1].Name)
	assert.Equal(t, "c", snippet.Assigns[2].Name)
}

func TestVetActionRejectsBlocks(t *testing.T) {
	_, report := Vet("nested {\n  a = 1\n}", KindAction, "test", allowBasic)
	require.False(t, report.Admitted)
	assert.Contains(t, report.SyntaxError, "Blocks are not allowed")
}
