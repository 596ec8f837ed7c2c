package ctyutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNativeScalars(t *testing.T) {
	v, err := Native(cty.StringVal("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Native(cty.NumberIntVal(42))
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)

	v, err = Native(cty.BoolVal(true))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Native(cty.NullVal(cty.String))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNativeCollections(t *testing.T) {
	v, err := Native(cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}))
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, v)

	v, err = Native(cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("Idle"),
		"deep": cty.TupleVal([]cty.Value{cty.True}),
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Idle", "deep": []any{true}}, v)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "2", Render(cty.NumberIntVal(2)), "whole numbers drop the fraction")
	assert.Equal(t, "2.5", Render(cty.NumberFloatVal(2.5)))
	assert.Equal(t, "true", Render(cty.True))
	assert.Equal(t, "hello", Render(cty.StringVal("hello")))
	assert.Equal(t, "null", Render(cty.NullVal(cty.Number)))
	assert.Equal(t, "[1, 2]", Render(cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})))
}

func TestRenderStore(t *testing.T) {
	assert.Equal(t, "{}", RenderStore(nil))
	assert.Equal(t, "{a=1, b=done}", RenderStore(map[string]cty.Value{
		"b": cty.StringVal("done"),
		"a": cty.NumberIntVal(1),
	}))
}
