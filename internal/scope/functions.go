package scope

import (
	"math"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/fsmrig/internal/ctyutil"
)

// Sink receives a message emitted by the log() snippet function. Each
// simulator binds its own sink so nested machines log into their own buffer.
type Sink func(msg string)

// LogFuncName is the one base function whose implementation is bound per
// simulator; it cannot be shadowed through a Registry.
const LogFuncName = "log"

// base is the fixed table of snippet-callable functions. Everything here is
// a pure value-to-value operation from the cty stdlib or a small local
// helper; the set is enumerated once at package init and never grows at run
// time.
var base = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"floor":    stdlib.FloorFunc,
	"min":      stdlib.MinFunc,
	"max":      stdlib.MaxFunc,
	"pow":      stdlib.PowFunc,
	"signum":   stdlib.SignumFunc,
	"int":      stdlib.IntFunc,
	"parseint": stdlib.ParseIntFunc,
	"round":    roundFunc,
	"sum":      sumFunc,

	"len":    stdlib.LengthFunc,
	"strlen": stdlib.StrlenFunc,
	"substr": stdlib.SubstrFunc,
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
	"split":  stdlib.SplitFunc,

	"contains": stdlib.ContainsFunc,
	"sorted":   stdlib.SortFunc,
	"range":    stdlib.RangeFunc,
	"coalesce": stdlib.CoalesceFunc,

	"tostring": stdlib.MakeToFunc(cty.String),
	"tonumber": stdlib.MakeToFunc(cty.Number),
	"tobool":   stdlib.MakeToFunc(cty.Bool),
}

// roundFunc rounds a number to the nearest integer, half away from zero.
var roundFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		f, _ := args[0].AsBigFloat().Float64()
		return cty.NumberFloatVal(math.Round(f)), nil
	},
})

// sumFunc adds up a list of numbers. An empty list sums to zero.
var sumFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "list", Type: cty.List(cty.Number)},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		total := new(big.Float)
		it := args[0].ElementIterator()
		for it.Next() {
			_, v := it.Element()
			total.Add(total, v.AsBigFloat())
		}
		return cty.NumberVal(total), nil
	},
})

// newLogFunc builds the side-effecting log() function bound to a sink. It
// renders its arguments space-separated and always returns true, so it can
// appear in both condition expressions and action assignments.
func newLogFunc(sink Sink) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:             "args",
			Type:             cty.DynamicPseudoType,
			AllowDynamicType: true,
			AllowNull:        true,
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = ctyutil.Render(arg)
			}
			if sink != nil {
				sink(strings.Join(parts, " "))
			}
			return cty.True, nil
		},
	})
}
