package adl

import (
	"fmt"
	"math"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// bodyAttributes evaluates an open attribute body into plain Go values.
// ADL attribute values are literals, so no evaluation context is supplied.
func bodyAttributes(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		converted, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

// ctyToGo converts an evaluated cty value into the Go types the settings
// store and the composition model work with: int64/uint64/float64 numbers,
// strings, bools, []any sequences, and map[string]any objects.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if n, acc := bf.Int64(); acc == big.Exact {
				return n, nil
			}
			if u, acc := bf.Uint64(); acc == big.Exact {
				return u, nil
			}
			return nil, fmt.Errorf("number out of range: %s", bf.String())
		}
		f, _ := bf.Float64()
		if math.IsInf(f, 0) {
			return nil, fmt.Errorf("number out of range: %s", bf.String())
		}
		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			converted, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			converted, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[kv.AsString()] = converted
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported attribute value type %s", ty.FriendlyName())
}
