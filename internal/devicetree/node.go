package devicetree

// Node is a decoded device-tree-like node: property names mapped to decoded
// values. Interrupt properties are flat value lists ([]any with integer
// cells); a "query" property holds the node lists returned by a device-tree
// query.
type Node map[string]any

// Get returns a property value, reporting whether it exists.
func (n Node) Get(key string) (any, bool) {
	v, ok := n[key]
	return v, ok
}

// Cells returns a property as a flat cell list. Missing properties return
// (nil, false); a scalar property is returned as a single-cell list.
func (n Node) Cells(key string) ([]any, bool) {
	v, ok := n[key]
	if !ok || v == nil {
		return nil, false
	}
	if cells, ok := v.([]any); ok {
		return cells, true
	}
	return []any{v}, true
}

// FirstQueryResult returns the first node of the "query" property, the shape
// device-tree attributes take after the upstream query stage has run.
func (n Node) FirstQueryResult() (Node, bool) {
	v, ok := n["query"]
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	return AsNode(list[0])
}

// AsNode converts a decoded value into a Node when it has map shape.
func AsNode(v any) (Node, bool) {
	switch m := v.(type) {
	case Node:
		return m, true
	case map[string]any:
		return Node(m), true
	}
	return nil, false
}
