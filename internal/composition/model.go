package composition

import (
	"fmt"
	"strings"
)

// Instance is one component instance in the composition.
type Instance struct {
	// Name uniquely identifies the instance within one composition.
	Name string
	// Component names the component type the instance was declared with.
	Component string
	// AddressSpace is the instance's address-space group. It defaults to the
	// instance's own name; a differing value means the instance shares an
	// address space with (is grouped under) that name.
	AddressSpace string
}

// ConnectorType describes a connection's connector: its thread counts and
// its declared attributes with their defaults.
type ConnectorType struct {
	Name        string
	FromThreads int
	ToThreads   int

	attributes map[string]any
}

// NewConnectorType creates a connector type with the given attribute
// defaults.
func NewConnectorType(name string, attributes map[string]any) *ConnectorType {
	t := &ConnectorType{Name: name, attributes: map[string]any{}}
	for k, v := range attributes {
		switch k {
		case "from_threads":
			t.FromThreads = toInt(v)
		case "to_threads":
			t.ToThreads = toInt(v)
		default:
			t.attributes[k] = v
		}
	}
	return t
}

// Attribute returns the declared default for the named attribute.
func (t *ConnectorType) Attribute(name string) (any, bool) {
	v, ok := t.attributes[name]
	return v, ok
}

// BoolAttribute reports whether the named attribute is declared with a true
// default. Absent attributes are false.
func (t *ConnectorType) BoolAttribute(name string) bool {
	v, ok := t.attributes[name]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// EndHandle is a stable per-composition ordinal identifying one connection
// end. Two structurally identical ends (same instance, same interface) still
// get distinct handles, so handle equality is the end-identity test.
type EndHandle int

// ConnectionEnd is one side of a connection: an instance/interface pairing.
type ConnectionEnd struct {
	Instance  *Instance
	Interface string

	handle EndHandle
}

// Handle returns the end's arena-assigned ordinal. It is only valid after
// the owning composition has been sealed.
func (e *ConnectionEnd) Handle() EndHandle {
	return e.handle
}

// Same reports whether two ends are the same declaration.
func (e *ConnectionEnd) Same(other *ConnectionEnd) bool {
	return other != nil && e.handle == other.handle
}

// String returns the end's canonical scope form, "instance.interface".
func (e *ConnectionEnd) String() string {
	return e.Instance.Name + "." + e.Interface
}

// Connection is a declared point-to-point connection. FromEnds and ToEnds
// preserve declaration order.
type Connection struct {
	Name     string
	Type     *ConnectorType
	FromEnds []*ConnectionEnd
	ToEnds   []*ConnectionEnd
}

// Ends returns the connection's ends, from-side first, in declaration order.
func (c *Connection) Ends() []*ConnectionEnd {
	ends := make([]*ConnectionEnd, 0, len(c.FromEnds)+len(c.ToEnds))
	ends = append(ends, c.FromEnds...)
	ends = append(ends, c.ToEnds...)
	return ends
}

// InstanceIndex is the per-instance view built once at seal time: every
// connection the instance participates in and every end it owns, both in
// declaration order.
type InstanceIndex struct {
	Connections []*Connection
	Ends        []*ConnectionEnd
}

// Composition is the full component graph. Instances and Connections keep
// declaration order.
type Composition struct {
	Instances   []*Instance
	Connections []*Connection

	sealed   bool
	byName   map[string]*Instance
	index    map[string]*InstanceIndex
	endCount int
}

// InstanceByName resolves an instance name. The composition must be sealed.
func (c *Composition) InstanceByName(name string) (*Instance, bool) {
	inst, ok := c.byName[name]
	return inst, ok
}

// IndexFor returns the sealed per-instance index. An instance that owns no
// ends gets an empty index.
func (c *Composition) IndexFor(inst *Instance) *InstanceIndex {
	if idx, ok := c.index[inst.Name]; ok {
		return idx
	}
	return &InstanceIndex{}
}

// EndCount returns the number of handles assigned at seal time.
func (c *Composition) EndCount() int {
	return c.endCount
}

// Seal freezes the composition: it validates instance names, defaults
// address spaces, assigns end handles in declaration order, and builds the
// per-instance index. A composition must be sealed exactly once before any
// allocator runs over it.
func (c *Composition) Seal() error {
	if c.sealed {
		return fmt.Errorf("composition already sealed")
	}

	c.byName = make(map[string]*Instance, len(c.Instances))
	for _, inst := range c.Instances {
		if inst.Name == "" {
			return fmt.Errorf("instance with empty name")
		}
		if _, dup := c.byName[inst.Name]; dup {
			return fmt.Errorf("duplicate instance name %q", inst.Name)
		}
		if inst.AddressSpace == "" {
			inst.AddressSpace = inst.Name
		}
		c.byName[inst.Name] = inst
	}

	c.index = make(map[string]*InstanceIndex, len(c.Instances))
	next := EndHandle(1)
	for _, conn := range c.Connections {
		if conn.Type == nil {
			return fmt.Errorf("connection %q has no connector type", conn.Name)
		}
		seen := map[string]bool{}
		for _, end := range conn.Ends() {
			if end.Instance == nil {
				return fmt.Errorf("connection %q has an end with no instance", conn.Name)
			}
			if _, ok := c.byName[end.Instance.Name]; !ok {
				return fmt.Errorf("connection %q references undeclared instance %q", conn.Name, end.Instance.Name)
			}
			end.handle = next
			next++

			idx := c.indexFor(end.Instance.Name)
			idx.Ends = append(idx.Ends, end)
			if !seen[end.Instance.Name] {
				idx.Connections = append(idx.Connections, conn)
				seen[end.Instance.Name] = true
			}
		}
	}
	c.endCount = int(next) - 1
	c.sealed = true
	return nil
}

func (c *Composition) indexFor(name string) *InstanceIndex {
	idx, ok := c.index[name]
	if !ok {
		idx = &InstanceIndex{}
		c.index[name] = idx
	}
	return idx
}

// ParseEndRef splits an "instance.interface" reference. The interface part
// may itself contain dots; the split is on the first one.
func ParseEndRef(ref string) (instance, iface string, err error) {
	instance, iface, ok := strings.Cut(ref, ".")
	if !ok || instance == "" || iface == "" {
		return "", "", fmt.Errorf("invalid end reference %q: want \"instance.interface\"", ref)
	}
	return instance, iface, nil
}
