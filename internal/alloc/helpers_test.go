package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/componentry/capgen/internal/arch"
	"github.com/componentry/capgen/internal/composition"
)

// compBuilder assembles small sealed compositions for allocator tests.
type compBuilder struct {
	comp      *composition.Composition
	instances map[string]*composition.Instance
	ends      map[string]*composition.ConnectionEnd
}

func newCompBuilder() *compBuilder {
	return &compBuilder{
		comp:      &composition.Composition{},
		instances: map[string]*composition.Instance{},
		ends:      map[string]*composition.ConnectionEnd{},
	}
}

func (b *compBuilder) instance(name string) *composition.Instance {
	if inst, ok := b.instances[name]; ok {
		return inst
	}
	inst := &composition.Instance{Name: name}
	b.instances[name] = inst
	b.comp.Instances = append(b.comp.Instances, inst)
	return inst
}

// connect adds a connection; refs are "instance.interface" strings. Each end
// is registered under its ref for later retrieval, so test refs must be
// unique per builder.
func (b *compBuilder) connect(name string, ct *composition.ConnectorType, from, to []string) {
	conn := &composition.Connection{Name: name, Type: ct}
	for _, ref := range from {
		conn.FromEnds = append(conn.FromEnds, b.end(ref))
	}
	for _, ref := range to {
		conn.ToEnds = append(conn.ToEnds, b.end(ref))
	}
	b.comp.Connections = append(b.comp.Connections, conn)
}

func (b *compBuilder) end(ref string) *composition.ConnectionEnd {
	instName, iface, err := composition.ParseEndRef(ref)
	if err != nil {
		panic(err)
	}
	end := &composition.ConnectionEnd{Instance: b.instance(instName), Interface: iface}
	b.ends[ref] = end
	return end
}

func (b *compBuilder) seal(t *testing.T) *composition.Composition {
	t.Helper()
	require.NoError(t, b.comp.Seal())
	return b.comp
}

func notifConnector(name string, to bool) *composition.ConnectorType {
	attr := "from_global_endpoint"
	if to {
		attr = "to_global_endpoint"
	}
	return composition.NewConnectorType(name, map[string]any{attr: true})
}

func rpcConnector(name string, to bool) *composition.ConnectorType {
	attr := "from_global_rpc_endpoint"
	if to {
		attr = "to_global_rpc_endpoint"
	}
	return composition.NewConnectorType(name, map[string]any{attr: true})
}

func aarch32(t *testing.T) arch.Arch {
	t.Helper()
	a, err := arch.Lookup("aarch32")
	require.NoError(t, err)
	return a
}
