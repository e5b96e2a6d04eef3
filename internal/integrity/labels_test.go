package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/settings"
)

func sealed(t *testing.T, comp *composition.Composition) *composition.Composition {
	t.Helper()
	require.NoError(t, comp.Seal())
	return comp
}

func TestResolve(t *testing.T) {
	t.Run("name with no redirect resolves to itself", func(t *testing.T) {
		got, err := Resolve(map[string]string{}, "driver")
		require.NoError(t, err)
		assert.Equal(t, "driver", got)
	})

	t.Run("chains are followed to a fixed point", func(t *testing.T) {
		labels := map[string]string{"a": "b", "b": "c"}
		got, err := Resolve(labels, "a")
		require.NoError(t, err)
		assert.Equal(t, "c", got)
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		labels := map[string]string{"a": "b"}
		once, err := Resolve(labels, "a")
		require.NoError(t, err)
		twice, err := Resolve(labels, once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("two-element cycle is detected", func(t *testing.T) {
		labels := map[string]string{"a": "b", "b": "a"}
		_, err := Resolve(labels, "a")
		require.ErrorIs(t, err, ErrLabelCycle)
		assert.ErrorContains(t, err, "a, b")
	})

	t.Run("self redirect is a cycle", func(t *testing.T) {
		_, err := Resolve(map[string]string{"a": "a"}, "a")
		require.ErrorIs(t, err, ErrLabelCycle)
	})
}

func TestGroupLabels(t *testing.T) {
	t.Run("instances sharing an address space fold into it", func(t *testing.T) {
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{
				{Name: "client", AddressSpace: "domain"},
				{Name: "helper", AddressSpace: "domain"},
				{Name: "server"},
			},
		})

		labels, err := GroupLabels(comp, settings.New())
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"client": "domain",
			"helper": "domain",
		}, labels)
	})

	t.Run("integrity_label overrides the address-space group", func(t *testing.T) {
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{
				{Name: "client", AddressSpace: "domain"},
			},
		})
		s := settings.New()
		s.Set("client", "integrity_label", "trusted")

		labels, err := GroupLabels(comp, s)
		require.NoError(t, err)
		assert.Equal(t, "trusted", labels["client"])
	})

	t.Run("internal connections take the shared label", func(t *testing.T) {
		a := &composition.Instance{Name: "a", AddressSpace: "domain"}
		b := &composition.Instance{Name: "b", AddressSpace: "domain"}
		ct := composition.NewConnectorType("Notify", nil)
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{a, b},
			Connections: []*composition.Connection{{
				Name:     "link",
				Type:     ct,
				FromEnds: []*composition.ConnectionEnd{{Instance: a, Interface: "out"}},
				ToEnds:   []*composition.ConnectionEnd{{Instance: b, Interface: "in"}},
			}},
		})

		labels, err := GroupLabels(comp, settings.New())
		require.NoError(t, err)
		assert.Equal(t, "domain", labels["link"])
	})

	t.Run("cross-domain connections stay unlabelled", func(t *testing.T) {
		a := &composition.Instance{Name: "a"}
		b := &composition.Instance{Name: "b"}
		ct := composition.NewConnectorType("Notify", nil)
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{a, b},
			Connections: []*composition.Connection{{
				Name:     "link",
				Type:     ct,
				FromEnds: []*composition.ConnectionEnd{{Instance: a, Interface: "out"}},
				ToEnds:   []*composition.ConnectionEnd{{Instance: b, Interface: "in"}},
			}},
		})

		labels, err := GroupLabels(comp, settings.New())
		require.NoError(t, err)
		assert.NotContains(t, labels, "link")
	})

	t.Run("returned labels are fully canonical", func(t *testing.T) {
		// client folds into domain, and domain itself is redirected by an
		// integrity_label on an instance named after it.
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{
				{Name: "domain"},
				{Name: "client", AddressSpace: "domain"},
			},
		})
		s := settings.New()
		s.Set("domain", "integrity_label", "trusted")

		labels, err := GroupLabels(comp, s)
		require.NoError(t, err)
		assert.Equal(t, "trusted", labels["client"])
		assert.Equal(t, "trusted", labels["domain"])
	})

	t.Run("configured cycle is reported", func(t *testing.T) {
		comp := sealed(t, &composition.Composition{
			Instances: []*composition.Instance{
				{Name: "a"},
				{Name: "b"},
			},
		})
		s := settings.New()
		s.Set("a", "integrity_label", "b")
		s.Set("b", "integrity_label", "a")

		_, err := GroupLabels(comp, s)
		require.ErrorIs(t, err, ErrLabelCycle)
	})
}
