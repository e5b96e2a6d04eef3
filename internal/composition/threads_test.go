package composition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/componentry/capgen/internal/settings"
)

func TestThreads(t *testing.T) {
	serial := &Instance{Name: "serial-0"}
	client := &Instance{Name: "client"}
	rpc := NewConnectorType("RPC", map[string]any{
		"from_threads": int64(1),
		"to_threads":   int64(2),
	})
	comp := &Composition{
		Instances: []*Instance{serial, client},
		Connections: []*Connection{{
			Name: "c1", Type: rpc,
			FromEnds: []*ConnectionEnd{{Instance: client, Interface: "call"}},
			ToEnds:   []*ConnectionEnd{{Instance: serial, Interface: "serve"}},
		}},
	}
	require.NoError(t, comp.Seal())

	store := settings.New()
	store.Set("serial-0", "_stack_size", int64(32768))
	store.Set("serial-0", "serve_stack_size", int64(8192))
	opts := ThreadOptions{DefaultStackSize: 16384}

	t.Run("interface threads follow the connector thread counts", func(t *testing.T) {
		ts := comp.Threads(serial, store, opts)
		require.Len(t, ts, 3)

		// Control thread first, with the sanitized instance name.
		assert.Equal(t, "serial_0_0_control", ts[0].Name)
		assert.Equal(t, int64(32768), ts[0].StackSize)
		assert.Equal(t, "_capgen_stack_serial_0_0_control", ts[0].StackSymbol)
		assert.Equal(t, "_capgen_ipc_buffer_serial_0_0_control", ts[0].IPCSymbol)

		assert.Equal(t, "serial_0_serve_0000", ts[1].Name)
		assert.Equal(t, 0, ts[1].IntraIndex)
		assert.Equal(t, "serial_0_serve_0001", ts[2].Name)
		assert.Equal(t, 1, ts[2].IntraIndex)
		assert.Equal(t, int64(8192), ts[1].StackSize)
	})

	t.Run("default stack size applies when unconfigured", func(t *testing.T) {
		ts := comp.Threads(client, store, opts)
		require.Len(t, ts, 2)
		assert.Equal(t, "client_0_control", ts[0].Name)
		assert.Equal(t, int64(16384), ts[0].StackSize)
		assert.Equal(t, "client_call_0000", ts[1].Name)
	})

	t.Run("fault handler thread is appended on request", func(t *testing.T) {
		ts := comp.Threads(client, store, ThreadOptions{DefaultStackSize: 16384, DebugFaultHandlers: true})
		require.Len(t, ts, 3)
		assert.Equal(t, "client_0_fault_handler", ts[2].Name)
	})
}
