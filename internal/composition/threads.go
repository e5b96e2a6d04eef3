package composition

import (
	"fmt"
	"regexp"

	"github.com/componentry/capgen/internal/settings"
)

// ThreadOptions carries the generation-wide thread defaults.
type ThreadOptions struct {
	DefaultStackSize   int64
	DebugFaultHandlers bool
}

// Thread is one thread of a component instance, with the symbols the
// generated glue code will declare for it.
type Thread struct {
	// Name is the object-naming stem for the thread.
	Name string
	// Interface is the interface the thread serves, empty for the control
	// and fault-handler threads.
	Interface string
	// IntraIndex is the thread's index within a multi-threaded interface.
	IntraIndex int
	// StackSymbol and IPCSymbol name the stack and IPC buffer for the
	// thread; StackSize is the configured stack size in bytes.
	StackSymbol string
	StackSize   int64
	IPCSymbol   string
}

var symbolSanitizer = regexp.MustCompile(`[^A-Za-z0-9]`)

// Threads computes the thread list for an instance: the control thread
// first, then one thread per owned connection end per connector thread
// count, in connection declaration order, and optionally a trailing fault
// handler thread. Stack sizes come from the "_stack_size" (control) and
// "<interface>_stack_size" settings under the instance scope.
func (c *Composition) Threads(inst *Instance, store *settings.Store, opts ThreadOptions) []Thread {
	stem := symbolSanitizer.ReplaceAllString(inst.Name, "_")

	ts := []Thread{newThread(
		fmt.Sprintf("%s_0_control", stem),
		"", 0,
		store.Int(inst.Name, "_stack_size", opts.DefaultStackSize),
	)}

	for _, conn := range c.Connections {
		for _, end := range conn.FromEnds {
			if end.Instance != inst {
				continue
			}
			for x := 0; x < conn.Type.FromThreads; x++ {
				ts = append(ts, newThread(
					fmt.Sprintf("%s_%s_%04d", stem, end.Interface, x),
					end.Interface, x,
					store.Int(inst.Name, end.Interface+"_stack_size", opts.DefaultStackSize),
				))
			}
		}
		for _, end := range conn.ToEnds {
			if end.Instance != inst {
				continue
			}
			for x := 0; x < conn.Type.ToThreads; x++ {
				ts = append(ts, newThread(
					fmt.Sprintf("%s_%s_%04d", stem, end.Interface, x),
					end.Interface, x,
					store.Int(inst.Name, end.Interface+"_stack_size", opts.DefaultStackSize),
				))
			}
		}
	}

	if opts.DebugFaultHandlers {
		ts = append(ts, newThread(
			fmt.Sprintf("%s_0_fault_handler", stem),
			"", 0,
			opts.DefaultStackSize,
		))
	}
	return ts
}

func newThread(name, iface string, intraIndex int, stackSize int64) Thread {
	return Thread{
		Name:        name,
		Interface:   iface,
		IntraIndex:  intraIndex,
		StackSymbol: "_capgen_stack_" + name,
		StackSize:   stackSize,
		IPCSymbol:   "_capgen_ipc_buffer_" + name,
	}
}
