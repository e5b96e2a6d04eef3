// Package report runs every allocator over a sealed composition and
// assembles the result into one deterministic document: per-instance group
// labels and threads, per-end badges, virtqueue client IDs, and interrupt
// descriptors. The JSON form is byte-stable for fixed inputs so the
// downstream capability-distribution stage can diff regenerations.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/componentry/capgen/internal/alloc"
	"github.com/componentry/capgen/internal/arch"
	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/devicetree"
	"github.com/componentry/capgen/internal/integrity"
	"github.com/componentry/capgen/internal/settings"
)

// Options carries the generation-wide knobs.
type Options struct {
	Arch               arch.Arch
	DefaultStackSize   int64
	DebugFaultHandlers bool
}

// DefaultStackSize is the fallback per-thread stack size in bytes.
const DefaultStackSize = 16384

// Report is the full allocation result for one generation pass.
type Report struct {
	Arch        string            `json:"arch"`
	Instances   []*InstanceReport `json:"instances"`
	GroupLabels map[string]string `json:"group_labels,omitempty"`
}

// InstanceReport groups everything computed for one instance.
type InstanceReport struct {
	Name         string         `json:"name"`
	Component    string         `json:"component,omitempty"`
	AddressSpace string         `json:"address_space"`
	GroupLabel   string         `json:"group_label"`
	Threads      []ThreadReport `json:"threads"`
	Ends         []*EndReport   `json:"ends,omitempty"`
}

// ThreadReport is the serialized form of one instance thread.
type ThreadReport struct {
	Name        string `json:"name"`
	Interface   string `json:"interface,omitempty"`
	IntraIndex  int    `json:"intra_index"`
	StackSymbol string `json:"stack_symbol"`
	StackSize   int64  `json:"stack_size"`
	IPCSymbol   string `json:"ipc_symbol"`
}

// EndReport carries the identifiers assigned to one connection end.
type EndReport struct {
	End         string `json:"end"`
	Connection  string `json:"connection"`
	Connector   string `json:"connector"`
	Role        string `json:"role"`
	Permissions string `json:"permissions"`

	NotificationBadge *uint64                          `json:"notification_badge,omitempty"`
	IRQBadges         []uint64                         `json:"irq_badges,omitempty"`
	Interrupts        []devicetree.InterruptDescriptor `json:"interrupts,omitempty"`
	RPCBadges         []uint64                         `json:"rpc_badges,omitempty"`
	VirtQueueID       *int                             `json:"virtqueue_id,omitempty"`
}

// Generate computes the full report. Any allocator failure aborts the pass:
// a partial capability assignment must never be emitted.
func Generate(comp *composition.Composition, store *settings.Store, opts Options) (*Report, error) {
	if opts.DefaultStackSize == 0 {
		opts.DefaultStackSize = DefaultStackSize
	}

	labels, err := integrity.GroupLabels(comp, store)
	if err != nil {
		return nil, err
	}

	rep := &Report{Arch: opts.Arch.Name, GroupLabels: labels}
	byInstance := make(map[string]*InstanceReport, len(comp.Instances))
	threadOpts := composition.ThreadOptions{
		DefaultStackSize:   opts.DefaultStackSize,
		DebugFaultHandlers: opts.DebugFaultHandlers,
	}

	for _, inst := range comp.Instances {
		label := inst.Name
		if group, ok := labels[inst.Name]; ok {
			label = group
		}
		ir := &InstanceReport{
			Name:         inst.Name,
			Component:    inst.Component,
			AddressSpace: inst.AddressSpace,
			GroupLabel:   label,
			Threads:      threadReports(comp.Threads(inst, store, threadOpts)),
		}
		byInstance[inst.Name] = ir
		rep.Instances = append(rep.Instances, ir)
	}

	// Walk connections in declaration order so end reports land in handle
	// order within each instance.
	for _, conn := range comp.Connections {
		for _, end := range conn.FromEnds {
			er, err := endReport(comp, store, opts.Arch, conn, end, "from")
			if err != nil {
				return nil, err
			}
			byInstance[end.Instance.Name].Ends = append(byInstance[end.Instance.Name].Ends, er)
		}
		for _, end := range conn.ToEnds {
			er, err := endReport(comp, store, opts.Arch, conn, end, "to")
			if err != nil {
				return nil, err
			}
			byInstance[end.Instance.Name].Ends = append(byInstance[end.Instance.Name].Ends, er)
		}
	}

	return rep, nil
}

// endReport computes every identifier that applies to one end.
func endReport(comp *composition.Composition, store *settings.Store, target arch.Arch, conn *composition.Connection, end *composition.ConnectionEnd, role string) (*EndReport, error) {
	perm, err := settings.Permissions(store, end.Instance.Name, end.Interface)
	if err != nil {
		return nil, err
	}
	er := &EndReport{
		End:         end.String(),
		Connection:  conn.Name,
		Connector:   conn.Type.Name,
		Role:        role,
		Permissions: perm,
	}

	wantsNotif := (role == "from" && conn.Type.BoolAttribute("from_global_endpoint")) ||
		(role == "to" && conn.Type.BoolAttribute("to_global_endpoint"))
	wantsIRQs := role == "to" && alloc.IsDTBThreadless(conn.Type.Name) &&
		store.Bool(end.String(), "generate_interrupts", false)

	if wantsNotif || wantsIRQs {
		set, err := alloc.NotificationBadges(comp, end, store, target)
		if err != nil {
			return nil, err
		}
		if set.IRQList {
			er.IRQBadges = set.IRQBadges
		} else {
			badge := set.Badge
			er.NotificationBadge = &badge
		}
	}
	if wantsIRQs {
		node, ok := store.Map(end.String(), "dtb")
		if !ok {
			return nil, fmt.Errorf("end %s has generate_interrupts set but no dtb setting", end)
		}
		query, ok := devicetree.Node(node).FirstQueryResult()
		if !ok {
			return nil, fmt.Errorf("dtb setting for %s has no query result", end)
		}
		irqs, err := devicetree.ParseNodeInterrupts(query, -1, target)
		if err != nil {
			return nil, err
		}
		er.Interrupts = irqs
	}

	if (role == "from" && conn.Type.BoolAttribute("from_global_rpc_endpoint")) ||
		(role == "to" && conn.Type.BoolAttribute("to_global_rpc_endpoint")) {
		badges, err := alloc.RPCBadges(comp, end, store, target)
		if err != nil {
			return nil, err
		}
		er.RPCBadges = badges
	}

	if conn.Type.Name == alloc.VirtQueueConnector {
		id, err := alloc.VirtQueueClientID(comp, end, store)
		if err != nil {
			return nil, err
		}
		er.VirtQueueID = &id
	}

	return er, nil
}

func threadReports(threads []composition.Thread) []ThreadReport {
	out := make([]ThreadReport, len(threads))
	for i, t := range threads {
		out[i] = ThreadReport{
			Name:        t.Name,
			Interface:   t.Interface,
			IntraIndex:  t.IntraIndex,
			StackSymbol: t.StackSymbol,
			StackSize:   t.StackSize,
			IPCSymbol:   t.IPCSymbol,
		}
	}
	return out
}

// MarshalIndent renders the report as stable, human-diffable JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
