package alloc

import (
	"fmt"

	"github.com/componentry/capgen/internal/arch"
	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/devicetree"
	"github.com/componentry/capgen/internal/settings"
)

// dtbThreadlessConnectors are the connector type names that wire a device's
// interrupts straight to a notification object with no interface thread.
var dtbThreadlessConnectors = map[string]bool{
	"seL4DTBHardwareThreadless": true,
	"seL4DTBHWThreadless":       true,
}

// IsDTBThreadless reports whether a connector type name is one of the DTB
// hardware threadless variants.
func IsDTBThreadless(typeName string) bool {
	return dtbThreadlessConnectors[typeName]
}

// BadgeSet is the result of a notification badge query: a single badge for a
// global-endpoint end, or one badge per interrupt line for a DTB threadless
// end.
type BadgeSet struct {
	Badge     uint64
	IRQBadges []uint64
	IRQList   bool
}

// NotificationBadges allocates the badge value(s) for a connection end that
// uses the instance's global notification endpoint.
//
// The notification object is shared across every connection its owning
// instance participates in, so badges are assigned by walking all of those
// connections in declaration order with one cursor. Badges start at 1 and
// left-shift per step, skipping bits outside ${instance}.global_endpoint_mask,
// and every emitted value is OR'd with ${instance}.global_endpoint_base so a
// component can reserve badge bits for uses outside this mechanism.
func NotificationBadges(comp *composition.Composition, end *composition.ConnectionEnd, store *settings.Store, target arch.Arch) (BadgeSet, error) {
	inst := end.Instance
	base := store.Uint(inst.Name, "global_endpoint_base", 1)
	mask := store.Uint(inst.Name, "global_endpoint_mask", target.BadgeMask()&^base)

	cur := newNotifCursor(mask, target)
	if err := cur.advance(); err != nil {
		return BadgeSet{}, notifErr(err, end)
	}

	for _, conn := range comp.IndexFor(inst).Connections {
		if dtbThreadlessConnectors[conn.Type.Name] && connectsToInstance(conn, inst) {
			for _, te := range conn.ToEnds {
				if !store.Bool(te.String(), "generate_interrupts", false) {
					continue
				}
				node, err := dtbNode(store, te)
				if err != nil {
					return BadgeSet{}, err
				}
				irqs, err := devicetree.ParseNodeInterrupts(node, -1, target)
				if err != nil {
					return BadgeSet{}, err
				}
				badges := make([]uint64, 0, len(irqs))
				for range irqs {
					badges = append(badges, cur.current()|base)
					if err := cur.advance(); err != nil {
						return BadgeSet{}, notifErr(err, end)
					}
				}
				if te.Same(end) {
					return BadgeSet{IRQBadges: badges, IRQList: true}, nil
				}
			}
		}
		if conn.Type.BoolAttribute("from_global_endpoint") {
			for _, fe := range conn.FromEnds {
				if fe.Instance != inst {
					continue
				}
				if fe.Same(end) {
					return BadgeSet{Badge: cur.current() | base}, nil
				}
				if err := cur.advance(); err != nil {
					return BadgeSet{}, notifErr(err, end)
				}
			}
		}
		if conn.Type.BoolAttribute("to_global_endpoint") {
			for _, te := range conn.ToEnds {
				if te.Instance != inst {
					continue
				}
				if te.Same(end) {
					return BadgeSet{Badge: cur.current() | base}, nil
				}
				if err := cur.advance(); err != nil {
					return BadgeSet{}, notifErr(err, end)
				}
			}
		}
	}

	return BadgeSet{}, fmt.Errorf("%w: no notification badge applies to %s", ErrNotAllocatable, end)
}

func notifErr(err error, end *composition.ConnectionEnd) error {
	return fmt.Errorf("%w: couldn't allocate notification badge for %s", err, end)
}

func connectsToInstance(conn *composition.Connection, inst *composition.Instance) bool {
	for _, te := range conn.ToEnds {
		if te.Instance == inst {
			return true
		}
	}
	return false
}

// dtbNode fetches the decoded device-tree node attached to an end: the
// "dtb" setting under the end's scope, holding the first result of the
// upstream device-tree query.
func dtbNode(store *settings.Store, end *composition.ConnectionEnd) (devicetree.Node, error) {
	m, ok := store.Map(end.String(), "dtb")
	if !ok {
		return nil, fmt.Errorf("end %s has generate_interrupts set but no dtb setting", end)
	}
	node, ok := devicetree.Node(m).FirstQueryResult()
	if !ok {
		return nil, fmt.Errorf("dtb setting for %s has no query result", end)
	}
	return node, nil
}
