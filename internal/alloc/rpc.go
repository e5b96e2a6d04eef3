package alloc

import (
	"fmt"

	"github.com/componentry/capgen/internal/arch"
	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/settings"
)

// RPCBadges allocates the badge values for a connection end that uses the
// instance's global RPC endpoint. The result holds one badge per end on the
// opposite side of the connection: a server receiving from N clients gets N
// distinct badges, one addressed to each client.
//
// Like the notification object, the endpoint is shared across every
// connection its owning instance participates in, so all of them are walked
// in declaration order with a single cursor. Badges start at 1 and increment
// per step, skipping bits outside ${instance}.global_rpc_endpoint_mask, and
// each value is OR'd with ${instance}.global_rpc_endpoint_base.
func RPCBadges(comp *composition.Composition, end *composition.ConnectionEnd, store *settings.Store, target arch.Arch) ([]uint64, error) {
	inst := end.Instance
	base := store.Uint(inst.Name, "global_rpc_endpoint_base", 0)
	mask := store.Uint(inst.Name, "global_rpc_endpoint_mask", target.BadgeMask()-1)

	cur := newRPCCursor(mask, target)
	if err := cur.normalize(); err != nil {
		return nil, rpcErr(err, end)
	}

	var badges []uint64
	for _, conn := range comp.IndexFor(inst).Connections {
		if conn.Type.BoolAttribute("from_global_rpc_endpoint") {
			for _, fe := range conn.FromEnds {
				if fe.Instance != inst {
					continue
				}
				for range conn.ToEnds {
					badges = append(badges, cur.current()|base)
					if err := cur.step(); err != nil {
						return nil, rpcErr(err, end)
					}
				}
				if fe.Same(end) {
					return badges, nil
				}
				badges = nil
			}
		}
		if conn.Type.BoolAttribute("to_global_rpc_endpoint") {
			for _, te := range conn.ToEnds {
				if te.Instance != inst {
					continue
				}
				for range conn.FromEnds {
					badges = append(badges, cur.current()|base)
					if err := cur.step(); err != nil {
						return nil, rpcErr(err, end)
					}
				}
				if te.Same(end) {
					return badges, nil
				}
				badges = nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no RPC endpoint badge applies to %s", ErrNotAllocatable, end)
}

func rpcErr(err error, end *composition.ConnectionEnd) error {
	return fmt.Errorf("%w: couldn't allocate RPC endpoint badge for %s", err, end)
}
