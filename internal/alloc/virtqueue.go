package alloc

import (
	"fmt"

	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/settings"
)

// VirtQueueConnector is the connector type whose client IDs share one
// namespace per instance.
const VirtQueueConnector = "seL4VirtQueues"

// VirtQueueClientID assigns the client ID for a virtqueue connection end:
// a small integer unique among all of the instance's virtqueue ends.
//
// An end can pin its ID with an "<interface>_id" setting under the instance
// scope; the remaining ends are assigned around the pinned values, scanning
// from 0 upward in declaration order and skipping anything already taken.
func VirtQueueClientID(comp *composition.Composition, end *composition.ConnectionEnd, store *settings.Store) (int, error) {
	inst := end.Instance

	var ends []*composition.ConnectionEnd
	var ids []*int64
	for _, conn := range comp.IndexFor(inst).Connections {
		if conn.Type.Name != VirtQueueConnector {
			continue
		}
		for _, e := range conn.Ends() {
			if e.Instance != inst {
				continue
			}
			ends = append(ends, e)
			if pinned, ok := store.OptionalInt(inst.Name, e.Interface+"_id"); ok {
				v := pinned
				ids = append(ids, &v)
			} else {
				ids = append(ids, nil)
			}
		}
	}

	current := int64(0)
	for i := range ends {
		if ids[i] != nil {
			continue
		}
		// ids holds at most len(ends)-1 other values, so scanning len(ids)
		// candidates always finds a free one.
		for range ids {
			if !idTaken(ids, current) {
				v := current
				ids[i] = &v
				current++
				break
			}
			current++
		}
	}

	for i, e := range ends {
		if e.Same(end) {
			return int(*ids[i]), nil
		}
	}
	return 0, fmt.Errorf("%w: %s is not a virtqueue end of instance %s", ErrEndNotFound, end, inst.Name)
}

func idTaken(ids []*int64, id int64) bool {
	for _, v := range ids {
		if v != nil && *v == id {
			return true
		}
	}
	return false
}
