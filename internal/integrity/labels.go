// Package integrity folds grouped and manually-labelled composition
// elements into canonical integrity-group labels. Instances that share an
// address space, instances with an explicit integrity_label setting, and
// connections living entirely inside one trust domain all map to one label,
// so downstream analyses see a single integrity domain instead of spurious
// boundaries.
package integrity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/componentry/capgen/internal/composition"
	"github.com/componentry/capgen/internal/settings"
)

// ErrLabelCycle marks a redirect chain that revisits one of its own names.
var ErrLabelCycle = errors.New("cycle in group labelling")

// Resolve follows redirects in labels until a fixed point and returns the
// canonical label for name. Names with no redirect resolve to themselves, so
// the function is idempotent. A chain that revisits one of its own names
// fails with ErrLabelCycle carrying the full chain.
func Resolve(labels map[string]string, name string) (string, error) {
	group := name
	seen := []string{name}
	for {
		next, ok := labels[group]
		if !ok {
			return group, nil
		}
		group = next
		for _, s := range seen {
			if s == group {
				return "", fmt.Errorf("%w: %s", ErrLabelCycle, strings.Join(seen, ", "))
			}
		}
		seen = append(seen, group)
	}
}

// GroupLabels maps every non-independent instance and every internal
// connection to its canonical group label. Canonical means fully resolved:
// no further redirect exists for the returned label.
//
// Three redirect sources apply, in order:
//  1. an instance whose address space differs from its own name redirects to
//     its group's canonical label;
//  2. an instance with an integrity_label setting redirects to that label,
//     overriding the address-space redirect;
//  3. a connection whose ends all resolve to one label redirects to it (an
//     internal connection, entirely within one trust domain).
func GroupLabels(comp *composition.Composition, store *settings.Store) (map[string]string, error) {
	labels := map[string]string{}

	// 1. Address-space groups.
	for _, inst := range comp.Instances {
		if inst.AddressSpace != inst.Name {
			group, err := Resolve(labels, inst.AddressSpace)
			if err != nil {
				return nil, err
			}
			labels[inst.Name] = group
		}
	}

	// 2. Direct configuration.
	for _, inst := range comp.Instances {
		if label, ok := store.Lookup(inst.Name, "integrity_label"); ok {
			if name, ok := label.(string); ok {
				group, err := Resolve(labels, name)
				if err != nil {
					return nil, err
				}
				labels[inst.Name] = group
			}
		}
	}

	// 3. Internal connections.
	for _, conn := range comp.Connections {
		groups := map[string]bool{}
		var single string
		for _, end := range conn.Ends() {
			group, err := Resolve(labels, end.Instance.Name)
			if err != nil {
				return nil, err
			}
			groups[group] = true
			single = group
		}
		if len(groups) == 1 {
			labels[conn.Name] = single
		}
	}

	out := make(map[string]string, len(labels))
	for name, group := range labels {
		canon, err := Resolve(labels, group)
		if err != nil {
			return nil, err
		}
		out[name] = canon
	}
	return out, nil
}
