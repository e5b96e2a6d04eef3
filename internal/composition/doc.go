// Package composition holds the immutable graph model the allocators run
// over: component instances, typed connections, and their ordered ends.
//
// A Composition is built by a loader (see internal/adl), then sealed. Sealing
// assigns every connection end a stable handle in declaration order and
// builds the per-instance index used by the allocators. Declaration order is
// semantically load-bearing: a downstream capability-distribution tool
// re-derives the same identifiers from the same declarations, so every
// enumeration in this package follows input order, never map order.
package composition
