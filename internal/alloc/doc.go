// Package alloc assigns the small integer identifiers used by the generated
// glue code: notification badges, RPC endpoint badges, and virtqueue client
// IDs. Every allocator is a pure function over a sealed composition and a
// settings store: a fresh cursor per call, a full scan in declaration order,
// no state carried between calls. Given the same inputs the results are
// bit-identical on every run, which the downstream capability-distribution
// tool depends on.
package alloc
