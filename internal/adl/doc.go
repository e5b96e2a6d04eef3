// Package adl loads the component composition description from HCL files
// and translates it into the immutable composition model plus the settings
// store. It is the concrete form of the upstream parser the allocators
// assume: after Load returns, the graph is sealed and nothing mutates it.
package adl
