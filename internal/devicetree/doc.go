// Package devicetree decodes interrupt descriptors from already-decoded
// device-tree node properties. It never touches the device-tree binary
// format: nodes arrive as nested maps produced by the composition loader or
// the settings overlay, and only the "interrupts" / "interrupts_extended"
// value lists are interpreted.
package devicetree
