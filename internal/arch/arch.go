// Package arch describes the target architectures the generator can produce
// capability assignments for: word width, badge bit-width, and whether the
// ARM interrupt conventions apply.
package arch

import "fmt"

// Arch identifies one target architecture.
type Arch struct {
	// Name is the canonical architecture tag, e.g. "aarch64".
	Name string
	// WordBits is the machine word width in bits.
	WordBits int
	// BadgeBits is the number of usable bits in a capability badge.
	BadgeBits int
	// arm marks the ARM family, which carries its own interrupt-cell
	// conventions (SPI offset, fixed 3-cell format).
	arm bool
}

// known lists every supported architecture tag. Badge width follows the
// kernel ABI: 28 bits on 32-bit targets, a full word on 64-bit targets.
var known = []Arch{
	{Name: "aarch32", WordBits: 32, BadgeBits: 28, arm: true},
	{Name: "arm_hyp", WordBits: 32, BadgeBits: 28, arm: true},
	{Name: "aarch64", WordBits: 64, BadgeBits: 64, arm: true},
	{Name: "ia32", WordBits: 32, BadgeBits: 28},
	{Name: "x86_64", WordBits: 64, BadgeBits: 64},
	{Name: "riscv32", WordBits: 32, BadgeBits: 28},
	{Name: "riscv64", WordBits: 64, BadgeBits: 64},
}

// Lookup resolves an architecture tag to its description.
func Lookup(name string) (Arch, error) {
	for _, a := range known {
		if a.Name == name {
			return a, nil
		}
	}
	return Arch{}, fmt.Errorf("unknown architecture %q", name)
}

// IsARM reports whether the architecture belongs to the ARM family.
func (a Arch) IsARM() bool {
	return a.arm
}

// WordBytes returns the machine word width in bytes.
func (a Arch) WordBytes() int {
	return a.WordBits / 8
}

// BadgeLimit returns the first badge value that no longer fits the badge
// field, i.e. 2^BadgeBits.
func (a Arch) BadgeLimit() uint64 {
	if a.BadgeBits >= 64 {
		// 2^64 does not fit a uint64; callers compare with >=, so the
		// maximum representable value serves as the ceiling.
		return ^uint64(0)
	}
	return uint64(1) << a.BadgeBits
}

// BadgeMask returns a mask with every badge bit set.
func (a Arch) BadgeMask() uint64 {
	if a.BadgeBits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << a.BadgeBits) - 1
}
