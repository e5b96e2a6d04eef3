package alloc

import "github.com/componentry/capgen/internal/arch"

// notifCursor steps through notification badge values: 0 -> 1, then a left
// shift per step, skipping bit positions outside the mask. The walk is an
// explicit loop capped at the badge width so exhaustion is a single check
// rather than a recursion-depth concern.
type notifCursor struct {
	next  uint64
	mask  uint64
	limit uint64
	bits  int
}

func newNotifCursor(mask uint64, target arch.Arch) *notifCursor {
	return &notifCursor{mask: mask, limit: target.BadgeLimit(), bits: target.BadgeBits}
}

// current returns the badge value the cursor sits on.
func (c *notifCursor) current() uint64 {
	return c.next
}

// advance moves to the next bit position inside the mask.
func (c *notifCursor) advance() error {
	for i := 0; i <= c.bits; i++ {
		if c.next >= c.limit {
			return ErrExhausted
		}
		if c.next == 0 {
			c.next = 1
		} else {
			c.next <<= 1
		}
		if c.next == 0 {
			// Shifted past the top of a 64-bit word.
			return ErrExhausted
		}
		if c.next&c.mask != 0 {
			return nil
		}
	}
	return ErrExhausted
}

// rpcCursor steps through RPC badge values: increment by one, then repair
// any bits that fall outside the mask by adding them back on. The repair
// assumes at most one disallowed bit appears per step, which the
// increment-by-one discipline guarantees.
type rpcCursor struct {
	next  uint64
	mask  uint64
	limit uint64
	bits  int
}

func newRPCCursor(mask uint64, target arch.Arch) *rpcCursor {
	limit := target.BadgeLimit()
	if mask < limit {
		limit = mask
	}
	return &rpcCursor{next: 1, mask: mask, limit: limit, bits: target.BadgeBits}
}

// current returns the badge value the cursor sits on.
func (c *rpcCursor) current() uint64 {
	return c.next
}

// step increments the cursor and renormalizes it into the mask.
func (c *rpcCursor) step() error {
	c.next++
	return c.normalize()
}

// normalize repairs the cursor until every set bit lies inside the mask, or
// fails once the candidate reaches the ceiling min(2^badgeBits, mask).
func (c *rpcCursor) normalize() error {
	for i := 0; i <= c.bits; i++ {
		if c.next >= c.limit {
			return ErrExhausted
		}
		if c.next&c.mask == c.next {
			return nil
		}
		c.next += ^c.mask & c.next
	}
	return ErrExhausted
}
