package gfx

import "math/bits"

// slotMask is a bitset over at most 32 binding slots.
type slotMask uint32

const maxSlots = 32

func (m slotMask) has(slot int) bool { return m&(1<<uint(slot)) != 0 }
func (m *slotMask) set(slot int)     { *m |= 1 << uint(slot) }
func (m *slotMask) clear(slot int)   { *m &^= 1 << uint(slot) }
func (m slotMask) empty() bool       { return m == 0 }
func (m slotMask) count() int        { return bits.OnesCount32(uint32(m)) }

// first returns the lowest set slot, or -1 when m is empty.
func (m slotMask) first() int {
	if m == 0 {
		return -1
	}
	return bits.TrailingZeros32(uint32(m))
}

// fill returns a mask with slots [0, n) set.
func fillMask(n int) slotMask {
	if n >= maxSlots {
		return ^slotMask(0)
	}
	return slotMask(1)<<uint(n) - 1
}
