// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmio provides raw 32-bit access to memory mapped registers.
//
// The accessor has no masking semantics of its own. Many Rockchip
// registers are "hi-word masked": bits 31:16 are a write enable for bits
// 15:0, and the hardware leaves every bit without its enable set untouched.
// HiWord builds such a value so that a field can be updated with a single
// store and no read-modify-write.
package mmio

type Writer interface {
	Write32(addr uint32, v uint32) error
}

type Reader interface {
	Read32(addr uint32) (uint32, error)
}

type ReadWriter interface {
	Reader
	Writer
}

// HiWord encodes a masked update for a hi-word masked register. Bits of
// value outside mask are dropped.
func HiWord(mask, value uint16) uint32 {
	return uint32(mask)<<16 | uint32(value&mask)
}

// Bit returns a 16-bit mask with bit n set.
func Bit(n uint) uint16 {
	return 1 << n
}
