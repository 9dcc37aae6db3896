// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package i2c

import (
	"tinygo.org/x/drivers"
)

type txBus struct {
	name string
	tx   drivers.I2C

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

// FromTx adapts a TinyGo style drivers.I2C transport. Register reads are
// a one byte write of the register address followed by a one byte read.
func FromTx(name string, tx drivers.I2C) Bus {
	return &txBus{name: name, tx: tx}
}

func (b *txBus) ReadReg(dev, reg uint8) (uint8, error) {
	b.w[0] = reg
	if err := b.tx.Tx(uint16(dev), b.w[:1], b.r[:]); err != nil {
		return 0, Wrap(b.name, "read", dev, reg, err)
	}
	return b.r[0], nil
}

func (b *txBus) WriteReg(dev, reg, v uint8) error {
	b.w[0] = reg
	b.w[1] = v
	return Wrap(b.name, "write", dev, reg, b.tx.Tx(uint16(dev), b.w[:2], nil))
}
