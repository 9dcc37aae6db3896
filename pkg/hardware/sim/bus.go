// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/i2c"
)

var (
	ErrNoDevice    = errors.New("sim: no ack from device")
	ErrBusNotMuxed = errors.New("sim: bus pins not muxed")
)

// Device is a register file behind an I2C address.
type Device struct {
	Addr uint8
	regs [256]uint8

	// Pins that must carry function before the device answers.
	pins     []gpio.PinID
	function int
}

func (d *Device) Reg(r uint8) uint8 { return d.regs[r] }

func (d *Device) Set(r, v uint8) { d.regs[r] = v }

// RequirePins makes the device unreachable until every pin in ids has
// been switched to function.
func (d *Device) RequirePins(function int, ids ...gpio.PinID) {
	d.function = function
	d.pins = append(d.pins, ids...)
}

// AddDevice attaches a register file at addr with the given initial
// register contents.
func (b *Board) AddDevice(addr uint8, init map[uint8]uint8) *Device {
	b.lock.Lock()
	defer b.lock.Unlock()
	d := &Device{Addr: addr}
	for r, v := range init {
		d.regs[r] = v
	}
	b.devices[addr] = d
	return d
}

// RemoveDevice detaches the device at addr so it no longer acks.
func (b *Board) RemoveDevice(addr uint8) {
	b.lock.Lock()
	delete(b.devices, addr)
	b.lock.Unlock()
}

// Tx implements drivers.I2C for single register reads and writes.
func (b *Board) Tx(addr uint16, w, r []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	dev := uint8(addr)
	var op Op
	switch {
	case len(w) == 1 && len(r) == 1:
		op = Op{Kind: OpBusRead, Dev: dev, Reg: w[0]}
	case len(w) == 2 && len(r) == 0:
		op = Op{Kind: OpBusWrite, Dev: dev, Reg: w[0], Value: uint32(w[1])}
	default:
		return fmt.Errorf("sim: unsupported transfer w=%d r=%d", len(w), len(r))
	}

	d, ok := b.devices[dev]
	if ok && op.Kind == OpBusRead {
		op.Value = uint32(d.regs[op.Reg])
	}
	if err := b.record(op); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w %#02x", ErrNoDevice, dev)
	}
	for _, id := range d.pins {
		if b.pads[id].Function != d.function {
			return fmt.Errorf("%w: %v", ErrBusNotMuxed, id)
		}
	}

	if op.Kind == OpBusRead {
		r[0] = d.regs[op.Reg]
	} else {
		d.regs[op.Reg] = w[1]
	}
	return nil
}

// Bus returns the board's I2C controller as an i2c.Bus.
func (b *Board) Bus(name string) i2c.Bus {
	return i2c.FromTx(name, b)
}

var _ drivers.I2C = (*Board)(nil)
