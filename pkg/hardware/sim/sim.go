// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim is an in-memory board. It implements every hardware
// primitive bring-up drives and records each call in order, which makes it
// usable both as a test double and as a dry-run target.
package sim

import (
	"fmt"
	"strings"
	"sync"

	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
	"github.com/u-root/u-bringup/pkg/hardware/mmio"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
	"github.com/u-root/u-bringup/pkg/logger"
)

var log = logger.LogContainer.GetSimpleLogger()

type OpKind int

const (
	OpRegRead OpKind = iota
	OpRegWrite
	OpBusRead
	OpBusWrite
	OpPull
	OpFunction
	OpDirection
	OpDrive
	OpInputMode
	OpOutput
	OpDomain
	OpPhyMode
)

var opNames = [...]string{
	OpRegRead:   "reg-read",
	OpRegWrite:  "reg-write",
	OpBusRead:   "bus-read",
	OpBusWrite:  "bus-write",
	OpPull:      "pull",
	OpFunction:  "function",
	OpDirection: "direction",
	OpDrive:     "drive",
	OpInputMode: "input-mode",
	OpOutput:    "output",
	OpDomain:    "domain",
	OpPhyMode:   "phy-mode",
}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opNames) {
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
	return opNames[k]
}

// PinOp reports whether k is a pin driver operation.
func (k OpKind) PinOp() bool {
	return k >= OpPull && k <= OpOutput
}

// Op is one recorded primitive call. Which fields are meaningful depends
// on Kind: Addr for register ops, Dev/Reg for bus ops, Pin for pin ops and
// Index for domains and PHYs. Value carries the written value or the
// numeric argument.
type Op struct {
	Kind  OpKind
	Addr  uint32
	Dev   uint8
	Reg   uint8
	Pin   gpio.PinID
	Index int
	Value uint32
}

func (o Op) String() string {
	switch {
	case o.Kind == OpRegRead || o.Kind == OpRegWrite:
		return fmt.Sprintf("%v %#08x=%#08x", o.Kind, o.Addr, o.Value)
	case o.Kind == OpBusRead || o.Kind == OpBusWrite:
		return fmt.Sprintf("%v %#02x/%#02x=%#02x", o.Kind, o.Dev, o.Reg, o.Value)
	case o.Kind.PinOp():
		return fmt.Sprintf("%v %v=%d", o.Kind, o.Pin, o.Value)
	case o.Kind == OpDomain:
		return fmt.Sprintf("%v %v=%v", o.Kind, iodomain.Domain(o.Index), iodomain.Level(o.Value))
	case o.Kind == OpPhyMode:
		return fmt.Sprintf("%v %d=%v", o.Kind, o.Index, multiphy.Mode(o.Value))
	}
	return o.Kind.String()
}

// Pad is the simulated state of one pin.
type Pad struct {
	Function  int
	Pull      gpio.Pull
	Drive     gpio.Drive
	Input     gpio.InputMode
	Direction gpio.Direction
	Level     bool
}

// Board is the simulated SoC. The zero value is not usable, use New.
type Board struct {
	lock *sync.Mutex

	ops     []Op
	regs    map[uint32]uint32
	hiword  map[uint32]bool
	pads    map[gpio.PinID]Pad
	domains map[iodomain.Domain]iodomain.Level
	phys    map[int]multiphy.Mode
	devices map[uint8]*Device

	// Faults makes the next primitive of a kind fail with the given error.
	// The failing call is still recorded.
	Faults map[OpKind]error
}

func New() *Board {
	return &Board{
		lock:    &sync.Mutex{},
		regs:    make(map[uint32]uint32),
		hiword:  make(map[uint32]bool),
		pads:    make(map[gpio.PinID]Pad),
		domains: make(map[iodomain.Domain]iodomain.Level),
		phys:    make(map[int]multiphy.Mode),
		devices: make(map[uint8]*Device),
		Faults:  make(map[OpKind]error),
	}
}

// record appends op and returns the injected fault for its kind, if any.
// Callers hold the lock.
func (b *Board) record(op Op) error {
	b.ops = append(b.ops, op)
	log.Debugf("Sim: %v", op)
	if err, ok := b.Faults[op.Kind]; ok {
		delete(b.Faults, op.Kind)
		return err
	}
	return nil
}

// Ops returns a copy of every call recorded so far.
func (b *Board) Ops() []Op {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]Op(nil), b.ops...)
}

// OpsOf returns the recorded calls matching any of kinds.
func (b *Board) OpsOf(kinds ...OpKind) []Op {
	b.lock.Lock()
	defer b.lock.Unlock()
	var out []Op
	for _, op := range b.ops {
		for _, k := range kinds {
			if op.Kind == k {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// ClearOps forgets the call log but keeps the simulated state.
func (b *Board) ClearOps() {
	b.lock.Lock()
	b.ops = nil
	b.lock.Unlock()
}

// Dump renders the call log, one call per line.
func (b *Board) Dump() string {
	var sb strings.Builder
	for i, op := range b.Ops() {
		fmt.Fprintf(&sb, "%4d %v\n", i, op)
	}
	return sb.String()
}

// HiWord marks registers whose upper half is a write-enable mask for the
// lower half. Other registers are plain 32-bit stores.
func (b *Board) HiWord(addrs ...uint32) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, a := range addrs {
		b.hiword[a] = true
	}
}

func (b *Board) Read32(addr uint32) (uint32, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	v := b.regs[addr]
	if err := b.record(Op{Kind: OpRegRead, Addr: addr, Value: v}); err != nil {
		return 0, err
	}
	return v, nil
}

func (b *Board) Write32(addr uint32, v uint32) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.record(Op{Kind: OpRegWrite, Addr: addr, Value: v}); err != nil {
		return err
	}
	if b.hiword[addr] {
		mask := v >> 16
		b.regs[addr] = b.regs[addr]&^mask | v&mask
	} else {
		b.regs[addr] = v
	}
	return nil
}

// Reg returns the current content of a register.
func (b *Board) Reg(addr uint32) uint32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.regs[addr]
}

func (b *Board) pinOp(kind OpKind, bank, pin int, v uint32, set func(*Pad)) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	id := gpio.PinID{Bank: bank, Pin: pin}
	if err := b.record(Op{Kind: kind, Pin: id, Value: v}); err != nil {
		return err
	}
	if pin < 0 || pin >= gpio.PinsPerBank || bank < 0 {
		return fmt.Errorf("sim: no such pin %v", id)
	}
	p := b.pads[id]
	set(&p)
	b.pads[id] = p
	return nil
}

func (b *Board) SetPull(bank, pin int, pull gpio.Pull) error {
	return b.pinOp(OpPull, bank, pin, uint32(pull), func(p *Pad) { p.Pull = pull })
}

func (b *Board) SetFunction(bank, pin int, function int) error {
	return b.pinOp(OpFunction, bank, pin, uint32(function), func(p *Pad) { p.Function = function })
}

func (b *Board) SetDirection(bank, pin int, dir gpio.Direction) error {
	return b.pinOp(OpDirection, bank, pin, uint32(dir), func(p *Pad) { p.Direction = dir })
}

func (b *Board) SetDriveStrength(bank, pin int, drive gpio.Drive) error {
	return b.pinOp(OpDrive, bank, pin, uint32(drive), func(p *Pad) { p.Drive = drive })
}

func (b *Board) SetInputMode(bank, pin int, mode gpio.InputMode) error {
	return b.pinOp(OpInputMode, bank, pin, uint32(mode), func(p *Pad) { p.Input = mode })
}

func (b *Board) WriteOutput(bank, pin int, level bool) error {
	var v uint32
	if level {
		v = 1
	}
	return b.pinOp(OpOutput, bank, pin, v, func(p *Pad) { p.Level = level })
}

// Pad returns the simulated state of a pin.
func (b *Board) Pad(bank, pin int) Pad {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pads[gpio.PinID{Bank: bank, Pin: pin}]
}

func (b *Board) SetDomainVoltage(d iodomain.Domain, l iodomain.Level) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.record(Op{Kind: OpDomain, Index: int(d), Value: uint32(l)}); err != nil {
		return err
	}
	b.domains[d] = l
	return nil
}

// Domain returns the level a domain was last set to.
func (b *Board) Domain(d iodomain.Domain) (iodomain.Level, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	l, ok := b.domains[d]
	return l, ok
}

// SetPhyMode refuses to move a PHY from one protocol to another without
// a reset in between, the same as the silicon.
func (b *Board) SetPhyMode(index int, mode multiphy.Mode) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.record(Op{Kind: OpPhyMode, Index: index, Value: uint32(mode)}); err != nil {
		return err
	}
	if cur, ok := b.phys[index]; ok && cur != mode && cur != multiphy.Idle {
		return fmt.Errorf("sim: phy %d already in %v mode", index, cur)
	}
	b.phys[index] = mode
	return nil
}

// Phy returns the mode of a PHY, Idle if never set.
func (b *Board) Phy(index int) multiphy.Mode {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.phys[index]
}

var (
	_ mmio.ReadWriter = (*Board)(nil)
	_ gpio.Driver     = (*Board)(nil)
	_ iodomain.Setter = (*Board)(nil)
	_ multiphy.Setter = (*Board)(nil)
)
