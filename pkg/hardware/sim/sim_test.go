// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"errors"
	"testing"

	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
)

func TestHiWordRegister(t *testing.T) {
	b := New()
	b.HiWord(0x100)
	if err := b.Write32(0x100, 0x00ff00aa); err != nil {
		t.Fatal(err)
	}
	if err := b.Write32(0x100, 0x000f0005); err != nil {
		t.Fatal(err)
	}
	if v := b.Reg(0x100); v != 0xa5 {
		t.Errorf("Expected 0xa5, got %#x", v)
	}

	// Plain registers store the whole word.
	if err := b.Write32(0x200, 0x000f0005); err != nil {
		t.Fatal(err)
	}
	if v := b.Reg(0x200); v != 0x000f0005 {
		t.Errorf("Expected 0xf0005, got %#x", v)
	}
}

func TestBusReadWrite(t *testing.T) {
	b := New()
	d := b.AddDevice(0x20, map[uint8]uint8{0xed: 0x80, 0xee: 0x91})
	bus := b.Bus("i2c0")

	v, err := bus.ReadReg(0x20, 0xed)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x80 {
		t.Errorf("Expected 0x80, got %#x", v)
	}
	if err := bus.WriteReg(0x20, 0xcc, 0x0c); err != nil {
		t.Fatal(err)
	}
	if d.Reg(0xcc) != 0x0c {
		t.Errorf("Expected 0x0c in reg 0xcc, got %#x", d.Reg(0xcc))
	}

	ops := b.OpsOf(OpBusRead, OpBusWrite)
	if len(ops) != 2 {
		t.Fatalf("Expected 2 bus ops, got %d", len(ops))
	}
	if ops[0].Kind != OpBusRead || ops[0].Value != 0x80 {
		t.Errorf("Expected read of 0x80 first, got %v", ops[0])
	}
	if ops[1].Kind != OpBusWrite || ops[1].Reg != 0xcc {
		t.Errorf("Expected write to 0xcc second, got %v", ops[1])
	}
}

func TestBusNoDevice(t *testing.T) {
	b := New()
	_, err := b.Bus("i2c0").ReadReg(0x20, 0xed)
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}
}

func TestBusRequiresPins(t *testing.T) {
	b := New()
	d := b.AddDevice(0x20, nil)
	scl := gpio.PinID{Bank: 0, Pin: gpio.PB1}
	d.RequirePins(1, scl)

	bus := b.Bus("i2c0")
	if _, err := bus.ReadReg(0x20, 0); !errors.Is(err, ErrBusNotMuxed) {
		t.Fatalf("Expected ErrBusNotMuxed, got %v", err)
	}
	if err := b.SetFunction(0, gpio.PB1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.ReadReg(0x20, 0); err != nil {
		t.Errorf("Expected read to succeed after mux, got %v", err)
	}
}

func TestFaultInjection(t *testing.T) {
	b := New()
	boom := errors.New("boom")
	b.Faults[OpPull] = boom

	if err := b.SetPull(1, gpio.PA0, gpio.PullUp); err != boom {
		t.Errorf("Expected injected fault, got %v", err)
	}
	if err := b.SetPull(1, gpio.PA0, gpio.PullUp); err != nil {
		t.Errorf("Expected fault to fire once, got %v", err)
	}
	if n := len(b.OpsOf(OpPull)); n != 2 {
		t.Errorf("Expected 2 recorded pull ops, got %d", n)
	}
	if p := b.Pad(1, gpio.PA0); p.Pull != gpio.PullUp {
		t.Errorf("Expected pull up, got %v", p.Pull)
	}
}

func TestPhyModeSticky(t *testing.T) {
	b := New()
	if err := b.SetPhyMode(2, multiphy.PCIe); err != nil {
		t.Fatal(err)
	}
	if err := b.SetPhyMode(2, multiphy.PCIe); err != nil {
		t.Errorf("Expected repeated mode to be accepted, got %v", err)
	}
	if err := b.SetPhyMode(2, multiphy.SATA); err == nil {
		t.Errorf("Expected mode change on a live phy to fail")
	}
	if m := b.Phy(2); m != multiphy.PCIe {
		t.Errorf("Expected pcie, got %v", m)
	}
}

func TestDomainAndDump(t *testing.T) {
	b := New()
	if err := b.SetDomainVoltage(iodomain.VCCIO4, iodomain.V1V8); err != nil {
		t.Fatal(err)
	}
	if l, ok := b.Domain(iodomain.VCCIO4); !ok || l != iodomain.V1V8 {
		t.Errorf("Expected VCCIO4 at 1.8V, got %v %v", l, ok)
	}
	if got, want := b.Dump(), "   0 domain VCCIO4=1.8V\n"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	b.ClearOps()
	if len(b.Ops()) != 0 {
		t.Errorf("Expected empty log after ClearOps")
	}
}
