// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bringup_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/board/pmic"
	"github.com/u-root/u-bringup/pkg/bringup"
	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/i2c"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
	"github.com/u-root/u-bringup/pkg/hardware/rk356x"
	"github.com/u-root/u-bringup/pkg/hardware/sim"
	"github.com/u-root/u-bringup/pkg/metric"
	"github.com/u-root/u-bringup/platform/radxa-e25/pkg/platform"
)

func simBoard(name, ver uint8) *sim.Board {
	b := sim.New()
	d := b.AddDevice(pmic.DefaultAddr, map[uint8]uint8{pmic.ChipName: name, pmic.ChipVer: ver})
	d.RequirePins(1, gpio.PinID{Bank: 0, Pin: gpio.PB1}, gpio.PinID{Bank: 0, Pin: gpio.PB2})
	return b
}

func hardware(b *sim.Board) bringup.Hardware {
	return bringup.Hardware{Bus: b.Bus("i2c0"), Pins: b, Regs: b, Domains: b, Phys: b}
}

func index(ops []sim.Op, match func(sim.Op) bool) int {
	for i, op := range ops {
		if match(op) {
			return i
		}
	}
	return -1
}

func TestPCIe3x2EndToEnd(t *testing.T) {
	b := simBoard(0x80, 0x91)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.PCIe3x2))
	if !res.Done() {
		t.Fatalf("Expected Done, got %v at %q: %v\n%s", res.State, res.Stage, res.Err, b.Dump())
	}
	if res.Chip.Chip != pmic.RK809 || res.Chip.Version != 1 {
		t.Errorf("Expected RK809 ver 1, got %v", res.Chip)
	}

	modes := make([]multiphy.Mode, len(res.Lanes))
	for i, a := range res.Lanes {
		modes[i] = a.Mode
	}
	if diff := cmp.Diff([]multiphy.Mode{multiphy.Idle, multiphy.Idle, multiphy.PCIe}, modes); diff != "" {
		t.Errorf("Lane modes mismatch (-want +got):\n%s", diff)
	}
	phyOps := b.OpsOf(sim.OpPhyMode)
	if len(phyOps) != 1 || phyOps[0].Index != 2 {
		t.Errorf("Expected a single PHY write to lane 2, got %v", phyOps)
	}

	for _, pin := range []int{gpio.PD4, gpio.PD6, gpio.PD5} {
		if p := b.Pad(2, pin); p.Function != 4 || p.Pull != gpio.PullNone {
			t.Errorf("gpio2 pin %d: expected function 4 pull none, got %+v", pin, p)
		}
	}
	if v := b.Reg(rk356x.GRF_IOFUNC_SEL5); v != 0x00c00040 {
		t.Errorf("Expected PCIe30x2 M1 route write 0x00c00040, got %#08x", v)
	}

	// Voltage first, PMIC before pins, pins before PHY, outputs last.
	ops := b.Ops()
	firstDomain := index(ops, func(op sim.Op) bool { return op.Kind == sim.OpDomain })
	firstBus := index(ops, func(op sim.Op) bool { return op.Kind == sim.OpBusRead })
	firstPCIePin := index(ops, func(op sim.Op) bool { return op.Pin == (gpio.PinID{Bank: 2, Pin: gpio.PD4}) })
	lastPCIePin := index(ops, func(op sim.Op) bool {
		return op.Kind == sim.OpDrive && op.Pin == (gpio.PinID{Bank: 2, Pin: gpio.PD5})
	})
	phyAt := index(ops, func(op sim.Op) bool { return op.Kind == sim.OpPhyMode })
	firstOut := index(ops, func(op sim.Op) bool { return op.Kind == sim.OpDirection })
	if !(firstDomain == 0 && firstDomain < firstBus && firstBus < firstPCIePin &&
		firstPCIePin < lastPCIePin && lastPCIePin < phyAt && phyAt < firstOut) {
		t.Errorf("Unexpected stage order: domain %d bus %d pins %d-%d phy %d out %d\n%s",
			firstDomain, firstBus, firstPCIePin, lastPCIePin, phyAt, firstOut, b.Dump())
	}

	if l, ok := b.Domain(iodomain.VCCIO4); !ok || l != iodomain.V1V8 {
		t.Errorf("Expected VCCIO4 at 1.8V, got %v", l)
	}
	if p := b.Pad(0, gpio.PA6); p.Direction != gpio.Output || !p.Level {
		t.Errorf("Expected USER_LED2 driven high, got %+v", p)
	}
	if p := b.Pad(3, gpio.PA7); p.Direction != gpio.Output || p.Level {
		t.Errorf("Expected PCIECLKIC_OE driven low, got %+v", p)
	}
	if p := b.Pad(0, gpio.PB7); p.Direction == gpio.Output {
		t.Errorf("USB host power enabled without usb3")
	}
}

func TestPMICSelectBeforeEnable(t *testing.T) {
	b := simBoard(0x80, 0x94)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.USB3))
	if !res.Done() {
		t.Fatalf("Expected Done, got %v: %v", res.State, res.Err)
	}
	writes := b.OpsOf(sim.OpBusWrite)
	if len(writes) != 11 {
		t.Fatalf("Expected 11 PMIC writes, got %d", len(writes))
	}
	for i, w := range writes {
		isEnable := w.Reg >= pmic.PowerEn0 && w.Reg <= pmic.PowerEn3
		if isEnable != (i >= 8) {
			t.Errorf("Write %d to %#02x out of order", i, w.Reg)
		}
	}
	if w := writes[9]; w.Reg != pmic.PowerEn2 || w.Value != 0xee {
		t.Errorf("Expected POWER_EN2=0xee without VCCIO_SD, got %v", w)
	}
}

func TestVccioSD(t *testing.T) {
	b := simBoard(0x80, 0x91)
	board := platform.Board(platform.WithVccioSD(iodomain.V1V8))
	if res := bringup.Run(board, hardware(b), feature.Of(feature.SDMMC1)); !res.Done() {
		t.Fatalf("Expected Done, got %v: %v", res.State, res.Err)
	}
	var ldo5, en2 *sim.Op
	writes := b.OpsOf(sim.OpBusWrite)
	for i := range writes {
		switch writes[i].Reg {
		case pmic.LDO5OnVsel:
			ldo5 = &writes[i]
		case pmic.PowerEn2:
			en2 = &writes[i]
		}
	}
	if ldo5 == nil || ldo5.Value != 0x30 {
		t.Errorf("Expected LDO5 programmed to 1.8V, got %v", ldo5)
	}
	if en2 == nil || en2.Value != 0xff {
		t.Errorf("Expected POWER_EN2=0xff, got %v", en2)
	}
	if p := b.Pad(2, gpio.PB0); p.Function != 1 || p.Pull != gpio.PullUp || p.Drive != gpio.Drive2 {
		t.Errorf("Expected sdmmc1_clk configured, got %+v", p)
	}
}

func TestConflictTouchesNothing(t *testing.T) {
	b := simBoard(0x80, 0x91)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.PCIe2x1, feature.PCIe3x1))
	if res.State != bringup.Failed || res.Stage != bringup.StagePhyAllocation {
		t.Fatalf("Expected Failed at phy-allocation, got %v at %q", res.State, res.Stage)
	}
	var ev *feature.ExclusivityViolationError
	if !errors.As(res.Err, &ev) {
		t.Fatalf("Expected ExclusivityViolationError, got %v", res.Err)
	}
	if ev.First != feature.PCIe2x1 || ev.Second != feature.PCIe3x1 {
		t.Errorf("Expected pcie2x1 and pcie3x1, got %v and %v", ev.First, ev.Second)
	}
	var se *bringup.StageError
	if !errors.As(res.Err, &se) || se.Stage != bringup.StagePhyAllocation {
		t.Errorf("Expected StageError for phy-allocation, got %v", res.Err)
	}
	if ops := b.Ops(); len(ops) != 0 {
		t.Errorf("Expected no hardware access, got:\n%s", b.Dump())
	}
}

func TestSataAndPCIe3x1Conflict(t *testing.T) {
	b := simBoard(0x80, 0x91)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.SATA1, feature.PCIe3x1))
	var ev *feature.ExclusivityViolationError
	if !errors.As(res.Err, &ev) || ev.Group != "multiphy1" {
		t.Fatalf("Expected multiphy1 violation, got %v", res.Err)
	}
	if n := len(b.OpsOf(sim.OpPhyMode, sim.OpFunction)); n != 0 {
		t.Errorf("Expected no pin or PHY writes, got %d", n)
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	b := simBoard(0x80, 0x91)
	features := feature.Of(feature.USB3, feature.SATA1, feature.PCIe2x1)

	first := bringup.Run(platform.Board(), hardware(b), features)
	if !first.Done() {
		t.Fatalf("First run failed: %v", first.Err)
	}
	firstOps := b.Ops()
	b.ClearOps()

	second := bringup.Run(platform.Board(), hardware(b), features)
	if !second.Done() {
		t.Fatalf("Second run failed: %v", second.Err)
	}
	if diff := cmp.Diff(firstOps, b.Ops()); diff != "" {
		t.Errorf("Second run issued a different sequence (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Lanes, second.Lanes); diff != "" {
		t.Errorf("Lane assignment changed (-first +second):\n%s", diff)
	}
}

func TestPMICBusError(t *testing.T) {
	b := sim.New()
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.PCIe3x2))
	if res.State != bringup.Failed || res.Stage != bringup.StagePmicVerify {
		t.Fatalf("Expected Failed at pmic-verify, got %v at %q", res.State, res.Stage)
	}
	if res.Reached != bringup.VoltageConfigured {
		t.Errorf("Expected VoltageConfigured reached, got %v", res.Reached)
	}
	var be *i2c.BusError
	if !errors.As(res.Err, &be) || be.Reg != pmic.ChipName {
		t.Errorf("Expected BusError on CHIP_NAME, got %v", res.Err)
	}
	if !errors.Is(res.Err, sim.ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice in chain, got %v", res.Err)
	}
	if n := len(b.OpsOf(sim.OpBusWrite, sim.OpPhyMode, sim.OpRegWrite, sim.OpOutput)); n != 0 {
		t.Errorf("Expected no writes after bus failure, got %d", n)
	}
}

func TestPMICIdentityMismatch(t *testing.T) {
	b := simBoard(0x81, 0x70)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.PCIe3x2))
	var me *pmic.IdentityMismatchError
	if !errors.As(res.Err, &me) {
		t.Fatalf("Expected IdentityMismatchError, got %v", res.Err)
	}
	if me.Got.Chip != 0x817 {
		t.Errorf("Expected chip 0x817 reported, got %#x", me.Got.Chip)
	}
	if n := len(b.OpsOf(sim.OpBusWrite)); n != 0 {
		t.Errorf("Expected no PMIC writes after mismatch, got %d", n)
	}
}

func TestPhyFaultSkipsPeripherals(t *testing.T) {
	b := simBoard(0x80, 0x91)
	b.Faults[sim.OpPhyMode] = errors.New("phy pll lock timeout")
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.USB3))
	if res.Stage != bringup.StagePhyAssign || res.Reached != bringup.ClocksTuned {
		t.Fatalf("Expected failure in phy-assign after ClocksTuned, got %q after %v", res.Stage, res.Reached)
	}
	if n := len(b.OpsOf(sim.OpDirection, sim.OpOutput)); n != 0 {
		t.Errorf("Expected peripherals skipped, got %d output ops", n)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	rec := metric.New()
	b := simBoard(0x80, 0x91)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.USB3, feature.PCIe3x2), bringup.WithMetrics(rec))
	if !res.Done() {
		t.Fatalf("Expected Done, got %v", res.Err)
	}
	// voltage, pmic-verify, pmic-program, pinmux, clocks, phy-assign, peripherals
	if n, err := testutil.GatherAndCount(rec.Registry(), "bringup_stage_total"); err != nil || n != 7 {
		t.Errorf("Expected 7 stage series, got %d (%v)", n, err)
	}
	if n, err := testutil.GatherAndCount(rec.Registry(), "bringup_phy_lane_mode"); err != nil || n != 3 {
		t.Errorf("Expected 3 lane series, got %d (%v)", n, err)
	}
}

func TestPrepareIsPure(t *testing.T) {
	plan, stage, err := bringup.Prepare(platform.Board(), feature.Of(feature.USB3, feature.PCIe3x2))
	if err != nil {
		t.Fatalf("Prepare failed at %q: %v", stage, err)
	}
	if len(plan.Outputs) != 4 {
		t.Errorf("Expected 4 outputs, got %d", len(plan.Outputs))
	}
	if got := plan.Outputs[0].Name; got != "USER_LED2" {
		t.Errorf("Expected USER_LED2 first, got %s", got)
	}
}

func TestClockDrivesSuccessTimestamp(t *testing.T) {
	clk := clock.NewFake()
	clk.Add(90 * time.Minute)
	rec := metric.New()
	b := simBoard(0x80, 0x91)
	res := bringup.Run(platform.Board(), hardware(b), feature.Of(feature.USB3),
		bringup.WithMetrics(rec), bringup.WithClock(clk))
	if !res.Done() {
		t.Fatalf("Expected Done, got %v", res.Err)
	}
	mfs, err := rec.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := -1.0
	for _, mf := range mfs {
		if mf.GetName() == "bringup_last_success_timestamp_seconds" {
			got = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	if want := float64(clk.Now().Unix()); got != want {
		t.Errorf("Expected success timestamp %v, got %v", want, got)
	}
}
