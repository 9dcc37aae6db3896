// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk356x

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/gpio"
)

const (
	// GPIO controller registers, one per half bank
	GPIO_SWPORT_DR_L  = 0x00
	GPIO_SWPORT_DR_H  = 0x04
	GPIO_SWPORT_DDR_L = 0x08
	GPIO_SWPORT_DDR_H = 0x0c
)

// Bank 0 lives in the PMU GRF, banks 1-4 in the SYS GRF.
func grfReg(bank, pin int, pmuOff, sysOff, bankStride uint32, pinsPerReg int) uint32 {
	idx := uint32(pin/pinsPerReg) * 4
	if bank == 0 {
		return PMU_GRF + pmuOff + idx
	}
	return SYS_GRF + sysOff + uint32(bank-1)*bankStride + idx
}

// Iomux: 4 pins per register, 3-bit function field per pin.
func (s *Soc) SetFunction(bank, pin int, function int) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	if function < 0 || function > 7 {
		return fmt.Errorf("rk356x: invalid function %d for %v", function, gpio.PinID{Bank: bank, Pin: pin})
	}
	shift := uint(pin%4) * 4
	return s.masked(grfReg(bank, pin, 0x00, 0x00, 0x20, 4), 0x7<<shift, uint16(function)<<shift)
}

// Pull: 8 pins per register, 2-bit field.
func (s *Soc) SetPull(bank, pin int, pull gpio.Pull) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	var v uint16
	switch pull {
	case gpio.PullNone:
		v = 0
	case gpio.PullUp:
		v = 1
	case gpio.PullDown:
		v = 2
	default:
		return fmt.Errorf("rk356x: invalid pull %v", pull)
	}
	shift := uint(pin%8) * 2
	return s.masked(grfReg(bank, pin, 0x20, 0x80, 0x10, 8), 0x3<<shift, v<<shift)
}

// Input buffer: 8 pins per register, 2-bit field.
func (s *Soc) SetInputMode(bank, pin int, mode gpio.InputMode) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	var v uint16
	switch mode {
	case gpio.InputDefault:
		return nil
	case gpio.InputNormal:
		v = 0
	case gpio.InputSchmitt:
		v = 1
	default:
		return fmt.Errorf("rk356x: invalid input mode %v", mode)
	}
	shift := uint(pin%8) * 2
	return s.masked(grfReg(bank, pin, 0x30, 0xc0, 0x10, 8), 0x3<<shift, v<<shift)
}

// Drive strength: 2 pins per register, 6-bit thermometer coded field.
func (s *Soc) SetDriveStrength(bank, pin int, drive gpio.Drive) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	if drive == gpio.DriveDefault {
		return nil
	}
	level := int(drive - gpio.Drive0)
	if level < 0 || level > 5 {
		return fmt.Errorf("rk356x: invalid drive strength %v", drive)
	}
	shift := uint(pin%2) * 8
	v := uint16(1<<(level+1)) - 1
	return s.masked(grfReg(bank, pin, 0x70, 0x200, 0x40, 2), 0x3f<<shift, v<<shift)
}

func gpioReg(bank, pin int, lo, hi uint32) (uint32, uint) {
	if pin < 16 {
		return gpioBase[bank] + lo, uint(pin)
	}
	return gpioBase[bank] + hi, uint(pin - 16)
}

func (s *Soc) SetDirection(bank, pin int, dir gpio.Direction) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	addr, bit := gpioReg(bank, pin, GPIO_SWPORT_DDR_L, GPIO_SWPORT_DDR_H)
	var v uint16
	if dir == gpio.Output {
		v = 1 << bit
	}
	return s.masked(addr, 1<<bit, v)
}

func (s *Soc) WriteOutput(bank, pin int, level bool) error {
	if err := checkPin(bank, pin); err != nil {
		return err
	}
	addr, bit := gpioReg(bank, pin, GPIO_SWPORT_DR_L, GPIO_SWPORT_DR_H)
	var v uint16
	if level {
		v = 1 << bit
	}
	return s.masked(addr, 1<<bit, v)
}

var _ gpio.Driver = (*Soc)(nil)
