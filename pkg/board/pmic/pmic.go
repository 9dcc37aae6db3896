// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pmic drives an RK8xx power management IC over I2C: identity
// check first, then two-phase regulator programming.
package pmic

import (
	"errors"
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/i2c"
	"github.com/u-root/u-bringup/pkg/logger"
)

var log = logger.LogContainer.GetSimpleLogger()

// Default bus address of the RK809.
const DefaultAddr = 0x20

const (
	ChipName = 0xed
	ChipVer  = 0xee

	PowerEn0 = 0xb1
	PowerEn1 = 0xb2
	PowerEn2 = 0xb3
	PowerEn3 = 0xb4

	LDO1OnVsel = 0xcc
	LDO2OnVsel = 0xce
	LDO3OnVsel = 0xd0
	LDO4OnVsel = 0xd2
	LDO5OnVsel = 0xd4
	LDO6OnVsel = 0xd6
	LDO7OnVsel = 0xd8
	LDO8OnVsel = 0xda
	LDO9OnVsel = 0xdc
)

const RK809 = 0x809

var ErrNotVerified = errors.New("pmic: write before identity verification")

// DeviceID is the decoded identity of the chip.
type DeviceID struct {
	Chip    uint16
	Version uint8
}

func (d DeviceID) String() string {
	return fmt.Sprintf("RK%03X ver 0x%X", d.Chip, d.Version)
}

// Decode turns the CHIP_NAME and CHIP_VER bytes into a DeviceID. The chip
// code spans CHIP_NAME and the high nibble of CHIP_VER.
func Decode(name, ver uint8) DeviceID {
	return DeviceID{
		Chip:    uint16(name)<<4 | uint16(ver>>4)&0xf,
		Version: ver & 0xf,
	}
}

type IdentityMismatchError struct {
	Expected uint16
	Got      DeviceID
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("pmic: expected RK%03X, found %v", e.Expected, e.Got)
}

// Setting is one register write.
type Setting struct {
	Reg   uint8
	Value uint8
}

// Rail names a regulator output.
type Rail string

// RegisterMap is the regulator programming for a board. Select writes
// (output voltages) are always issued before Enable writes.
type RegisterMap struct {
	Select []Setting
	Enable []Setting

	// Rails deliberately left at their reset value.
	Unprogrammed []Rail
}

// EnableBits encodes a POWER_EN value. The upper nibble is a write enable
// for the channel bits in the lower nibble.
func EnableBits(mask, bits uint8) uint8 {
	return (mask&0xf)<<4 | bits&mask&0xf
}

// LDOCode returns the LDO voltage select code for mV, 0.6V to 3.4V in
// 25mV steps.
func LDOCode(mV int) (uint8, error) {
	if mV < 600 || mV > 3400 || (mV-600)%25 != 0 {
		return 0, fmt.Errorf("pmic: %dmV not representable", mV)
	}
	return uint8((mV - 600) / 25), nil
}

// MustLDOCode is LDOCode for board tables.
func MustLDOCode(mV int) uint8 {
	c, err := LDOCode(mV)
	if err != nil {
		panic(err)
	}
	return c
}

type Controller struct {
	bus      i2c.Bus
	addr     uint8
	expected uint16
	id       *DeviceID
}

// New returns a controller for the chip at addr that expects the given
// chip code.
func New(bus i2c.Bus, addr uint8, expected uint16) *Controller {
	return &Controller{bus: bus, addr: addr, expected: expected}
}

func (c *Controller) ReadRegister(reg uint8) (uint8, error) {
	return c.bus.ReadReg(c.addr, reg)
}

// WriteRegister writes one register. It fails with ErrNotVerified until
// VerifyIdentity has succeeded.
func (c *Controller) WriteRegister(reg, v uint8) error {
	if c.id == nil {
		return ErrNotVerified
	}
	return c.bus.WriteReg(c.addr, reg, v)
}

// VerifyIdentity reads the chip identity and compares it against the
// expected chip code.
func (c *Controller) VerifyIdentity() (DeviceID, error) {
	name, err := c.ReadRegister(ChipName)
	if err != nil {
		return DeviceID{}, err
	}
	ver, err := c.ReadRegister(ChipVer)
	if err != nil {
		return DeviceID{}, err
	}
	id := Decode(name, ver)
	if id.Chip != c.expected {
		return id, &IdentityMismatchError{Expected: c.expected, Got: id}
	}
	log.Infof("PMIC: Detected %v", id)
	c.id = &id
	return id, nil
}

// Identity returns the verified identity, if any.
func (c *Controller) Identity() (DeviceID, bool) {
	if c.id == nil {
		return DeviceID{}, false
	}
	return *c.id, true
}

// ProgramRegulators issues every Select write and then every Enable write.
func (c *Controller) ProgramRegulators(m RegisterMap) error {
	for _, s := range m.Select {
		if err := c.WriteRegister(s.Reg, s.Value); err != nil {
			return fmt.Errorf("pmic: select %#02x: %w", s.Reg, err)
		}
	}
	for _, s := range m.Enable {
		if err := c.WriteRegister(s.Reg, s.Value); err != nil {
			return fmt.Errorf("pmic: enable %#02x: %w", s.Reg, err)
		}
	}
	for _, r := range m.Unprogrammed {
		log.Warnf("PMIC: rail %s left at reset default", r)
	}
	return nil
}
