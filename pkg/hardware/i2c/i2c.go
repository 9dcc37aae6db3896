// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package i2c is the register bus transport used to talk to devices such
// as the PMIC. Every failure surfaced by a Bus is a *BusError.
package i2c

import (
	"errors"
	"fmt"
)

// Bus reads and writes single byte registers of devices on one bus.
type Bus interface {
	ReadReg(dev, reg uint8) (uint8, error)
	WriteReg(dev, reg, v uint8) error
}

// BusError is a transport level failure. It is never retried: at bring-up
// time an unresponsive bus means the device is absent or miswired.
type BusError struct {
	Bus string
	Op  string
	Dev uint8
	Reg uint8
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("i2c: %s on %s dev %#02x reg %#02x: %v", e.Op, e.Bus, e.Dev, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Wrap turns err into a *BusError unless it already is one.
func Wrap(bus, op string, dev, reg uint8, err error) error {
	if err == nil {
		return nil
	}
	var be *BusError
	if errors.As(err, &be) {
		return err
	}
	return &BusError{Bus: bus, Op: op, Dev: dev, Reg: reg, Err: err}
}
