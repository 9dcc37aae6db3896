// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpio describes the pin driver that bring-up consumes.
//
// A pin is addressed by bank and index within the bank. Rockchip style
// boards name pins by port letter, so PA0..PD7 map to 0..31.
package gpio

import "fmt"

type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return fmt.Sprintf("Pull(%d)", int(p))
}

// Drive is a drive strength level. DriveDefault leaves the pad at its
// reset strength.
type Drive int

const (
	DriveDefault Drive = iota
	Drive0
	Drive1
	Drive2
	Drive3
	Drive4
	Drive5
)

func (d Drive) String() string {
	if d == DriveDefault {
		return "default"
	}
	return fmt.Sprintf("level%d", int(d-Drive0))
}

type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// InputMode selects the input buffer type. InputDefault leaves it alone.
type InputMode int

const (
	InputDefault InputMode = iota
	InputNormal
	InputSchmitt
)

func (m InputMode) String() string {
	switch m {
	case InputDefault:
		return "default"
	case InputNormal:
		return "normal"
	case InputSchmitt:
		return "schmitt"
	}
	return fmt.Sprintf("InputMode(%d)", int(m))
}

const (
	PA0 = iota
	PA1
	PA2
	PA3
	PA4
	PA5
	PA6
	PA7
	PB0
	PB1
	PB2
	PB3
	PB4
	PB5
	PB6
	PB7
	PC0
	PC1
	PC2
	PC3
	PC4
	PC5
	PC6
	PC7
	PD0
	PD1
	PD2
	PD3
	PD4
	PD5
	PD6
	PD7

	PinsPerBank
)

// PinID identifies one pad on the SoC.
type PinID struct {
	Bank int
	Pin  int
}

func (id PinID) String() string {
	if id.Pin < 0 || id.Pin >= PinsPerBank {
		return fmt.Sprintf("gpio%d/%d", id.Bank, id.Pin)
	}
	return fmt.Sprintf("gpio%d/P%c%d", id.Bank, 'A'+id.Pin/8, id.Pin%8)
}

// Driver is the pin driver contract. Every method is a single operation
// on one pad.
type Driver interface {
	SetPull(bank, pin int, pull Pull) error
	SetFunction(bank, pin int, function int) error
	SetDirection(bank, pin int, dir Direction) error
	SetDriveStrength(bank, pin int, drive Drive) error
	SetInputMode(bank, pin int, mode InputMode) error
	WriteOutput(bank, pin int, level bool) error
}
