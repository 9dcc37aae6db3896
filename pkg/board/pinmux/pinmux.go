// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pinmux applies ordered pin tables through a gpio.Driver.
package pinmux

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/hardware/gpio"
)

// Pin describes the configuration of one pad. Name is informational.
type Pin struct {
	Name     string
	Bank     int
	Pin      int
	Function int
	Pull     gpio.Pull
	Drive    gpio.Drive
	Input    gpio.InputMode
}

func (p Pin) ID() gpio.PinID {
	return gpio.PinID{Bank: p.Bank, Pin: p.Pin}
}

func (p Pin) String() string {
	if p.Name == "" {
		return p.ID().String()
	}
	return fmt.Sprintf("%s (%v)", p.Name, p.ID())
}

// Apply configures pins in list order. Each pin gets its pull, then its
// function, then its drive strength and finally its input buffer mode when
// one is given. The first failure stops the walk.
func Apply(d gpio.Driver, pins []Pin) error {
	for _, p := range pins {
		if err := d.SetPull(p.Bank, p.Pin, p.Pull); err != nil {
			return fmt.Errorf("pinmux: %v pull: %w", p, err)
		}
		if err := d.SetFunction(p.Bank, p.Pin, p.Function); err != nil {
			return fmt.Errorf("pinmux: %v function: %w", p, err)
		}
		if err := d.SetDriveStrength(p.Bank, p.Pin, p.Drive); err != nil {
			return fmt.Errorf("pinmux: %v drive: %w", p, err)
		}
		if p.Input != gpio.InputDefault {
			if err := d.SetInputMode(p.Bank, p.Pin, p.Input); err != nil {
				return fmt.Errorf("pinmux: %v input: %w", p, err)
			}
		}
	}
	return nil
}

// Output is a GPIO driven to a fixed level, such as a regulator enable or
// an LED.
type Output struct {
	Name  string
	Bank  int
	Pin   int
	Pull  gpio.Pull
	Level bool
}

func (o Output) ID() gpio.PinID {
	return gpio.PinID{Bank: o.Bank, Pin: o.Pin}
}

// ApplyOutputs switches each pad to GPIO, sets its pull, makes it an
// output and drives it.
func ApplyOutputs(d gpio.Driver, outs []Output) error {
	for _, o := range outs {
		if err := d.SetFunction(o.Bank, o.Pin, 0); err != nil {
			return fmt.Errorf("pinmux: %s (%v) function: %w", o.Name, o.ID(), err)
		}
		if err := d.SetPull(o.Bank, o.Pin, o.Pull); err != nil {
			return fmt.Errorf("pinmux: %s (%v) pull: %w", o.Name, o.ID(), err)
		}
		if err := d.SetDirection(o.Bank, o.Pin, gpio.Output); err != nil {
			return fmt.Errorf("pinmux: %s (%v) direction: %w", o.Name, o.ID(), err)
		}
		if err := d.WriteOutput(o.Bank, o.Pin, o.Level); err != nil {
			return fmt.Errorf("pinmux: %s (%v) level: %w", o.Name, o.ID(), err)
		}
	}
	return nil
}

// Table maps a feature to the pins it needs.
type Table map[feature.Flag][]Pin

// OverlapError reports a pad claimed by two features that can be enabled
// together.
type OverlapError struct {
	Pin    gpio.PinID
	First  feature.Flag
	Second feature.Flag
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("pinmux: %v claimed by both %v and %v", e.Pin, e.First, e.Second)
}

// Validate rejects a pad that appears under two features unless the two
// share an exclusion group. A pad listed twice under the same feature is
// rejected as well.
func (t Table) Validate(groups []feature.Group) error {
	owner := make(map[gpio.PinID][]feature.Flag)
	for _, f := range feature.All() {
		seen := make(map[gpio.PinID]bool)
		for _, p := range t[f] {
			id := p.ID()
			if seen[id] {
				return &OverlapError{Pin: id, First: f, Second: f}
			}
			seen[id] = true
			for _, o := range owner[id] {
				if _, ok := feature.Exclusive(groups, o, f); !ok {
					return &OverlapError{Pin: id, First: o, Second: f}
				}
			}
			owner[id] = append(owner[id], f)
		}
	}
	return nil
}

// Enabled concatenates the pins of every enabled feature in flag
// declaration order.
func (t Table) Enabled(s feature.Set) []Pin {
	var out []Pin
	for _, f := range s.Flags() {
		out = append(out, t[f]...)
	}
	return out
}
