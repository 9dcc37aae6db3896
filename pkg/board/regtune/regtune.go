// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regtune applies clock and PLL fixups as single masked writes.
package regtune

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/mmio"
)

// Setting is one masked write. Name is informational.
type Setting struct {
	Name  string
	Addr  uint32
	Mask  uint16
	Value uint16
}

func (s Setting) String() string {
	return fmt.Sprintf("%s@%#08x mask %#04x value %#04x", s.Name, s.Addr, s.Mask, s.Value)
}

type Tuner struct {
	w mmio.Writer
}

func New(w mmio.Writer) *Tuner {
	return &Tuner{w: w}
}

// MaskedWrite updates the bits of addr selected by mask with one store of
// mask<<16 | value&mask. The register is never read.
func (t *Tuner) MaskedWrite(addr uint32, mask, value uint16) error {
	if err := t.w.Write32(addr, mmio.HiWord(mask, value)); err != nil {
		return fmt.Errorf("regtune: write %#08x: %w", addr, err)
	}
	return nil
}

// Apply issues settings in order and stops at the first failure.
func (t *Tuner) Apply(settings []Setting) error {
	for _, s := range settings {
		if err := t.MaskedWrite(s.Addr, s.Mask, s.Value); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}
