// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"errors"
	"testing"
)

var groups = []Group{
	{Name: "pcie", Flags: []Flag{PCIe2x1, PCIe3x1, PCIe3x2}},
	{Name: "multiphy1", Flags: []Flag{SATA1, PCIe3x1}},
}

func TestParseFlag(t *testing.T) {
	for _, f := range All() {
		got, err := ParseFlag(f.String())
		if err != nil {
			t.Errorf("ParseFlag(%q) failed: %v", f, err)
		}
		if got != f {
			t.Errorf("Expected %v, got %v", f, got)
		}
	}
	if f, err := ParseFlag(" PCIe3x2 "); err != nil || f != PCIe3x2 {
		t.Errorf("Expected pcie3x2, got %v %v", f, err)
	}
	if _, err := ParseFlag("hdmi"); err == nil {
		t.Errorf("Expected unknown feature to fail")
	}
}

func TestSet(t *testing.T) {
	s := Of(PCIe3x2, USB3, USB3)
	if !s.Has(USB3) || !s.Has(PCIe3x2) || s.Has(SATA1) {
		t.Errorf("Unexpected membership in %v", s)
	}
	if got := s.String(); got != "{usb3,pcie3x2}" {
		t.Errorf("Expected {usb3,pcie3x2}, got %s", got)
	}
	if !Of().Empty() {
		t.Errorf("Expected empty set")
	}
}

func TestValidate(t *testing.T) {
	for _, s := range []Set{Of(), Of(PCIe3x2), Of(USB3, SATA1, PCIe2x1), Of(USB3, PCIe3x1)} {
		if err := Validate(s, groups); err != nil {
			t.Errorf("Validate(%v) failed: %v", s, err)
		}
	}

	err := Validate(Of(PCIe2x1, PCIe3x1), groups)
	var ev *ExclusivityViolationError
	if !errors.As(err, &ev) {
		t.Fatalf("Expected ExclusivityViolationError, got %v", err)
	}
	if ev.Group != "pcie" || ev.First != PCIe2x1 || ev.Second != PCIe3x1 {
		t.Errorf("Expected pcie2x1/pcie3x1 in pcie, got %+v", ev)
	}

	err = Validate(Of(SATA1, PCIe3x1), groups)
	if !errors.As(err, &ev) || ev.Group != "multiphy1" {
		t.Errorf("Expected multiphy1 violation, got %v", err)
	}
}

func TestExclusive(t *testing.T) {
	if g, ok := Exclusive(groups, PCIe3x1, SATA1); !ok || g != "multiphy1" {
		t.Errorf("Expected multiphy1, got %q %v", g, ok)
	}
	if _, ok := Exclusive(groups, USB3, SATA1); ok {
		t.Errorf("Expected usb3 and sata1 to be compatible")
	}
}
