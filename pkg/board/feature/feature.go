// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature holds the board feature flags and the exclusion groups
// that keep mutually exclusive features from being enabled together.
package feature

import (
	"fmt"
	"sort"
	"strings"
)

type Flag int

const (
	USB3 Flag = iota
	SATA1
	PCIe2x1
	PCIe3x1
	PCIe3x2
	SDMMC1

	numFlags
)

var flagNames = [...]string{
	USB3:    "usb3",
	SATA1:   "sata1",
	PCIe2x1: "pcie2x1",
	PCIe3x1: "pcie3x1",
	PCIe3x2: "pcie3x2",
	SDMMC1:  "sdmmc1",
}

func (f Flag) String() string {
	if f < 0 || f >= numFlags {
		return fmt.Sprintf("Flag(%d)", int(f))
	}
	return flagNames[f]
}

// All returns every known flag in declaration order.
func All() []Flag {
	out := make([]Flag, 0, numFlags)
	for f := Flag(0); f < numFlags; f++ {
		out = append(out, f)
	}
	return out
}

func ParseFlag(s string) (Flag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range flagNames {
		if n == s {
			return Flag(f), nil
		}
	}
	return 0, fmt.Errorf("feature: unknown feature %q", s)
}

// Set is an immutable set of enabled flags.
type Set struct {
	bits uint32
}

func Of(flags ...Flag) Set {
	var s Set
	for _, f := range flags {
		s.bits |= 1 << uint(f)
	}
	return s
}

func (s Set) Has(f Flag) bool {
	return f >= 0 && f < numFlags && s.bits&(1<<uint(f)) != 0
}

func (s Set) Empty() bool {
	return s.bits == 0
}

// Flags lists the enabled flags in declaration order.
func (s Set) Flags() []Flag {
	var out []Flag
	for f := Flag(0); f < numFlags; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, numFlags)
	for _, f := range s.Flags() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Group is a named set of flags of which at most one may be enabled.
type Group struct {
	Name  string
	Flags []Flag
}

func (g Group) Contains(f Flag) bool {
	for _, x := range g.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// ExclusivityViolationError reports two enabled features that cannot
// coexist.
type ExclusivityViolationError struct {
	Group  string
	First  Flag
	Second Flag
}

func (e *ExclusivityViolationError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("feature: %v and %v cannot both be enabled", e.First, e.Second)
	}
	return fmt.Sprintf("feature: %v and %v cannot both be enabled (group %s)", e.First, e.Second, e.Group)
}

// Validate checks every group against s and returns the first violation.
// Groups are checked in the given order, flags in declaration order.
func Validate(s Set, groups []Group) error {
	for _, g := range groups {
		var seen []Flag
		for _, f := range g.Flags {
			if s.Has(f) {
				seen = append(seen, f)
			}
		}
		if len(seen) > 1 {
			sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
			return &ExclusivityViolationError{Group: g.Name, First: seen[0], Second: seen[1]}
		}
	}
	return nil
}

// Exclusive reports whether a and b share a group, and the first such
// group's name.
func Exclusive(groups []Group, a, b Flag) (string, bool) {
	for _, g := range groups {
		if g.Contains(a) && g.Contains(b) {
			return g.Name, true
		}
	}
	return "", false
}
