// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package phy decides which feature owns each shared multi-protocol PHY
// lane. Allocation is pure; Apply is the only part that touches hardware.
package phy

import (
	"fmt"
	"sort"

	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
)

// Claim says that a feature, when enabled, drives a lane in a mode.
type Claim struct {
	Feature feature.Flag
	Mode    multiphy.Mode
}

// Lane is one shared PHY and the features that may claim it.
type Lane struct {
	Index  int
	Claims []Claim
}

type Assignment struct {
	Lane    int
	Mode    multiphy.Mode
	Feature feature.Flag

	// Owned is false for an idle lane; Feature is meaningless then.
	Owned bool
}

func (a Assignment) String() string {
	if !a.Owned {
		return fmt.Sprintf("lane%d=%v", a.Lane, a.Mode)
	}
	return fmt.Sprintf("lane%d=%v(%v)", a.Lane, a.Mode, a.Feature)
}

type Allocator struct {
	lanes  []Lane
	groups []feature.Group
}

// NewAllocator checks the lane table and returns an allocator over it.
// Lane indices must be unique and a feature may claim a lane only once.
func NewAllocator(lanes []Lane, groups []feature.Group) (*Allocator, error) {
	seen := make(map[int]bool)
	for _, l := range lanes {
		if seen[l.Index] {
			return nil, fmt.Errorf("phy: lane %d declared twice", l.Index)
		}
		seen[l.Index] = true
		claimed := make(map[feature.Flag]bool)
		for _, c := range l.Claims {
			if claimed[c.Feature] {
				return nil, fmt.Errorf("phy: lane %d claimed twice by %v", l.Index, c.Feature)
			}
			if c.Mode == multiphy.Idle {
				return nil, fmt.Errorf("phy: lane %d claim by %v has no mode", l.Index, c.Feature)
			}
			claimed[c.Feature] = true
		}
	}
	sorted := append([]Lane(nil), lanes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	return &Allocator{lanes: sorted, groups: groups}, nil
}

// Allocate returns one assignment per lane in lane order. It fails with
// a *feature.ExclusivityViolationError when the declared groups are
// violated or when two enabled features claim the same lane.
func (a *Allocator) Allocate(s feature.Set) ([]Assignment, error) {
	if err := feature.Validate(s, a.groups); err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, len(a.lanes))
	for _, l := range a.lanes {
		as := Assignment{Lane: l.Index, Mode: multiphy.Idle}
		for _, c := range l.Claims {
			if !s.Has(c.Feature) {
				continue
			}
			if as.Owned {
				g, _ := feature.Exclusive(a.groups, as.Feature, c.Feature)
				return nil, &feature.ExclusivityViolationError{Group: g, First: as.Feature, Second: c.Feature}
			}
			as.Mode = c.Mode
			as.Feature = c.Feature
			as.Owned = true
		}
		out = append(out, as)
	}
	return out, nil
}

// Apply sets the mode of every owned lane. Idle lanes are left untouched.
func Apply(s multiphy.Setter, assignments []Assignment) error {
	for _, as := range assignments {
		if !as.Owned {
			continue
		}
		if err := s.SetPhyMode(as.Lane, as.Mode); err != nil {
			return fmt.Errorf("phy: %v: %w", as, err)
		}
	}
	return nil
}
