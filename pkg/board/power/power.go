// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package power sequences the SoC IO domain voltages. It runs first in
// bring-up, before any pad of a domain is driven.
package power

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
)

type Sequencer struct {
	settings []iodomain.Setting
}

// DuplicateDomainError reports a domain listed twice in one sequence.
type DuplicateDomainError struct {
	Domain iodomain.Domain
}

func (e *DuplicateDomainError) Error() string {
	return fmt.Sprintf("power: domain %v declared twice", e.Domain)
}

// NewSequencer checks settings and returns a sequencer that applies them
// in the given order.
func NewSequencer(settings []iodomain.Setting) (*Sequencer, error) {
	seen := make(map[iodomain.Domain]bool)
	for _, s := range settings {
		if seen[s.Domain] {
			return nil, &DuplicateDomainError{Domain: s.Domain}
		}
		seen[s.Domain] = true
	}
	return &Sequencer{settings: append([]iodomain.Setting(nil), settings...)}, nil
}

func (q *Sequencer) Settings() []iodomain.Setting {
	return append([]iodomain.Setting(nil), q.settings...)
}

// Apply sets each domain in order and stops at the first failure.
func (q *Sequencer) Apply(s iodomain.Setter) error {
	for _, st := range q.settings {
		if err := s.SetDomainVoltage(st.Domain, st.Level); err != nil {
			return fmt.Errorf("power: %v: %w", st, err)
		}
	}
	return nil
}
