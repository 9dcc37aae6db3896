// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iodomain describes the SoC IO voltage domains and the setter
// primitive that switches them.
package iodomain

import "fmt"

type Domain int

const (
	PMUIO1 Domain = iota
	PMUIO2
	VCCIO1
	VCCIO2
	VCCIO3
	VCCIO4
	VCCIO5
	VCCIO6
	VCCIO7
)

var domainNames = [...]string{
	PMUIO1: "PMUIO1",
	PMUIO2: "PMUIO2",
	VCCIO1: "VCCIO1",
	VCCIO2: "VCCIO2",
	VCCIO3: "VCCIO3",
	VCCIO4: "VCCIO4",
	VCCIO5: "VCCIO5",
	VCCIO6: "VCCIO6",
	VCCIO7: "VCCIO7",
}

func (d Domain) String() string {
	if d < 0 || int(d) >= len(domainNames) {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domainNames[d]
}

type Level int

const (
	V1V8 Level = iota
	V3V3
)

func (l Level) String() string {
	switch l {
	case V1V8:
		return "1.8V"
	case V3V3:
		return "3.3V"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts "1v8" or "3v3" in any case.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "1v8", "1V8", "1.8V", "1.8v":
		return V1V8, nil
	case "3v3", "3V3", "3.3V", "3.3v":
		return V3V3, nil
	}
	return 0, fmt.Errorf("iodomain: unknown voltage level %q", s)
}

// Setting is one (domain, level) pair applied during bring-up.
type Setting struct {
	Domain Domain
	Level  Level
}

func (s Setting) String() string {
	return fmt.Sprintf("%v=%v", s.Domain, s.Level)
}

// Setter switches the IO cells of one domain to a voltage level.
type Setter interface {
	SetDomainVoltage(d Domain, l Level) error
}
