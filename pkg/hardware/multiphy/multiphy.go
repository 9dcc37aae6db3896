// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package multiphy describes the shared multi-protocol PHYs and the
// primitive that selects their protocol.
package multiphy

import "fmt"

type Mode int

const (
	Idle Mode = iota
	USB3
	SATA
	PCIe
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case USB3:
		return "usb3"
	case SATA:
		return "sata"
	case PCIe:
		return "pcie"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Setter selects the protocol of one PHY. Selecting two different modes
// on the same PHY within one boot is not recoverable.
type Setter interface {
	SetPhyMode(index int, mode Mode) error
}
