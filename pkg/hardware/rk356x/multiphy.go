// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk356x

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
)

const (
	PIPE_PHY_GRF_CON0   = 0x0000
	PIPE_PHY_MODE_MASK  = uint16(0x7)
	PIPE_PHY_MODE_PCIE  = uint16(0x1)
	PIPE_PHY_MODE_USB3  = uint16(0x2)
	PIPE_PHY_MODE_SATA  = uint16(0x4)
	PIPE_PHY_MODE_SHIFT = 0
)

var pipePhyGrf = [NumPhys]uint32{PIPE_PHY_GRF0, PIPE_PHY_GRF1, PIPE_PHY_GRF2}

// SetPhyMode routes one combo PHY to a protocol controller.
func (s *Soc) SetPhyMode(index int, mode multiphy.Mode) error {
	if index < 0 || index >= NumPhys {
		return fmt.Errorf("rk356x: no such multi-PHY %d", index)
	}
	var v uint16
	switch mode {
	case multiphy.Idle:
		v = 0
	case multiphy.PCIe:
		v = PIPE_PHY_MODE_PCIE
	case multiphy.USB3:
		v = PIPE_PHY_MODE_USB3
	case multiphy.SATA:
		v = PIPE_PHY_MODE_SATA
	default:
		return fmt.Errorf("rk356x: invalid mode %v for multi-PHY %d", mode, index)
	}
	return s.masked(pipePhyGrf[index]+PIPE_PHY_GRF_CON0, PIPE_PHY_MODE_MASK<<PIPE_PHY_MODE_SHIFT, v<<PIPE_PHY_MODE_SHIFT)
}

var _ multiphy.Setter = (*Soc)(nil)
