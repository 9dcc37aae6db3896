// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Library for the RK356x pin, IO domain and multi-PHY primitives
//
// Every register touched here is hi-word masked, so each primitive is a
// single 32-bit store that updates only its own field. Nothing is read
// back and nothing outside the addressed field changes.
package rk356x

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/mmio"
)

const (
	PMU_GRF  uint32 = 0xFDC20000
	CPU_GRF  uint32 = 0xFDC30000
	SYS_GRF  uint32 = 0xFDC60000
	PMU_BASE uint32 = 0xFDD90000

	PIPE_PHY_GRF0 uint32 = 0xFDC70000
	PIPE_PHY_GRF1 uint32 = 0xFDC80000
	PIPE_PHY_GRF2 uint32 = 0xFDC90000

	GPIO0_BASE uint32 = 0xFDD60000
	GPIO1_BASE uint32 = 0xFE740000
	GPIO2_BASE uint32 = 0xFE750000
	GPIO3_BASE uint32 = 0xFE760000
	GPIO4_BASE uint32 = 0xFE770000

	NumBanks = 5
	NumPhys  = 3
)

// Clock and PLL control registers used by board fixups.
const (
	PMU_NOC_AUTO_CON0 = PMU_BASE + 0x0070
	PMU_NOC_AUTO_CON1 = PMU_BASE + 0x0074

	GRF_CPU_COREPVTPLL_CON0           = CPU_GRF + 0x0010
	CORE_PVTPLL_RING_LENGTH_SEL_SHIFT = 3
	CORE_PVTPLL_RING_LENGTH_SEL_MASK  = uint16(0x1f << CORE_PVTPLL_RING_LENGTH_SEL_SHIFT)
	CORE_PVTPLL_OSC_EN                = uint16(1 << 1)
	CORE_PVTPLL_START                 = uint16(1 << 0)

	GRF_IOFUNC_SEL0 = SYS_GRF + 0x0300
	GRF_IOFUNC_SEL5 = SYS_GRF + 0x0314

	PCIE20X1_IOMUX_SEL_MASK = uint16(3 << 2)
	PCIE20X1_IOMUX_SEL_M1   = uint16(1 << 2)
	PCIE20X1_IOMUX_SEL_M2   = uint16(1 << 3)
	PCIE30X1_IOMUX_SEL_MASK = uint16(3 << 4)
	PCIE30X1_IOMUX_SEL_M1   = uint16(1 << 4)
	PCIE30X1_IOMUX_SEL_M2   = uint16(1 << 5)
	PCIE30X2_IOMUX_SEL_MASK = uint16(3 << 6)
	PCIE30X2_IOMUX_SEL_M1   = uint16(1 << 6)
	PCIE30X2_IOMUX_SEL_M2   = uint16(1 << 7)
)

var gpioBase = [NumBanks]uint32{GPIO0_BASE, GPIO1_BASE, GPIO2_BASE, GPIO3_BASE, GPIO4_BASE}

// Soc drives the RK356x primitives through a raw register writer.
type Soc struct {
	mem mmio.Writer
}

func New(mem mmio.Writer) *Soc {
	return &Soc{mem}
}

func (s *Soc) masked(addr uint32, mask, value uint16) error {
	return s.mem.Write32(addr, mmio.HiWord(mask, value))
}

func checkPin(bank, pin int) error {
	if bank < 0 || bank >= NumBanks || pin < 0 || pin >= 32 {
		return fmt.Errorf("rk356x: no such pin gpio%d/%d", bank, pin)
	}
	return nil
}
