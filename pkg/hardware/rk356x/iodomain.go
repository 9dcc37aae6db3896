// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk356x

import (
	"fmt"

	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
)

const (
	PMU_GRF_IO_VSEL0 = PMU_GRF + 0x0140 // VCCIOn 1.8V select, bit n
	PMU_GRF_IO_VSEL1 = PMU_GRF + 0x0144 // VCCIOn 3.3V select, bit n
	PMU_GRF_IO_VSEL2 = PMU_GRF + 0x0148 // PMUIO1/2 select
)

// SetDomainVoltage programs the IO cell voltage select of one domain. The
// 1.8V and 3.3V selects are written as a pair, 1.8V first.
func (s *Soc) SetDomainVoltage(d iodomain.Domain, l iodomain.Level) error {
	if l != iodomain.V1V8 && l != iodomain.V3V3 {
		return fmt.Errorf("rk356x: invalid level %v for %v", l, d)
	}
	v18 := l == iodomain.V1V8
	switch d {
	case iodomain.PMUIO1, iodomain.PMUIO2:
		n := uint(d - iodomain.PMUIO1)
		mask := uint16(1<<n | 1<<(n+4))
		v := uint16(1 << (n + 4))
		if v18 {
			v = 1 << n
		}
		return s.masked(PMU_GRF_IO_VSEL2, mask, v)
	case iodomain.VCCIO1, iodomain.VCCIO2, iodomain.VCCIO3, iodomain.VCCIO4,
		iodomain.VCCIO5, iodomain.VCCIO6, iodomain.VCCIO7:
		n := uint(d-iodomain.VCCIO1) + 1
		var sel18, sel33 uint16
		if v18 {
			sel18 = 1 << n
		} else {
			sel33 = 1 << n
		}
		if err := s.masked(PMU_GRF_IO_VSEL0, 1<<n, sel18); err != nil {
			return err
		}
		return s.masked(PMU_GRF_IO_VSEL1, 1<<n, sel33)
	}
	return fmt.Errorf("rk356x: unknown IO domain %v", d)
}

var _ iodomain.Setter = (*Soc)(nil)
