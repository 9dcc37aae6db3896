// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/u-root/u-bringup/pkg/board/pmic"
	"github.com/u-root/u-bringup/pkg/hardware/i2c"
)

var (
	bus  = flag.Int("bus", 0, "Which I2C bus the PMIC sits on")
	addr = flag.Uint("addr", pmic.DefaultAddr, "PMIC address")

	regs = []struct {
		name string
		reg  uint8
	}{
		{"POWER_EN0", pmic.PowerEn0},
		{"POWER_EN1", pmic.PowerEn1},
		{"POWER_EN2", pmic.PowerEn2},
		{"POWER_EN3", pmic.PowerEn3},
		{"LDO1_ON_VSEL", pmic.LDO1OnVsel},
		{"LDO2_ON_VSEL", pmic.LDO2OnVsel},
		{"LDO3_ON_VSEL", pmic.LDO3OnVsel},
		{"LDO4_ON_VSEL", pmic.LDO4OnVsel},
		{"LDO5_ON_VSEL", pmic.LDO5OnVsel},
		{"LDO6_ON_VSEL", pmic.LDO6OnVsel},
		{"LDO7_ON_VSEL", pmic.LDO7OnVsel},
		{"LDO8_ON_VSEL", pmic.LDO8OnVsel},
		{"LDO9_ON_VSEL", pmic.LDO9OnVsel},
	}
)

// dump prints the identity and the regulator registers of the PMIC at
// dev. Nothing is written to the chip.
func dump(w io.Writer, b i2c.Bus, dev uint8) error {
	name, err := b.ReadReg(dev, pmic.ChipName)
	if err != nil {
		return err
	}
	ver, err := b.ReadReg(dev, pmic.ChipVer)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "PMIC at %#02x: %v\n", dev, pmic.Decode(name, ver))
	for _, r := range regs {
		v, err := b.ReadReg(dev, r.reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-13s %02x: %02x", r.name, r.reg, v)
		if r.reg >= pmic.LDO1OnVsel {
			fmt.Fprintf(w, "  %dmV", 600+25*int(v&0x7f))
		}
		fmt.Fprintf(w, "\n")
	}
	return nil
}

func main() {
	flag.Parse()
	b, err := i2c.OpenSMBus(*bus, uint8(*addr))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer b.Close()
	if err := dump(os.Stdout, b, uint8(*addr)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
