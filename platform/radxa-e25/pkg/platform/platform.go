// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform describes the Radxa E25 carrier board with its RK3568
// compute module.
package platform

import (
	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/board/phy"
	"github.com/u-root/u-bringup/pkg/board/pinmux"
	"github.com/u-root/u-bringup/pkg/board/pmic"
	"github.com/u-root/u-bringup/pkg/board/regtune"
	"github.com/u-root/u-bringup/pkg/bringup"
	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
	"github.com/u-root/u-bringup/pkg/hardware/rk356x"
)

const Name = "radxa-e25"

var domains = []iodomain.Setting{
	{Domain: iodomain.PMUIO2, Level: iodomain.V3V3},
	{Domain: iodomain.VCCIO1, Level: iodomain.V3V3},
	{Domain: iodomain.VCCIO4, Level: iodomain.V1V8},
	{Domain: iodomain.VCCIO5, Level: iodomain.V3V3},
	{Domain: iodomain.VCCIO6, Level: iodomain.V1V8},
	{Domain: iodomain.VCCIO7, Level: iodomain.V3V3},
}

var pmicBusPins = []pinmux.Pin{
	{Name: "i2c0_scl", Bank: 0, Pin: gpio.PB1, Function: 1, Pull: gpio.PullNone, Input: gpio.InputSchmitt},
	{Name: "i2c0_sda", Bank: 0, Pin: gpio.PB2, Function: 1, Pull: gpio.PullNone, Input: gpio.InputSchmitt},
}

var pins = pinmux.Table{
	feature.SDMMC1: {
		{Name: "sdmmc1_d0", Bank: 2, Pin: gpio.PA3, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "sdmmc1_d1", Bank: 2, Pin: gpio.PA4, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "sdmmc1_d2", Bank: 2, Pin: gpio.PA5, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "sdmmc1_d3", Bank: 2, Pin: gpio.PA6, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "sdmmc1_cmd", Bank: 2, Pin: gpio.PA7, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "sdmmc1_clk", Bank: 2, Pin: gpio.PB0, Function: 1, Pull: gpio.PullUp, Drive: gpio.Drive2},
		{Name: "wifi_reg_on", Bank: 2, Pin: gpio.PB7, Function: 0, Pull: gpio.PullNone},
	},
	feature.PCIe2x1: {
		{Name: "pcie20_clkreqnm2", Bank: 1, Pin: gpio.PB0, Function: 4, Pull: gpio.PullNone},
	},
	// PCIe 3.0 x1 has no sideband pins routed on this board.
	feature.PCIe3x1: nil,
	feature.PCIe3x2: {
		{Name: "pcie30x2_clkreqnm1", Bank: 2, Pin: gpio.PD4, Function: 4, Pull: gpio.PullNone},
		{Name: "pcie30x2_perstnm1", Bank: 2, Pin: gpio.PD6, Function: 4, Pull: gpio.PullNone},
		{Name: "pcie30x2_wakenm1", Bank: 2, Pin: gpio.PD5, Function: 4, Pull: gpio.PullNone},
	},
}

var routes = map[feature.Flag][]regtune.Setting{
	feature.PCIe2x1: {{
		Name: "pcie20x1 iomux m2", Addr: rk356x.GRF_IOFUNC_SEL5,
		Mask: rk356x.PCIE20X1_IOMUX_SEL_MASK, Value: rk356x.PCIE20X1_IOMUX_SEL_M2,
	}},
	feature.PCIe3x2: {{
		Name: "pcie30x2 iomux m1", Addr: rk356x.GRF_IOFUNC_SEL5,
		Mask: rk356x.PCIE30X2_IOMUX_SEL_MASK, Value: rk356x.PCIE30X2_IOMUX_SEL_M1,
	}},
}

var clocks = []regtune.Setting{
	// Automatic NoC clock gating.
	{Name: "noc auto con0", Addr: rk356x.PMU_NOC_AUTO_CON0, Mask: 0xffff, Value: 0xffff},
	{Name: "noc auto con1", Addr: rk356x.PMU_NOC_AUTO_CON1, Mask: 0x000f, Value: 0x000f},
	// Core PVTPLL ring length 5, oscillator on and started.
	{
		Name:  "core pvtpll",
		Addr:  rk356x.GRF_CPU_COREPVTPLL_CON0,
		Mask:  rk356x.CORE_PVTPLL_RING_LENGTH_SEL_MASK | rk356x.CORE_PVTPLL_OSC_EN | rk356x.CORE_PVTPLL_START,
		Value: 5<<rk356x.CORE_PVTPLL_RING_LENGTH_SEL_SHIFT | rk356x.CORE_PVTPLL_OSC_EN | rk356x.CORE_PVTPLL_START,
	},
}

var lanes = []phy.Lane{
	{Index: 0, Claims: []phy.Claim{
		{Feature: feature.USB3, Mode: multiphy.USB3},
	}},
	{Index: 1, Claims: []phy.Claim{
		{Feature: feature.SATA1, Mode: multiphy.SATA},
		{Feature: feature.PCIe3x1, Mode: multiphy.PCIe},
	}},
	{Index: 2, Claims: []phy.Claim{
		{Feature: feature.PCIe2x1, Mode: multiphy.PCIe},
		{Feature: feature.PCIe3x1, Mode: multiphy.PCIe},
		{Feature: feature.PCIe3x2, Mode: multiphy.PCIe},
	}},
}

// Only one PCIe controller can own the PCIe lanes at a time, and PCIe
// 3.0 x1 borrows multi-PHY 1 from SATA.
var groups = []feature.Group{
	{Name: "pcie", Flags: []feature.Flag{feature.PCIe2x1, feature.PCIe3x1, feature.PCIe3x2}},
	{Name: "multiphy1", Flags: []feature.Flag{feature.SATA1, feature.PCIe3x1}},
}

var outputs = []pinmux.Output{
	{Name: "USER_LED2", Bank: 0, Pin: gpio.PA6, Level: true},
}

var featureOutputs = map[feature.Flag][]pinmux.Output{
	feature.USB3: {
		{Name: "USB_HOST_PWREN", Bank: 0, Pin: gpio.PB7, Level: true},
	},
	feature.PCIe3x2: {
		{Name: "PCIECLKIC_OE", Bank: 3, Pin: gpio.PA7, Pull: gpio.PullNone, Level: false},
		{Name: "GPIO0_PD6", Bank: 0, Pin: gpio.PD6, Pull: gpio.PullNone, Level: false},
	},
}

type options struct {
	sd    iodomain.Level
	sdSet bool
}

type Option func(*options)

// WithVccioSD programs LDO5, the rail behind the SD card IO domain, to l.
// Without it LDO5 keeps its reset voltage and stays disabled.
func WithVccioSD(l iodomain.Level) Option {
	return func(o *options) {
		o.sd = l
		o.sdSet = true
	}
}

func regulators(o options) pmic.RegisterMap {
	m := pmic.RegisterMap{
		Select: []pmic.Setting{
			{Reg: pmic.LDO1OnVsel, Value: pmic.MustLDOCode(900)},  // vdda0v9_image
			{Reg: pmic.LDO2OnVsel, Value: pmic.MustLDOCode(900)},  // vdda_0v9
			{Reg: pmic.LDO3OnVsel, Value: pmic.MustLDOCode(900)},  // vdd0v9_pmu
			{Reg: pmic.LDO4OnVsel, Value: pmic.MustLDOCode(3300)}, // vccio_acodec
			{Reg: pmic.LDO6OnVsel, Value: pmic.MustLDOCode(3300)}, // vcc3v3_pmu
			{Reg: pmic.LDO7OnVsel, Value: pmic.MustLDOCode(1800)}, // vcca_1v8
			{Reg: pmic.LDO8OnVsel, Value: pmic.MustLDOCode(1800)}, // vcca1v8_pmu
			{Reg: pmic.LDO9OnVsel, Value: pmic.MustLDOCode(1800)}, // vcca1v8_image
		},
		Enable: []pmic.Setting{
			{Reg: pmic.PowerEn1, Value: pmic.EnableBits(0xf, 0xf)}, // LDO1-4
			{Reg: pmic.PowerEn2, Value: pmic.EnableBits(0xe, 0xe)}, // LDO6-8
			{Reg: pmic.PowerEn3, Value: pmic.EnableBits(0x5, 0x5)}, // LDO9, SW1
		},
	}
	if !o.sdSet {
		m.Unprogrammed = []pmic.Rail{"LDO5 (vccio_sd)"}
		return m
	}
	mV := 3300
	if o.sd == iodomain.V1V8 {
		mV = 1800
	}
	m.Select = append(m.Select, pmic.Setting{Reg: pmic.LDO5OnVsel, Value: pmic.MustLDOCode(mV)})
	m.Enable[1].Value = pmic.EnableBits(0xf, 0xf)
	return m
}

// Board returns the E25 description. The feature keyed tables are shared
// between calls and must not be modified.
func Board(opts ...Option) *bringup.Board {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &bringup.Board{
		Name:    Name,
		Domains: append([]iodomain.Setting(nil), domains...),
		PMIC: bringup.PMIC{
			Addr:    pmic.DefaultAddr,
			Chip:    pmic.RK809,
			BusPins: append([]pinmux.Pin(nil), pmicBusPins...),
			Map:     regulators(o),
		},
		Pins:           pins,
		Routes:         routes,
		Clocks:         append([]regtune.Setting(nil), clocks...),
		Lanes:          lanes,
		Groups:         groups,
		Outputs:        append([]pinmux.Output(nil), outputs...),
		FeatureOutputs: featureOutputs,
	}
}
