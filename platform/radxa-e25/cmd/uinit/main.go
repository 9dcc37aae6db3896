// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/u-root/u-bringup/config"
	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/board/pmic"
	"github.com/u-root/u-bringup/pkg/bringup"
	"github.com/u-root/u-bringup/pkg/hardware/i2c"
	"github.com/u-root/u-bringup/pkg/hardware/mmio"
	"github.com/u-root/u-bringup/pkg/hardware/rk356x"
	"github.com/u-root/u-bringup/pkg/hardware/sim"
	"github.com/u-root/u-bringup/pkg/logger"
	"github.com/u-root/u-bringup/pkg/metric"
	"github.com/u-root/u-bringup/platform/radxa-e25/pkg/platform"
)

var (
	configPath = flag.String("config", "/etc/bringup.yaml", "Bring-up configuration, defaults apply when missing")
	features   = flag.String("features", "", "Comma separated feature list, overrides the configuration")
	dryRun     = flag.Bool("dry-run", false, "Run against a simulated RK3568 and print every access")

	log = logger.LogContainer.GetSimpleLogger()
)

func loadConfig(path string) (*config.Config, error) {
	c, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("No configuration at %s, using defaults", path)
		d := *config.DefaultConfig
		return &d, nil
	}
	return c, err
}

func openSink(c *config.Config) io.Closer {
	var (
		cl  io.Closer
		err error
	)
	switch {
	case c.Log.File != "":
		cl, err = logger.OpenFileSink(c.Log.File)
	case c.Log.Serial != "" && !*dryRun:
		cl, err = logger.OpenSerialSink(c.Log.Serial, c.Log.Baud)
	default:
		return nil
	}
	if err != nil {
		log.Warnf("Log sink unavailable: %v", err)
		return nil
	}
	return cl
}

type closers []io.Closer

func (cs closers) Close() {
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Close(); err != nil {
			log.Warnf("Close: %v", err)
		}
	}
}

// realHardware maps the SoC registers and opens the PMIC bus.
func realHardware(c *config.Config) (bringup.Hardware, closers, error) {
	var cs closers
	mem, err := mmio.Open(c.DevMem)
	if err != nil {
		return bringup.Hardware{}, cs, err
	}
	cs = append(cs, mem)
	bus, err := i2c.OpenSMBus(c.I2CBus, pmic.DefaultAddr)
	if err != nil {
		return bringup.Hardware{}, cs, err
	}
	cs = append(cs, bus)
	soc := rk356x.New(mem)
	return bringup.Hardware{Bus: bus, Pins: soc, Regs: mem, Domains: soc, Phys: soc}, cs, nil
}

// simHardware runs the RK3568 register driver on top of a simulated
// register space with an RK809 answering on the bus.
func simHardware() (bringup.Hardware, *sim.Board) {
	b := sim.New()
	b.AddDevice(pmic.DefaultAddr, map[uint8]uint8{pmic.ChipName: 0x80, pmic.ChipVer: 0x91})
	soc := rk356x.New(b)
	return bringup.Hardware{Bus: b.Bus("i2c0"), Pins: soc, Regs: b, Domains: soc, Phys: soc}, b
}

func featureSet(c *config.Config, groups []feature.Group) (feature.Set, error) {
	if *features != "" {
		c.Features = strings.Split(*features, ",")
	}
	return c.FeatureSet(groups)
}

func run() int {
	c, err := loadConfig(*configPath)
	if err != nil {
		log.Errorf("Configuration: %v", err)
		return 2
	}
	if c.Board != platform.Name {
		log.Errorf("Configuration is for board %q, this is %q", c.Board, platform.Name)
		return 2
	}
	if sink := openSink(c); sink != nil {
		defer sink.Close()
	}
	defer logger.LogContainer.Sync()

	log.Infof("u-bringup %s (%s) for %s", c.Version.Version, c.Version.GitHash, platform.Name)

	var opts []platform.Option
	if l, ok, _ := c.SDLevel(); ok {
		opts = append(opts, platform.WithVccioSD(l))
	}
	board := platform.Board(opts...)

	fs, err := featureSet(c, board.Groups)
	if err != nil {
		log.Errorf("Features: %v", err)
		return 2
	}

	var (
		hw bringup.Hardware
		sb *sim.Board
	)
	if *dryRun {
		hw, sb = simHardware()
	} else {
		var cs closers
		hw, cs, err = realHardware(c)
		defer cs.Close()
		if err != nil {
			log.Errorf("Hardware: %v", err)
			return 1
		}
	}

	rec := metric.New()
	res := bringup.Run(board, hw, fs, bringup.WithMetrics(rec))

	if sb != nil {
		fmt.Print(sb.Dump())
	}
	if c.MetricsTextfile != "" && !*dryRun {
		if err := rec.WriteTextfile(c.MetricsTextfile); err != nil {
			log.Warnf("Metrics: %v", err)
		}
	}
	if !res.Done() {
		log.Errorf("Bring-up stopped in %s after %v: %v", res.Stage, res.Reached, res.Err)
		return 1
	}
	for _, a := range res.Lanes {
		log.Infof("PHY: %v", a)
	}
	return 0
}

func main() {
	flag.Parse()
	os.Exit(run())
}
