// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
)

// Set at link time with -X.
var (
	gitVersion = "dev"
	gitHash    = "unknown"
)

type Version struct {
	Version string
	GitHash string
}

type Log struct {
	// Serial is a tty that receives a copy of the log, e.g. /dev/ttyS2.
	Serial string `yaml:"serial"`
	Baud   int    `yaml:"baud"`
	File   string `yaml:"file"`
}

type Config struct {
	Board    string   `yaml:"board"`
	Features []string `yaml:"features"`

	// VccioSD sets the PMIC rail feeding the SD card IO domain, "1v8" or
	// "3v3". Empty leaves the rail at its reset value.
	VccioSD string `yaml:"vccio_sd"`

	I2CBus int    `yaml:"i2c_bus"`
	DevMem string `yaml:"devmem"`

	Log             Log    `yaml:"log"`
	MetricsTextfile string `yaml:"metrics_textfile"`

	Version Version `yaml:"-"`
}

var DefaultConfig = &Config{
	Board: "radxa-e25",

	// Both mini PCIe slots on the E25 carrier are wired to the PCIe 3.0
	// x2 controller, USB3 goes to the type A host port.
	Features: []string{"usb3", "pcie3x2"},

	I2CBus: 0,
	DevMem: "/dev/mem",

	Log: Log{
		Serial: "/dev/ttyS2",
		Baud:   1500000,
	},

	MetricsTextfile: "/run/bringup.prom",

	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}

// Load reads a YAML config from path. Keys missing from the file keep
// their DefaultConfig values.
func Load(path string) (*Config, error) {
	return load(afero.NewOsFs(), path)
}

func load(fs afero.Fs, path string) (*Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c := *DefaultConfig
	c.Features = append([]string(nil), DefaultConfig.Features...)
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the fields that do not depend on the board tables.
func (c *Config) Validate() error {
	for _, n := range c.Features {
		if _, err := feature.ParseFlag(n); err != nil {
			return err
		}
	}
	if _, _, err := c.SDLevel(); err != nil {
		return err
	}
	if c.Log.Serial != "" && c.Log.Baud <= 0 {
		return fmt.Errorf("log.baud must be positive, got %d", c.Log.Baud)
	}
	return nil
}

// SDLevel returns the requested VCCIO_SD level. ok is false when none is
// configured.
func (c *Config) SDLevel() (l iodomain.Level, ok bool, err error) {
	if c.VccioSD == "" {
		return 0, false, nil
	}
	l, err = iodomain.ParseLevel(c.VccioSD)
	if err != nil {
		return 0, false, err
	}
	return l, true, nil
}

// FeatureSet resolves the feature names and checks them against the
// board's exclusion groups.
func (c *Config) FeatureSet(groups []feature.Group) (feature.Set, error) {
	flags := make([]feature.Flag, 0, len(c.Features))
	for _, n := range c.Features {
		f, err := feature.ParseFlag(n)
		if err != nil {
			return feature.Set{}, err
		}
		flags = append(flags, f)
	}
	s := feature.Of(flags...)
	if err := feature.Validate(s, groups); err != nil {
		return feature.Set{}, err
	}
	return s, nil
}
