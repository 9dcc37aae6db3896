// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bringup runs the board bring-up sequence: IO domain voltages,
// PMIC identity and regulators, pin-mux, clock fixups, PHY lanes and
// finally the peripheral enable outputs. Stages run strictly in order and
// the first failure ends the run without rollback.
package bringup

import (
	"fmt"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/u-root/u-bringup/pkg/board/feature"
	"github.com/u-root/u-bringup/pkg/board/phy"
	"github.com/u-root/u-bringup/pkg/board/pinmux"
	"github.com/u-root/u-bringup/pkg/board/pmic"
	"github.com/u-root/u-bringup/pkg/board/power"
	"github.com/u-root/u-bringup/pkg/board/regtune"
	"github.com/u-root/u-bringup/pkg/hardware/gpio"
	"github.com/u-root/u-bringup/pkg/hardware/i2c"
	"github.com/u-root/u-bringup/pkg/hardware/iodomain"
	"github.com/u-root/u-bringup/pkg/hardware/mmio"
	"github.com/u-root/u-bringup/pkg/hardware/multiphy"
	"github.com/u-root/u-bringup/pkg/logger"
	"github.com/u-root/u-bringup/pkg/metric"
)

var log = logger.LogContainer.GetLogger()

type State int

const (
	Start State = iota
	VoltageConfigured
	PmicVerified
	PmicProgrammed
	PinsConfigured
	ClocksTuned
	PhysAssigned
	PeripheralsEnabled
	Done
	Failed
)

var stateNames = [...]string{
	Start:              "Start",
	VoltageConfigured:  "VoltageConfigured",
	PmicVerified:       "PmicVerified",
	PmicProgrammed:     "PmicProgrammed",
	PinsConfigured:     "PinsConfigured",
	ClocksTuned:        "ClocksTuned",
	PhysAssigned:       "PhysAssigned",
	PeripheralsEnabled: "PeripheralsEnabled",
	Done:               "Done",
	Failed:             "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Stage names as they appear in results, logs and metrics.
const (
	StagePlan          = "plan"
	StagePhyAllocation = "phy-allocation"
	StageVoltage       = "voltage"
	StagePmicVerify    = "pmic-verify"
	StagePmicProgram   = "pmic-program"
	StagePinmux        = "pinmux"
	StageClocks        = "clocks"
	StagePhyAssign     = "phy-assign"
	StagePeripherals   = "peripherals"
)

// PMIC describes the board's power management IC.
type PMIC struct {
	Addr uint8
	Chip uint16

	// Pins of the PMIC's I2C bus, configured before the first transfer.
	BusPins []pinmux.Pin
	Map     pmic.RegisterMap
}

// Board is the static description of one board. It is never modified by
// Run.
type Board struct {
	Name    string
	Domains []iodomain.Setting
	PMIC    PMIC

	Pins pinmux.Table
	// Iomux route selects applied right after a feature's pins.
	Routes map[feature.Flag][]regtune.Setting

	Clocks []regtune.Setting

	Lanes  []phy.Lane
	Groups []feature.Group

	// Outputs are driven on every boot, FeatureOutputs only when their
	// feature is enabled.
	Outputs        []pinmux.Output
	FeatureOutputs map[feature.Flag][]pinmux.Output
}

// Hardware bundles the primitives bring-up drives.
type Hardware struct {
	Bus     i2c.Bus
	Pins    gpio.Driver
	Regs    mmio.Writer
	Domains iodomain.Setter
	Phys    multiphy.Setter
}

// StageError ties a failure to the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bringup: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one Run. On failure State is Failed, Stage
// names the failing stage and Err is a *StageError.
type Result struct {
	State State
	Stage string
	Err   error

	// Reached is the last state entered before a failure.
	Reached State
	Lanes   []phy.Assignment
	Chip    pmic.DeviceID
}

func (r Result) Done() bool {
	return r.State == Done && r.Err == nil
}

// Plan is everything bring-up decides before touching hardware.
type Plan struct {
	Features feature.Set
	Sequence *power.Sequencer
	Lanes    []phy.Assignment
	Outputs  []pinmux.Output
}

// Prepare checks the board tables against features and computes the lane
// assignment. It has no side effects. The returned stage is the one a
// failure is attributed to.
func Prepare(b *Board, features feature.Set) (*Plan, string, error) {
	seq, err := power.NewSequencer(b.Domains)
	if err != nil {
		return nil, StagePlan, err
	}
	if err := b.Pins.Validate(b.Groups); err != nil {
		return nil, StagePlan, err
	}
	alloc, err := phy.NewAllocator(b.Lanes, b.Groups)
	if err != nil {
		return nil, StagePlan, err
	}
	lanes, err := alloc.Allocate(features)
	if err != nil {
		return nil, StagePhyAllocation, err
	}
	outs := append([]pinmux.Output(nil), b.Outputs...)
	for _, f := range features.Flags() {
		outs = append(outs, b.FeatureOutputs[f]...)
	}
	return &Plan{Features: features, Sequence: seq, Lanes: lanes, Outputs: outs}, "", nil
}

type Option func(*runner)

// WithMetrics records stage timings and lane modes in rec.
func WithMetrics(rec *metric.Recorder) Option {
	return func(r *runner) { r.rec = rec }
}

// WithClock replaces the wall clock used for stage timing.
func WithClock(clk clock.Clock) Option {
	return func(r *runner) { r.clk = clk }
}

type runner struct {
	b   *Board
	hw  Hardware
	rec *metric.Recorder
	clk clock.Clock
	res Result
}

// stage runs fn, logs and records it and on success moves to next.
func (r *runner) stage(name string, next State, fn func() error) bool {
	start := r.clk.Now()
	err := fn()
	d := r.clk.Now().Sub(start)
	if r.rec != nil {
		r.rec.ObserveStage(name, d, err)
	}
	if err != nil {
		log.Error("Stage failed", zap.String("board", r.b.Name), zap.String("stage", name),
			zap.Duration("duration", d), zap.Error(err))
		r.fail(name, err)
		return false
	}
	log.Info("Stage done", zap.String("board", r.b.Name), zap.String("stage", name),
		zap.Duration("duration", d), zap.Stringer("state", next))
	r.res.State = next
	r.res.Reached = next
	return true
}

func (r *runner) fail(stage string, err error) {
	r.res.Reached = r.res.State
	r.res.State = Failed
	r.res.Stage = stage
	r.res.Err = &StageError{Stage: stage, Err: err}
}

// Run brings the board up with the given features enabled. It is not safe
// to call concurrently on the same hardware.
func Run(b *Board, hw Hardware, features feature.Set, opts ...Option) Result {
	r := &runner{b: b, hw: hw, clk: clock.New(), res: Result{State: Start}}
	for _, o := range opts {
		o(r)
	}
	log.Info("Starting bring-up", zap.String("board", b.Name), zap.Stringer("features", features))

	plan, stage, err := Prepare(b, features)
	if err != nil {
		if r.rec != nil {
			r.rec.ObserveStage(stage, 0, err)
		}
		log.Error("Bring-up plan rejected", zap.String("board", b.Name), zap.String("stage", stage), zap.Error(err))
		r.fail(stage, err)
		return r.res
	}

	ctrl := pmic.New(hw.Bus, b.PMIC.Addr, b.PMIC.Chip)
	tuner := regtune.New(hw.Regs)

	ok := r.stage(StageVoltage, VoltageConfigured, func() error {
		return plan.Sequence.Apply(hw.Domains)
	}) && r.stage(StagePmicVerify, PmicVerified, func() error {
		if err := pinmux.Apply(hw.Pins, b.PMIC.BusPins); err != nil {
			return err
		}
		id, err := ctrl.VerifyIdentity()
		r.res.Chip = id
		return err
	}) && r.stage(StagePmicProgram, PmicProgrammed, func() error {
		return ctrl.ProgramRegulators(b.PMIC.Map)
	}) && r.stage(StagePinmux, PinsConfigured, func() error {
		for _, f := range features.Flags() {
			if err := pinmux.Apply(hw.Pins, b.Pins[f]); err != nil {
				return fmt.Errorf("%v: %w", f, err)
			}
			if err := tuner.Apply(b.Routes[f]); err != nil {
				return fmt.Errorf("%v: %w", f, err)
			}
		}
		return nil
	}) && r.stage(StageClocks, ClocksTuned, func() error {
		return tuner.Apply(b.Clocks)
	}) && r.stage(StagePhyAssign, PhysAssigned, func() error {
		if err := phy.Apply(hw.Phys, plan.Lanes); err != nil {
			return err
		}
		r.res.Lanes = plan.Lanes
		return nil
	}) && r.stage(StagePeripherals, PeripheralsEnabled, func() error {
		return pinmux.ApplyOutputs(hw.Pins, plan.Outputs)
	})
	if !ok {
		return r.res
	}

	r.res.State = Done
	r.res.Reached = Done
	if r.rec != nil {
		for _, a := range plan.Lanes {
			r.rec.SetLane(a.Lane, a.Mode.String())
		}
		r.rec.MarkSuccess(r.clk.Now())
	}
	log.Info("Bring-up done", zap.String("board", b.Name), zap.String("chip", r.res.Chip.String()))
	return r.res
}
