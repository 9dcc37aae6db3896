// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (o MetricOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: o.Namespace, Subsystem: o.Subsystem, Name: o.Name, Help: o.Help}
}

func (o MetricOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: o.Namespace, Subsystem: o.Subsystem, Name: o.Name, Help: o.Help}
}

func (o MetricOpts) histogram(buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: o.Namespace, Subsystem: o.Subsystem, Name: o.Name, Help: o.Help, Buckets: buckets}
}

// Bring-up stages are register pokes and a handful of I2C transfers, so
// buckets start well below a millisecond.
var stageBuckets = prometheus.ExponentialBuckets(0.0001, 4, 8)

// Recorder holds the bring-up metrics on a registry of its own. There is
// no HTTP listener this early in boot; the registry is dumped to a
// textfile for node-exporter instead.
type Recorder struct {
	reg *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec
	laneMode      *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge

	lanes map[string]string
}

func New() *Recorder {
	r := &Recorder{
		reg:   prometheus.NewRegistry(),
		lanes: make(map[string]string),
		stageDuration: prometheus.NewHistogramVec(MetricOpts{
			Namespace: "bringup", Name: "stage_duration_seconds",
			Help: "Time spent in each bring-up stage.",
		}.histogram(stageBuckets), []string{"stage"}),
		stageTotal: prometheus.NewCounterVec(MetricOpts{
			Namespace: "bringup", Name: "stage_total",
			Help: "Bring-up stage executions by outcome.",
		}.counter(), []string{"stage", "result"}),
		laneMode: prometheus.NewGaugeVec(MetricOpts{
			Namespace: "bringup", Subsystem: "phy", Name: "lane_mode",
			Help: "1 for the protocol each shared PHY lane was assigned.",
		}.gauge(), []string{"lane", "mode"}),
		lastSuccess: prometheus.NewGauge(MetricOpts{
			Namespace: "bringup", Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last bring-up that reached Done.",
		}.gauge()),
	}
	r.reg.MustRegister(r.stageDuration, r.stageTotal, r.laneMode, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveStage records one finished stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.stageTotal.WithLabelValues(stage, result).Inc()
}

// SetLane records the mode of a lane, replacing any earlier value.
func (r *Recorder) SetLane(lane int, mode string) {
	l := strconv.Itoa(lane)
	if old, ok := r.lanes[l]; ok {
		r.laneMode.DeleteLabelValues(l, old)
	}
	r.lanes[l] = mode
	r.laneMode.WithLabelValues(l, mode).Set(1)
}

func (r *Recorder) MarkSuccess(t time.Time) {
	r.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	return nil
}
