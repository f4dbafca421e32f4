// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats aggregates the device-wide atomic counter tree and exposes
// it through a Prometheus collector, without imposing any ordering
// guarantee between a counter's increments and a given Collect call (spec
// §5): readers may observe a value mid-update relative to the data-plane
// goroutine that owns it.
package stats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Source is queried once per Collect call; callers register one Source
// per queue pair, RDMA QP, or other subsystem whose counters should be
// exported.
type Source interface {
	// Name identifies the source in exported metric labels (e.g. "qp0").
	Name() string
	// Snapshot returns the source's current counter values by name.
	Snapshot() map[string]uint64
}

// Collector is a device-wide atomic counter tree plus a prometheus.Collector
// view over every registered Source.
type Collector struct {
	namespace string
	sources   []Source

	resets uint64
}

// NewCollector creates a collector and stores namespace (e.g. "gonic").
// The exported metric names are fixed ("device_resets_total",
// "device_counter") and are not prefixed with namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{namespace: namespace}
}

// Register adds a counter Source to the collector's export set.
func (c *Collector) Register(s Source) { c.sources = append(c.sources, s) }

// RecordReset increments the device-wide reset counter, incremented once
// per Device.Reset() call.
func (c *Collector) RecordReset() { atomic.AddUint64(&c.resets, 1) }

// Resets returns how many device resets have been recorded.
func (c *Collector) Resets() uint64 { return atomic.LoadUint64(&c.resets) }

var deviceResetsDesc = prometheus.NewDesc(
	"device_resets_total", "Total number of device resets.", nil, nil,
)

var sourceCounterDesc = prometheus.NewDesc(
	"device_counter", "A named counter from a registered device subsystem.",
	[]string{"source", "counter"}, nil,
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- deviceResetsDesc
	ch <- sourceCounterDesc
}

// Collect implements prometheus.Collector. It walks every registered
// Source and emits one counter metric per named value in its snapshot.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(deviceResetsDesc, prometheus.CounterValue, float64(c.Resets()))
	for _, s := range c.sources {
		for name, v := range s.Snapshot() {
			ch <- prometheus.MustNewConstMetric(sourceCounterDesc, prometheus.CounterValue, float64(v), s.Name(), name)
		}
	}
}
