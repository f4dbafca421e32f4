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

package device

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/softnic/gonic/admin"
	"github.com/softnic/gonic/dma"
	"github.com/softnic/gonic/errinject"
	"github.com/softnic/gonic/ethernet"
	"github.com/softnic/gonic/flowcontrol"
	"github.com/softnic/gonic/hostmem"
	"github.com/softnic/gonic/interrupt"
	"github.com/softnic/gonic/memregion"
	"github.com/softnic/gonic/ptp"
	"github.com/softnic/gonic/rdma"
	"github.com/softnic/gonic/ring"
	"github.com/softnic/gonic/rss"
	"github.com/softnic/gonic/stats"
)

// Version is the device's hardware/firmware/driver-ABI version triple.
type Version struct {
	Hardware uint8
	Firmware uint8
	ABI      uint8
}

// Config bounds the sizes a Device is built with.
type Config struct {
	Name          string
	MACAddress    [6]byte
	NumEthQueues  int
	RingCapacity  int
	MaxMTU        uint32
	MemorySize    uint64
	PFCThreshold  uint32
}

// DefaultConfig returns reasonable sizes for a single-function test device.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		NumEthQueues: 4,
		RingCapacity: 256,
		MaxMTU:       9000,
		MemorySize:   1 << 24,
		PFCThreshold: 1024,
	}
}

// Device is the façade composing every subsystem behind one addressable
// register file, the way a real NIC's driver-visible BAR0 fronts a stack
// of independent engines.
type Device struct {
	InstanceID uuid.UUID
	Version    Version
	Config     Config

	Registers *RegisterFile
	Log       Logger

	Memory *hostmem.Memory
	DMA    *dma.Engine

	EthQueues []*ethernet.QueuePair
	RSS       *rss.Engine

	RdmaQPs map[uint32]*rdma.QueuePair
	Regions *memregion.Table

	Interrupts *interrupt.Dispatcher

	Pause        *flowcontrol.PauseManager
	PFC          *flowcontrol.PFCManager
	Backpressure *flowcontrol.BackpressureMonitor
	EEE          *flowcontrol.EEEManager

	Clock      *ptp.Clock
	Timestamps *ptp.Timestamper

	AdminQueue *admin.Queue
	Mailboxes  map[uint32]*admin.Mailbox

	Stats  *stats.Collector
	Faults *errinject.Injector
}

// New builds a Device from cfg: all rings, regions, and managers are
// created empty/zeroed, matching a power-on-reset state.
func New(cfg Config, version Version) *Device {
	mem := hostmem.New(cfg.MemorySize)
	eng := dma.New(mem)
	interrupts := interrupt.New(cfg.NumEthQueues * 2)

	d := &Device{
		InstanceID: uuid.New(),
		Version:    version,
		Config:     cfg,
		Registers: NewRegisterFile(),
		Log:       NewLogger(nil, cfg.Name),
		Memory:    mem,
		DMA:       eng,
		RSS:       rss.New(nil, nil),
		RdmaQPs:   make(map[uint32]*rdma.QueuePair),
		Regions:   memregion.New(),
		Interrupts: interrupts,
		Pause:        flowcontrol.NewPauseManager(cfg.MACAddress),
		PFC:          flowcontrol.NewPFCManager(cfg.MACAddress, cfg.PFCThreshold),
		Backpressure: flowcontrol.NewBackpressureMonitor(flowcontrol.DefaultThresholds),
		EEE:          flowcontrol.NewEEEManager(1_000_000, 50_000, 20_000),
		Clock:        ptp.NewClock(),
		Mailboxes:    make(map[uint32]*admin.Mailbox),
		Stats:        stats.NewCollector("gonic"),
		Faults:       &errinject.Injector{},
	}
	d.Timestamps = ptp.NewTimestamper(d.Clock, cfg.NumEthQueues)
	d.AdminQueue = admin.NewQueue(d.handleAdminCommand)

	for i := 0; i < cfg.NumEthQueues; i++ {
		qp := &ethernet.QueuePair{
			TxRing: ring.NewDescriptorRing(uint32(i), cfg.RingCapacity, ethernet.TxDescriptorWireLen, nil),
			RxRing: ring.NewDescriptorRing(uint32(i), cfg.RingCapacity, ethernet.RxDescriptorWireLen, nil),
			TxCQ:   ring.NewCompletionQueue[ethernet.CompletionEntry](uint32(i), cfg.RingCapacity+1, nil),
			RxCQ:   ring.NewCompletionQueue[ethernet.CompletionEntry](uint32(i), cfg.RingCapacity+1, nil),
			DMA:    eng,
			MaxMTU: cfg.MaxMTU,
			Interrupts:     interrupts,
			TxInterruptVec: i * 2,
			RxInterruptVec: i*2 + 1,
		}
		d.EthQueues = append(d.EthQueues, qp)
		d.Stats.Register(&stats.EthernetSource{QueueName: queueName(i), Stats: &qp.Stats})
	}

	d.Registers.SetLinkUp(true)
	return d
}

func queueName(i int) string {
	return "qp" + strconv.Itoa(i)
}

func (d *Device) handleAdminCommand(c admin.Command) admin.CommandResult {
	return admin.CommandResult{ID: c.ID, Success: true}
}

// NewRdmaQP registers a new RDMA queue pair bound to this device's shared
// memory and region table.
func (d *Device) NewRdmaQP(qpn, destQPN, pdHandle, pmtu uint32) *rdma.QueuePair {
	qp := rdma.NewQueuePair(qpn, destQPN, pdHandle, pmtu, d.Regions, d.DMA)
	d.RdmaQPs[qpn] = qp
	d.Mailboxes[qpn] = admin.NewMailbox(0)
	return qp
}

// Reset walks every ring, queue pair, and mailbox back to its power-on
// state, matching a software-initiated CTRL.RST (spec device-reset
// semantics): in-flight work is dropped, not drained, since a real NIC
// reset does not wait for outstanding DMA to complete either.
func (d *Device) Reset() {
	for _, qp := range d.EthQueues {
		qp.TxRing.Reset()
		qp.RxRing.Reset()
		qp.TxCQ.Reset()
		qp.RxCQ.Reset()
	}
	for _, qp := range d.RdmaQPs {
		qp.Reset()
	}
	for qpn := range d.Mailboxes {
		d.Mailboxes[qpn] = admin.NewMailbox(0)
	}
	d.Registers.Write(RegCTRL, 0)
	d.Registers.Write(RegICR, 0)
	d.Registers.SetLinkUp(true)
	d.Stats.RecordReset()
	d.Log.Info().Msg("device reset complete")
}
