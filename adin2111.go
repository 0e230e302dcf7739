// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package adin2111 is a device model of the ADIN2111 dual-port
// 10BASE-T1L ethernet switch/phy: the spi register file, the internal
// switch fabric with mac learning, and the datasheet latencies, all
// driven by a virtual clock so behavior is deterministic.
package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"
	"github.com/platinasystems/adin2111/event"

	"github.com/platinasystems/log"
	uuid "github.com/satori/go.uuid"

	"time"
)

type Config struct {
	// Station addresses for the two phy ports.
	Mac [nPhyPorts]ethernet.Address

	// DualMac disables the switch fabric at reset: each phy port
	// talks only to the host endpoint, never port to port.
	DualMac bool

	// StoreAndForward clears the cut-through default at reset.
	StoreAndForward bool

	// TableSize is the mac table profile, 16 or 256.  Zero means 256.
	TableSize int

	// IRQ is called with the level of the interrupt line on every
	// edge.  May be nil.
	IRQ func(bool)

	// Ports binds a backend per endpoint, indexed by Port1, Port2,
	// HostPort.  Nil entries drop frames.
	Ports [nEndpoints]Backend

	// Events is the host simulation's virtual clock.  Nil gives the
	// device a private queue.
	Events *event.Queue
}

type Device struct {
	cfg Config
	ev  *event.Queue
	id  uuid.UUID
	tag string

	regs [RegCount]uint32

	// effective switch mode, readable through SwitchConfig
	cutThrough   bool
	switchEnable bool
	learn        bool

	resetActive bool
	resetId     event.Id
	phyResetId  [nPhyPorts]event.Id

	spi   spiEngine
	table macTable
	ports [nEndpoints]port

	intStatus uint32
	intMask   uint32
	spiError  bool
	irqLevel  bool

	arena        frameArena
	framePending map[event.Id]int // pending frame event -> arena slot
}

func New(c Config) *Device {
	d := &Device{cfg: c, ev: c.Events}
	if d.ev == nil {
		d.ev = event.New()
	}
	if d.cfg.TableSize == 0 {
		d.cfg.TableSize = MaxMacTable
	}
	d.id = uuid.NewV4()
	d.tag = "adin2111-" + d.id.String()[:8]
	d.table = newMacTable(d.cfg.TableSize)
	d.framePending = make(map[event.Id]int)
	for i := range d.ports {
		d.ports[i].wantLink = true
	}
	d.ports[Port1].mac = c.Mac[0]
	d.ports[Port2].mac = c.Mac[1]
	d.initDefaults()
	log.Print(d.tag, ": created, mac table ", d.cfg.TableSize, " entries")
	return d
}

// Id is the instance identity used in logs and published counter keys.
func (d *Device) Id() string { return d.id.String() }

// Events is the virtual clock driving all device timing.
func (d *Device) Events() *event.Queue { return d.ev }

// Ready is the DeviceStatus READY bit.
func (d *Device) Ready() bool { return !d.resetActive }

// Close cancels every pending timing event so no callback can fire
// against a dead device.
func (d *Device) Close() {
	d.cancelFrames()
	if d.resetId != 0 {
		d.ev.Cancel(d.resetId)
		d.resetId = 0
	}
	for i := range d.phyResetId {
		if d.phyResetId[i] != 0 {
			d.ev.Cancel(d.phyResetId[i])
			d.phyResetId[i] = 0
		}
	}
}

// initDefaults puts the register file and derived state into power-on
// shape.  Runs at creation and again at every reset completion.
func (d *Device) initDefaults() {
	for i := range d.regs {
		d.regs[i] = 0
	}
	d.regs[ChipId] = ChipIdValue
	d.regs[Port1Ctrl] = PortEnable
	d.regs[Port2Ctrl] = PortEnable

	d.cutThrough = !d.cfg.StoreAndForward
	d.switchEnable = !d.cfg.DualMac
	d.learn = true

	d.intStatus, d.intMask = 0, 0
	d.spiError = false
	d.table.clear()
	d.arena.reset()
	for i := range d.ports {
		d.ports[i].clearCounters()
		d.ports[i].phyResetting = false
	}
	d.spi.abort()
	d.updateIrq()
}

func (d *Device) writeResetCtl(v uint32) {
	switch {
	case v&ResetSoft != 0:
		d.beginReset(ResetDelay)
	case v&ResetMac != 0:
		d.beginReset(MacResetDelay)
	}
	if v&ResetPhy1 != 0 {
		d.beginPhyReset(Port1)
	}
	if v&ResetPhy2 != 0 {
		d.beginPhyReset(Port2)
	}
}

// beginReset drops READY and schedules the single pending reset-complete
// event.  A stacked reset cancels the pending one and restarts the clock.
func (d *Device) beginReset(dt time.Duration) {
	if d.resetId != 0 {
		d.ev.Cancel(d.resetId)
		log.Print(d.tag, ": reset re-triggered, rescheduled")
	}
	d.resetActive = true
	d.cancelFrames()
	for i := range d.phyResetId {
		if d.phyResetId[i] != 0 {
			d.ev.Cancel(d.phyResetId[i])
			d.phyResetId[i] = 0
		}
	}
	d.resetId = d.ev.Add(&resetDone{d: d}, dt)
}

func (d *Device) beginPhyReset(p Port) {
	pp := &d.ports[p]
	if d.phyResetId[p] != 0 {
		d.ev.Cancel(d.phyResetId[p])
	}
	linkWas := pp.linkUp()
	pp.phyResetting = true
	if linkWas {
		d.linkChanged(p)
	}
	d.phyResetId[p] = d.ev.Add(&phyResetDone{d: d, port: p}, PhyResetDelay)
}

func (d *Device) linkChanged(p Port) {
	if p == Port1 {
		d.raiseInt(IntLink1)
	} else {
		d.raiseInt(IntLink2)
	}
}

type resetDone struct{ d *Device }

func (e *resetDone) EventAction() {
	d := e.d
	d.resetId = 0
	d.initDefaults()
	d.resetActive = false
	d.raiseInt(IntReady)
	log.Print(d.tag, ": reset complete")
}
func (e *resetDone) String() string { return "adin2111 reset complete" }

type phyResetDone struct {
	d    *Device
	port Port
}

func (e *phyResetDone) EventAction() {
	d := e.d
	pp := &d.ports[e.port]
	d.phyResetId[e.port] = 0
	pp.phyResetting = false
	if pp.linkUp() {
		d.linkChanged(e.port)
	}
}
func (e *phyResetDone) String() string { return "adin2111 phy reset complete" }
