// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"
	"github.com/platinasystems/adin2111/event"

	"github.com/platinasystems/log"

	"time"
)

// Forwarding latency is modelled as chained events, not one sleep, so
// counters and interrupt causes land on the right boundary: rx-complete
// raises RXx and runs the fabric, switch-complete starts the egress phy,
// tx-complete delivers and raises TXx_DONE.  Host-facing hops have no
// phy and skip the corresponding term.

type frameEvent struct {
	d    *Device
	id   event.Id
	slot int
}

func (e *frameEvent) setId(id event.Id) { e.id = id }

type frameActor interface {
	event.Actor
	setId(event.Id)
}

func (d *Device) scheduleFrame(a frameActor, dt time.Duration, slot int) {
	id := d.ev.Add(a, dt)
	a.setId(id)
	d.framePending[id] = slot
}

func (d *Device) frameFired(id event.Id) { delete(d.framePending, id) }

// cancelFrames runs on reset and Close; a fired callback must never see
// reinitialized or freed state.
func (d *Device) cancelFrames() {
	for id, slot := range d.framePending {
		if d.ev.Cancel(id) {
			d.arena.put(slot)
		}
		delete(d.framePending, id)
	}
}

// ReceivePacket is wire ingress on a phy port.  The frame is copied into
// the arena and its rx-complete event scheduled; everything after that
// happens on the virtual clock.
func (d *Device) ReceivePacket(p Port, b []byte) {
	if !p.isPhy() {
		log.Print(d.tag, ": ingress on non-phy endpoint ", p)
		return
	}
	if d.resetActive {
		return // no forwarding or interrupt activity during reset
	}
	pp := &d.ports[p]
	if !d.portEnabled(p) || !pp.linkUp() {
		pp.rxErrors++
		return
	}
	if len(b) < ethernet.HeaderBytes || len(b) > ethernet.MaxFrameBytes {
		pp.rxErrors++
		log.Print(d.tag, ": bad frame size ", len(b), " on ", p)
		return
	}
	slot, ok := d.arena.alloc(b)
	if !ok {
		pp.rxErrors++
		log.Print(d.tag, ": rx buffers exhausted, frame dropped")
		return
	}
	d.scheduleFrame(&rxDone{frameEvent{d: d, slot: slot}, p}, RxLatency, slot)
}

// HostTransmit is a host-originated frame routed by the fabric.  There
// is no phy on the spi side, so only the switch and egress terms apply.
func (d *Device) HostTransmit(b []byte) {
	if d.resetActive {
		return
	}
	hp := &d.ports[HostPort]
	if !d.switchEnable {
		hp.rxErrors++
		log.Print(d.tag, ": dual-mac host egress needs an explicit port")
		return
	}
	if len(b) < ethernet.HeaderBytes || len(b) > ethernet.MaxFrameBytes {
		hp.rxErrors++
		return
	}
	slot, ok := d.arena.alloc(b)
	if !ok {
		hp.rxErrors++
		log.Print(d.tag, ": host tx buffers exhausted, frame dropped")
		return
	}
	hp.rxPackets++
	hp.rxBytes += uint64(len(b))
	d.forward(HostPort, slot)
	d.arena.put(slot)
}

// HostTransmitPort bypasses the fabric and egresses on one port, the
// dual-mac data path.
func (d *Device) HostTransmitPort(p Port, b []byte) {
	if !p.isPhy() {
		log.Print(d.tag, ": host egress on non-phy endpoint ", p)
		return
	}
	if d.resetActive {
		return
	}
	hp := &d.ports[HostPort]
	if len(b) < ethernet.HeaderBytes || len(b) > ethernet.MaxFrameBytes {
		hp.rxErrors++
		return
	}
	slot, ok := d.arena.alloc(b)
	if !ok {
		hp.rxErrors++
		log.Print(d.tag, ": host tx buffers exhausted, frame dropped")
		return
	}
	hp.rxPackets++
	hp.rxBytes += uint64(len(b))
	d.scheduleFrame(&txDone{frameEvent{d: d, slot: slot}, p}, TxLatency, slot)
}

// scheduleDelivery starts the switch term for one target of a
// forwarding decision, taking a frame reference for it.
func (d *Device) scheduleDelivery(src, dst Port, slot int) {
	lat := SwitchLatency
	if d.cutThrough {
		lat /= 2
	}
	d.arena.ref(slot)
	if dst == HostPort {
		d.scheduleFrame(&hostDeliver{frameEvent{d: d, slot: slot}}, lat, slot)
	} else {
		d.scheduleFrame(&switchDone{frameEvent{d: d, slot: slot}, dst}, lat, slot)
	}
}

type rxDone struct {
	frameEvent
	port Port
}

func (e *rxDone) EventAction() {
	d := e.d
	d.frameFired(e.id)
	pp := &d.ports[e.port]
	pp.rxPackets++
	pp.rxBytes += uint64(len(d.arena.bytes(e.slot)))
	if e.port == Port1 {
		d.raiseInt(IntRx1)
	} else {
		d.raiseInt(IntRx2)
	}
	d.forward(e.port, e.slot)
	d.arena.put(e.slot)
}
func (e *rxDone) String() string { return "adin2111 rx complete" }

type switchDone struct {
	frameEvent
	dst Port
}

func (e *switchDone) EventAction() {
	d := e.d
	d.frameFired(e.id)
	// the frame reference rides along to the tx event
	d.scheduleFrame(&txDone{frameEvent{d: d, slot: e.slot}, e.dst}, TxLatency, e.slot)
}
func (e *switchDone) String() string { return "adin2111 switch complete" }

type txDone struct {
	frameEvent
	dst Port
}

func (e *txDone) EventAction() {
	d := e.d
	d.frameFired(e.id)
	pp := &d.ports[e.dst]
	if !d.portEnabled(e.dst) || !pp.linkUp() {
		pp.txErrors++
		d.arena.put(e.slot)
		return
	}
	b := d.arena.bytes(e.slot)
	if be := d.cfg.Ports[e.dst]; be != nil {
		be.SendPacket(append([]byte(nil), b...))
	}
	pp.txPackets++
	pp.txBytes += uint64(len(b))
	if e.dst == Port1 {
		d.raiseInt(IntTx1Done)
	} else {
		d.raiseInt(IntTx2Done)
	}
	d.arena.put(e.slot)
}
func (e *txDone) String() string { return "adin2111 tx complete" }

type hostDeliver struct{ frameEvent }

func (e *hostDeliver) EventAction() {
	d := e.d
	d.frameFired(e.id)
	hp := &d.ports[HostPort]
	b := d.arena.bytes(e.slot)
	if be := d.cfg.Ports[HostPort]; be != nil {
		be.SendPacket(append([]byte(nil), b...))
	}
	hp.txPackets++
	hp.txBytes += uint64(len(b))
	d.arena.put(e.slot)
}
func (e *hostDeliver) String() string { return "adin2111 host delivery" }
