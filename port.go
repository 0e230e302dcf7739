// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"

	"github.com/platinasystems/log"
)

// Port names a packet endpoint: the two phy-facing wire ports plus the
// spi-host side of the chip.
type Port int

const (
	Port1 Port = iota
	Port2
	HostPort
	nEndpoints
)

const nPhyPorts = 2

func (p Port) String() string {
	switch p {
	case Port1:
		return "port1"
	case Port2:
		return "port2"
	case HostPort:
		return "host"
	}
	return "port?"
}

func (p Port) isPhy() bool { return p == Port1 || p == Port2 }

// Backend is the host-simulation side of an endpoint; the device calls
// SendPacket to put a frame on the wire (or deliver it to the host).
type Backend interface {
	SendPacket(b []byte)
}

type port struct {
	mac          ethernet.Address
	wantLink     bool // link state asked for by the backend
	phyResetting bool

	rxPackets, txPackets uint64
	rxBytes, txBytes     uint64
	rxErrors, txErrors   uint64
}

func (p *port) linkUp() bool { return p.wantLink && !p.phyResetting }

func (p *port) clearCounters() {
	p.rxPackets, p.txPackets = 0, 0
	p.rxBytes, p.txBytes = 0, 0
	p.rxErrors, p.txErrors = 0, 0
}

// PortCounters is a snapshot of one endpoint's packet counters.
type PortCounters struct {
	RxPackets, TxPackets uint64
	RxBytes, TxBytes     uint64
	RxErrors, TxErrors   uint64
}

func (d *Device) Counters(p Port) (c PortCounters) {
	if p < 0 || p >= nEndpoints {
		return
	}
	pp := &d.ports[p]
	c = PortCounters{
		RxPackets: pp.rxPackets, TxPackets: pp.txPackets,
		RxBytes: pp.rxBytes, TxBytes: pp.txBytes,
		RxErrors: pp.rxErrors, TxErrors: pp.txErrors,
	}
	return
}

// SetLink drives a phy port's link state from the backend.  Link changes
// raise the port's link-change interrupt cause unless a reset is pending.
func (d *Device) SetLink(p Port, up bool) {
	if !p.isPhy() {
		log.Print(d.tag, ": set link on non-phy endpoint ", p)
		return
	}
	pp := &d.ports[p]
	if pp.wantLink == up {
		return
	}
	pp.wantLink = up
	if d.resetActive {
		return
	}
	if p == Port1 {
		d.raiseInt(IntLink1)
	} else {
		d.raiseInt(IntLink2)
	}
}

func (d *Device) portEnabled(p Port) bool {
	switch p {
	case Port1:
		return d.regs[Port1Ctrl]&PortEnable != 0
	case Port2:
		return d.regs[Port2Ctrl]&PortEnable != 0
	}
	return true // host endpoint has no enable gate
}
