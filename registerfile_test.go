// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"

	"testing"
	"time"
)

func TestPlainRegisterRoundTrip(t *testing.T) {
	r := newTestRig(Config{})
	for _, a := range []Reg{
		Scratch, MacFltEnable, FwdTablePtr, LinkQuality, TdrCtrl,
		TimestampCtrl, TxFifo, TxFifo + 7, RxFifo, RxFifo + 0xff,
	} {
		for _, v := range []uint32{0, 1, 0xa5a5a5a5, 0xffffffff} {
			r.d.WriteReg(a, v)
			if got := r.d.ReadReg(a); got != v {
				t.Errorf("reg 0x%04x: got 0x%08x want 0x%08x",
					uint16(a), got, v)
			}
		}
	}
}

func TestSwitchConfigEffectiveReadback(t *testing.T) {
	r := newTestRig(Config{})
	// power-on default is cut-through, enabled, learning
	want := SwitchCutThrough | SwitchEnable | SwitchLearn
	if got := r.d.ReadReg(SwitchConfig); got != want {
		t.Fatalf("default config: got 0x%x want 0x%x", got, want)
	}
	// stray bits do not survive the round trip; mode bits do
	r.d.WriteReg(SwitchConfig, 0xffffffff)
	if got := r.d.ReadReg(SwitchConfig); got != want {
		t.Errorf("got 0x%x want effective 0x%x", got, want)
	}
	r.d.WriteReg(SwitchConfig, SwitchEnable)
	if got := r.d.ReadReg(SwitchConfig); got != SwitchEnable {
		t.Errorf("got 0x%x want 0x%x", got, SwitchEnable)
	}
	r.d.WriteReg(SwitchConfig, 0)
	if got := r.d.ReadReg(SwitchConfig); got != 0 {
		t.Errorf("got 0x%x want 0", got)
	}
}

func TestDeviceStatusBits(t *testing.T) {
	r := newTestRig(Config{})
	want := StatusReady | StatusLink1Up | StatusLink2Up
	if got := r.d.ReadReg(DeviceStatus); got != want {
		t.Fatalf("status: got 0x%x want 0x%x", got, want)
	}
	r.d.SetLink(Port1, false)
	if got := r.d.ReadReg(DeviceStatus); got&StatusLink1Up != 0 {
		t.Errorf("status after link down: got 0x%x", got)
	}
	if got := r.d.ReadReg(Port1Status); got&PortLinkUp != 0 {
		t.Errorf("port1 status after link down: got 0x%x", got)
	}
	if got := r.d.ReadReg(Port2Status); got&PortLinkUp == 0 {
		t.Errorf("port2 status: got 0x%x want link up", got)
	}
}

func TestStatsRegistersAreReadOnly(t *testing.T) {
	r := newTestRig(Config{})
	r.d.ReceivePacket(Port1, frame(ethernet.Broadcast, macA, 100))
	r.q.Advance(time.Millisecond)
	if got := r.d.ReadReg(Port1RxPkts); got != 1 {
		t.Fatalf("port1 rx pkts: got %d want 1", got)
	}
	if got := r.d.ReadReg(Port1RxBytes); got != 100 {
		t.Fatalf("port1 rx bytes: got %d want 100", got)
	}
	r.d.WriteReg(Port1RxPkts, 0)
	if got := r.d.ReadReg(Port1RxPkts); got != 1 {
		t.Errorf("stats register took a write: got %d want 1", got)
	}
}

func TestStatsClearOnReset(t *testing.T) {
	r := newTestRig(Config{})
	r.d.ReceivePacket(Port1, frame(ethernet.Broadcast, macA, 64))
	r.q.Advance(time.Millisecond)
	if got := r.d.ReadReg(Port1RxPkts); got != 1 {
		t.Fatalf("got %d rx packets want 1", got)
	}
	r.d.WriteReg(ResetCtl, ResetSoft)
	r.q.Advance(ResetDelay)
	if got := r.d.ReadReg(Port1RxPkts); got != 0 {
		t.Errorf("stats survived reset: got %d want 0", got)
	}
	if got := r.d.ReadReg(ChipId); got != ChipIdValue {
		t.Errorf("chip id after reset: got 0x%x want 0x%x", got, ChipIdValue)
	}
}

// Programming a table entry through the register window steers unicast
// forwarding like a learned entry would.  Uses the 16-entry filter
// profile where lookup scans the table in window order.
func TestMacTableWindowCommit(t *testing.T) {
	r := newTestRig(Config{TableSize: MacTableEntries})
	w0 := uint32(macB[0])<<24 | uint32(macB[1])<<16 |
		uint32(macB[2])<<8 | uint32(macB[3])
	w1 := uint32(macB[4])<<24 | uint32(macB[5])<<16 |
		uint32(Port2)<<1 | 1
	r.d.WriteReg(MacTableBase, w0)
	r.d.WriteReg(MacTableBase+1, w1)

	if got := r.d.ReadReg(MacTableBase); got != w0 {
		t.Errorf("window word 0: got 0x%08x want 0x%08x", got, w0)
	}
	if got := r.d.ReadReg(MacTableBase + 1); got != w1 {
		t.Errorf("window word 1: got 0x%08x want 0x%08x", got, w1)
	}

	r.d.ReceivePacket(Port1, frame(macB, macA, 64))
	r.q.Advance(time.Millisecond)
	if got := len(r.be[Port2].frames); got != 1 {
		t.Errorf("port2 deliveries: got %d want 1", got)
	}
	if got := len(r.be[HostPort].frames); got != 0 {
		t.Errorf("programmed unicast flooded to host: got %d frames", got)
	}

	// clearing the valid bit un-programs the entry
	r.d.WriteReg(MacTableBase+1, 0)
	if got := r.d.ReadReg(MacTableBase); got != 0 {
		t.Errorf("invalid entry still visible: got 0x%08x", got)
	}
}

// The same commit steers forwarding in the default hashed profile,
// where the entry lives in the lookup bucket rather than at the window
// index.
func TestMacTableWindowCommitHashedProfile(t *testing.T) {
	r := newTestRig(Config{})
	w0 := uint32(macB[0])<<24 | uint32(macB[1])<<16 |
		uint32(macB[2])<<8 | uint32(macB[3])
	w1 := uint32(macB[4])<<24 | uint32(macB[5])<<16 |
		uint32(Port2)<<1 | 1
	r.d.WriteReg(MacTableBase, w0)
	r.d.WriteReg(MacTableBase+1, w1)

	r.d.ReceivePacket(Port1, frame(macB, macA, 64))
	r.q.Advance(time.Millisecond)
	if got := len(r.be[Port2].frames); got != 1 {
		t.Errorf("port2 deliveries: got %d want 1", got)
	}
	if got := len(r.be[HostPort].frames); got != 0 {
		t.Errorf("programmed unicast flooded to host: got %d frames", got)
	}
}

func TestPortDisableGatesIngress(t *testing.T) {
	r := newTestRig(Config{})
	r.d.WriteReg(Port1Ctrl, 0)
	r.d.ReceivePacket(Port1, frame(ethernet.Broadcast, macA, 64))
	r.q.Advance(time.Millisecond)
	if got := len(r.be[Port2].frames); got != 0 {
		t.Errorf("disabled port forwarded: got %d frames", got)
	}
	if got := r.d.Counters(Port1).RxErrors; got != 1 {
		t.Errorf("rx errors: got %d want 1", got)
	}
}
