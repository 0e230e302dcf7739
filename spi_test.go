// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"testing"
	"time"
)

func TestChipIdReadOnly(t *testing.T) {
	r := newTestRig(Config{})
	if got := spiReadReg(r.d, ChipId); got != ChipIdValue {
		t.Fatalf("chip id: got 0x%04x want 0x%04x", got, ChipIdValue)
	}
	spiWriteReg(r.d, ChipId, 0x1234)
	if got := spiReadReg(r.d, ChipId); got != ChipIdValue {
		t.Errorf("chip id after write: got 0x%04x want 0x%04x", got, ChipIdValue)
	}
}

func TestScratchRoundTrip(t *testing.T) {
	r := newTestRig(Config{})
	for _, v := range []uint32{0xdeadbeef, 0x12345678, 0, 0xffffffff} {
		spiWriteReg(r.d, Scratch, v)
		if got := spiReadReg(r.d, Scratch); got != v {
			t.Errorf("scratch: got 0x%08x want 0x%08x", got, v)
		}
	}
}

func TestBurstReadAutoIncrements(t *testing.T) {
	r := newTestRig(Config{})
	spiWriteReg(r.d, Scratch, 0xcafef00d)

	d := r.d
	d.ChipSelect(true)
	d.Transfer(0x80)
	d.Transfer(byte(ChipId >> 8))
	d.Transfer(byte(ChipId))
	var w [2]uint32
	for i := range w {
		for j := 0; j < 4; j++ {
			w[i] = w[i]<<8 | uint32(d.Transfer(0))
		}
	}
	d.ChipSelect(false)

	if w[0] != ChipIdValue {
		t.Errorf("burst word 0: got 0x%08x want 0x%08x", w[0], uint32(ChipIdValue))
	}
	if w[1] != 0xcafef00d {
		t.Errorf("burst word 1: got 0x%08x want 0xcafef00d", w[1])
	}
}

func TestBurstWriteAutoIncrements(t *testing.T) {
	r := newTestRig(Config{})
	d := r.d
	a := TxFifo
	d.ChipSelect(true)
	d.Transfer(0x00)
	d.Transfer(byte(a >> 8))
	d.Transfer(byte(a))
	for _, v := range []uint32{0x11223344, 0x55667788} {
		for j := 0; j < 4; j++ {
			d.Transfer(byte(v >> (24 - 8*uint(j))))
		}
	}
	d.ChipSelect(false)

	if got := spiReadReg(d, TxFifo); got != 0x11223344 {
		t.Errorf("fifo word 0: got 0x%08x want 0x11223344", got)
	}
	if got := spiReadReg(d, TxFifo+1); got != 0x55667788 {
		t.Errorf("fifo word 1: got 0x%08x want 0x55667788", got)
	}
}

func TestAbortMidWordCommitsNothing(t *testing.T) {
	r := newTestRig(Config{})
	d := r.d
	spiWriteReg(d, Scratch, 0x01020304)
	d.ChipSelect(true)
	d.Transfer(0x00)
	d.Transfer(byte(Scratch >> 8))
	d.Transfer(byte(Scratch))
	d.Transfer(0xde)
	d.Transfer(0xad)
	d.ChipSelect(false) // two bytes short of a word

	if got := spiReadReg(d, Scratch); got != 0x01020304 {
		t.Errorf("aborted write committed: got 0x%08x", got)
	}
	if spiReadReg(d, IntStatus)&IntSpiError == 0 {
		t.Error("protocol error did not set SPI_ERROR cause")
	}
	if spiReadReg(d, DeviceStatus)&StatusSpiError == 0 {
		t.Error("protocol error did not set status SPI_ERROR")
	}

	// write-1-clear drops both views of the error
	spiWriteReg(d, IntStatus, IntSpiError)
	if spiReadReg(d, IntStatus)&IntSpiError != 0 {
		t.Error("SPI_ERROR cause did not clear")
	}
	if spiReadReg(d, DeviceStatus)&StatusSpiError != 0 {
		t.Error("status SPI_ERROR did not clear")
	}
}

func TestTransferDuringResetReturnsAllOnes(t *testing.T) {
	r := newTestRig(Config{})
	r.d.WriteReg(ResetCtl, ResetSoft)
	if got := spiReadReg(r.d, ChipId); got != 0xffffffff {
		t.Errorf("read during reset: got 0x%08x want 0xffffffff", got)
	}
	if got := r.d.ReadReg(Scratch); got != 0xffffffff {
		t.Errorf("api read during reset: got 0x%08x want 0xffffffff", got)
	}
	spiWriteReg(r.d, Scratch, 0x1234) // must be a no-op
	r.q.Advance(ResetDelay)
	if got := spiReadReg(r.d, Scratch); got != 0 {
		t.Errorf("write during reset stuck: got 0x%08x want 0", got)
	}
}

func TestInvalidAddress(t *testing.T) {
	r := newTestRig(Config{})
	const bad = Reg(0x7abc)
	if got := spiReadReg(r.d, bad); got != 0 {
		t.Errorf("invalid read: got 0x%08x want 0 sentinel", got)
	}
	// repeated writes are idempotent no-ops
	for i := 0; i < 3; i++ {
		spiWriteReg(r.d, bad, 0xffffffff)
	}
	if got := spiReadReg(r.d, bad); got != 0 {
		t.Errorf("invalid write landed: got 0x%08x want 0", got)
	}
	if spiReadReg(r.d, IntStatus)&IntSpiError == 0 {
		t.Error("address error did not set SPI_ERROR cause")
	}
}

func TestIrqLineFollowsStatusAndMask(t *testing.T) {
	var edges []bool
	r := newTestRig(Config{IRQ: func(level bool) { edges = append(edges, level) }})
	d := r.d

	spiWriteReg(d, IntMask, IntLink1)
	d.SetLink(Port1, false)
	if !d.IrqAsserted() {
		t.Fatal("irq not asserted on masked-in cause")
	}
	// unrelated causes do not produce edges
	d.SetLink(Port2, false)
	spiWriteReg(d, IntStatus, IntLink1)
	if d.IrqAsserted() {
		t.Fatal("irq still asserted after clear")
	}
	if len(edges) != 2 || edges[0] != true || edges[1] != false {
		t.Errorf("irq edges: got %v want [true false]", edges)
	}
	if spiReadReg(d, IntStatus)&IntLink2 == 0 {
		t.Error("write-1-clear took unrelated cause with it")
	}
}

func TestResetDuringTransferAbortsCleanly(t *testing.T) {
	r := newTestRig(Config{})
	d := r.d
	d.ChipSelect(true)
	d.Transfer(0x80)
	d.Transfer(0x00)
	d.WriteReg(ResetCtl, ResetSoft)
	if got := d.Transfer(0x00); got != 0xff {
		t.Errorf("mid-transaction byte during reset: got 0x%02x want 0xff", got)
	}
	d.ChipSelect(false)
	r.q.Advance(ResetDelay + time.Millisecond)
	if got := spiReadReg(d, ChipId); got != ChipIdValue {
		t.Errorf("post-reset read: got 0x%08x want 0x%04x", got, ChipIdValue)
	}
}
