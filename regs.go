// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"time"
)

// Register map: 1024 32-bit slots, word addressed.  Upstream ADIN2111
// device models disagree on addressing (the hybrid model reuses the
// byte-addressed ADIN1110 map); this model commits to the word-addressed
// map throughout.
const RegCount = 0x400

type Reg uint16

const (
	// system control 0x0000-0x001f
	ChipId       Reg = 0x0000 // RO, always 0x2111
	Scratch      Reg = 0x0001
	ResetCtl     Reg = 0x0002
	DeviceStatus Reg = 0x0003
	IntStatus    Reg = 0x0004 // write 1 to clear
	IntMask      Reg = 0x0005

	// switch core 0x0040-0x007f
	SwitchConfig Reg = 0x0040
	MacFltEnable Reg = 0x0041
	SwitchStatus Reg = 0x0042
	FwdTablePtr  Reg = 0x0043
	MacTableBase Reg = 0x0044 // 16 entries x 2 words

	// per port control/status/stats
	Port1Ctrl      Reg = 0x0080
	Port1Status    Reg = 0x0081
	Port1StatsCtrl Reg = 0x0082
	Port1RxPkts    Reg = 0x0083
	Port1TxPkts    Reg = 0x0084
	Port1RxBytes   Reg = 0x0085
	Port1TxBytes   Reg = 0x0086
	Port1RxErrs    Reg = 0x0087
	Port1TxErrs    Reg = 0x0088

	Port2Ctrl      Reg = 0x00a0
	Port2Status    Reg = 0x00a1
	Port2StatsCtrl Reg = 0x00a2
	Port2RxPkts    Reg = 0x00a3
	Port2TxPkts    Reg = 0x00a4
	Port2RxBytes   Reg = 0x00a5
	Port2TxBytes   Reg = 0x00a6
	Port2RxErrs    Reg = 0x00a7
	Port2TxErrs    Reg = 0x00a8

	// diagnostics 0x00c0-0x00df; addressable storage, no behavior
	LinkQuality  Reg = 0x00c0
	TdrCtrl      Reg = 0x00c1
	TdrResult    Reg = 0x00c2
	FrameGenCtrl Reg = 0x00c4
	FrameChkCtrl Reg = 0x00c5
	CrcStatus    Reg = 0x00c6

	// ieee 1588 timestamping 0x0100-0x011f; addressable storage
	TimestampCtrl Reg = 0x0100
	TxTimestampS  Reg = 0x0101
	TxTimestampNs Reg = 0x0102
	RxTimestampS  Reg = 0x0103
	RxTimestampNs Reg = 0x0104

	// frame buffer windows
	TxFifo Reg = 0x0200
	RxFifo Reg = 0x0300
)

const ChipIdValue = 0x2111

// ResetCtl bits.
const (
	ResetSoft uint32 = 1 << 0 // full device reset, 50 ms
	ResetPhy1 uint32 = 1 << 1 // bounce port 1 phy, 25 ms
	ResetPhy2 uint32 = 1 << 2 // bounce port 2 phy, 25 ms
	ResetMac  uint32 = 1 << 3 // mac-only software reset, 25 ms
)

// DeviceStatus bits.
const (
	StatusReady    uint32 = 1 << 0
	StatusLink1Up  uint32 = 1 << 1
	StatusLink2Up  uint32 = 1 << 2
	StatusSpiError uint32 = 1 << 3
)

// IntStatus/IntMask cause bits.
const (
	IntReady    uint32 = 1 << 0
	IntLink1    uint32 = 1 << 1
	IntLink2    uint32 = 1 << 2
	IntRx1      uint32 = 1 << 3
	IntRx2      uint32 = 1 << 4
	IntTx1Done  uint32 = 1 << 5
	IntTx2Done  uint32 = 1 << 6
	IntSpiError uint32 = 1 << 7
)

// SwitchConfig bits.  Readback is the effective mode, not the raw write.
const (
	SwitchCutThrough uint32 = 1 << 0
	SwitchEnable     uint32 = 1 << 4
	SwitchLearn      uint32 = 1 << 5
)

// PortCtrl bits.
const (
	PortEnable   uint32 = 1 << 0
	PortLoopback uint32 = 1 << 1
	PortTestMode uint32 = 1 << 2
)

// PortStatus bits.
const PortLinkUp uint32 = 1 << 0

// Datasheet timing, all on the virtual clock.
const (
	ResetDelay    = 50 * time.Millisecond // soft reset to ready
	MacResetDelay = 25 * time.Millisecond // mac-only reset to ready
	PhyResetDelay = 25 * time.Millisecond // phy bounce to link restore
	RxLatency     = 6400 * time.Nanosecond
	SwitchLatency = 12600 * time.Nanosecond // halved in cut-through mode
	TxLatency     = 3200 * time.Nanosecond
	MacAgeTime    = 5 * time.Minute
)

const (
	MacTableEntries = 16 // entries visible through the register window
	MaxMacTable     = 256
)
