// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

// Most of the map is plain storage; the cases below carry the mandated
// side effects.  Invalid addresses read zero and ignore writes, with the
// error surfaced only through logging and the SPI_ERROR cause bit.

const macTableWords = 2 * MacTableEntries

func macTableWindow(a Reg) bool {
	return a >= MacTableBase && a < MacTableBase+macTableWords
}

// ReadReg is the register file as the spi master sees it.  While a reset
// is pending every address reads all ones.
func (d *Device) ReadReg(a Reg) uint32 {
	if d.resetActive {
		return 0xffffffff
	}
	return d.readReg(a)
}

// WriteReg is a no-op while reset is pending, except for ResetCtl which
// stays reachable so a stacked reset restarts the reset clock.
func (d *Device) WriteReg(a Reg, v uint32) {
	if d.resetActive && a != ResetCtl {
		return
	}
	d.writeReg(a, v)
}

func (d *Device) readReg(a Reg) (v uint32) {
	switch a {
	case ChipId:
		v = ChipIdValue
	case DeviceStatus:
		if !d.resetActive {
			v |= StatusReady
		}
		if d.ports[Port1].linkUp() {
			v |= StatusLink1Up
		}
		if d.ports[Port2].linkUp() {
			v |= StatusLink2Up
		}
		if d.spiError {
			v |= StatusSpiError
		}
	case IntStatus:
		v = d.intStatus
	case IntMask:
		v = d.intMask
	case SwitchConfig:
		// effective mode, not the raw write
		if d.cutThrough {
			v |= SwitchCutThrough
		}
		if d.switchEnable {
			v |= SwitchEnable
		}
		if d.learn {
			v |= SwitchLearn
		}
	case Port1Status:
		if d.ports[Port1].linkUp() {
			v = PortLinkUp
		}
	case Port2Status:
		if d.ports[Port2].linkUp() {
			v = PortLinkUp
		}
	case Port1RxPkts:
		v = uint32(d.ports[Port1].rxPackets)
	case Port1TxPkts:
		v = uint32(d.ports[Port1].txPackets)
	case Port1RxBytes:
		v = uint32(d.ports[Port1].rxBytes)
	case Port1TxBytes:
		v = uint32(d.ports[Port1].txBytes)
	case Port1RxErrs:
		v = uint32(d.ports[Port1].rxErrors)
	case Port1TxErrs:
		v = uint32(d.ports[Port1].txErrors)
	case Port2RxPkts:
		v = uint32(d.ports[Port2].rxPackets)
	case Port2TxPkts:
		v = uint32(d.ports[Port2].txPackets)
	case Port2RxBytes:
		v = uint32(d.ports[Port2].rxBytes)
	case Port2TxBytes:
		v = uint32(d.ports[Port2].txBytes)
	case Port2RxErrs:
		v = uint32(d.ports[Port2].rxErrors)
	case Port2TxErrs:
		v = uint32(d.ports[Port2].txErrors)
	default:
		switch {
		case macTableWindow(a):
			v = d.table.readWord(uint(a - MacTableBase))
		case a < RegCount:
			v = d.regs[a]
		default:
			d.addressError("read", a)
		}
	}
	return
}

func (d *Device) writeReg(a Reg, v uint32) {
	switch a {
	case ChipId:
		// accepted, discarded
	case ResetCtl:
		d.writeResetCtl(v)
	case IntMask:
		d.intMask = v
		d.updateIrq()
	case IntStatus:
		d.intStatus &^= v // write 1 to clear
		if v&IntSpiError != 0 {
			d.spiError = false
		}
		d.updateIrq()
	case SwitchConfig:
		d.cutThrough = v&SwitchCutThrough != 0
		d.switchEnable = v&SwitchEnable != 0
		d.learn = v&SwitchLearn != 0
	case DeviceStatus, Port1Status, Port2Status,
		Port1RxPkts, Port1TxPkts, Port1RxBytes, Port1TxBytes,
		Port1RxErrs, Port1TxErrs,
		Port2RxPkts, Port2TxPkts, Port2RxBytes, Port2TxBytes,
		Port2RxErrs, Port2TxErrs:
		// status and statistics are read only
	default:
		switch {
		case macTableWindow(a):
			d.writeMacTableWord(a, v)
		case a < RegCount:
			d.regs[a] = v
		default:
			d.addressError("write", a)
		}
	}
}

// The mac table window stages the mac-high word in plain storage and
// commits an entry when the control word is written with the valid bit.
func (d *Device) writeMacTableWord(a Reg, v uint32) {
	d.regs[a] = v
	w := uint(a - MacTableBase)
	if w&1 == 0 {
		return // staged; committed by the control word
	}
	d.table.program(int(w>>1), d.regs[a-1], v, d.ev.Now())
}
