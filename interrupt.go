// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

// The irq line is the pure function (status & mask) != 0, recomputed
// after every status or mask mutation and delivered edge filtered.

func (d *Device) raiseInt(bit uint32) {
	d.intStatus |= bit
	d.updateIrq()
}

// IrqAsserted is the current level of the interrupt line.
func (d *Device) IrqAsserted() bool { return d.irqLevel }

func (d *Device) updateIrq() {
	level := d.intStatus&d.intMask != 0
	if level == d.irqLevel {
		return
	}
	d.irqLevel = level
	if d.cfg.IRQ != nil {
		d.cfg.IRQ(level)
	}
}
