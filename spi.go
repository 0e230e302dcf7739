// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/log"
)

// Spi framing: a transaction is a command byte (bit 7 = read), two
// address bytes msb first, then 4-byte big-endian data words.  The data
// phase loops for bursts with the address auto-incrementing per word.
// Chip-select deassertion anywhere short of a word boundary aborts the
// transaction; nothing partial is committed.

type spiPhase uint8

const (
	spiIdle spiPhase = iota
	spiAddrHigh
	spiAddrLow
	spiData
)

const spiCmdRead = 0x80

type spiEngine struct {
	phase    spiPhase
	selected bool
	read     bool
	addr     Reg
	data     uint32
	nbytes   int
}

func (s *spiEngine) abort() {
	s.phase = spiIdle
	s.read = false
	s.addr = 0
	s.data = 0
	s.nbytes = 0
}

// atWordBoundary is true when ending the transaction here loses nothing.
func (s *spiEngine) atWordBoundary() bool {
	return s.phase == spiIdle || (s.phase == spiData && s.nbytes == 0)
}

// ChipSelect frames a transaction.  Deassertion mid-word is a protocol
// error: logged, flagged in SPI_ERROR, and the engine returns to idle
// with no state committed.
func (d *Device) ChipSelect(assert bool) {
	s := &d.spi
	if assert {
		s.abort()
		s.selected = true
		return
	}
	if !s.selected {
		return
	}
	if !s.atWordBoundary() && !d.resetActive {
		d.protocolError("chip select dropped mid transaction")
	}
	s.abort()
	s.selected = false
}

// Transfer clocks one byte through the spi engine and returns the
// response byte.  During reset every byte reads back all ones.
func (d *Device) Transfer(in byte) (out byte) {
	s := &d.spi
	if d.resetActive {
		return 0xff
	}
	if !s.selected {
		d.protocolError("transfer without chip select")
		return 0xff
	}
	switch s.phase {
	case spiIdle:
		s.read = in&spiCmdRead != 0
		s.phase = spiAddrHigh
	case spiAddrHigh:
		s.addr = Reg(in) << 8
		s.phase = spiAddrLow
	case spiAddrLow:
		s.addr |= Reg(in)
		s.addr &= 0x7fff
		s.phase = spiData
		s.nbytes = 0
	case spiData:
		if s.read {
			if s.nbytes == 0 {
				s.data = d.readReg(s.addr)
			}
			out = byte(s.data >> (24 - 8*uint(s.nbytes)))
		} else {
			s.data = s.data<<8 | uint32(in)
		}
		s.nbytes++
		if s.nbytes == 4 {
			if !s.read {
				d.writeReg(s.addr, s.data)
				s.data = 0
			}
			s.addr++
			s.nbytes = 0
		}
	}
	return
}

func (d *Device) protocolError(why string) {
	log.Print(d.tag, ": spi protocol error: ", why)
	d.noteSpiError()
}

func (d *Device) addressError(op string, addr Reg) {
	log.Printf("%s: %s of invalid register 0x%04x", d.tag, op, uint16(addr))
	d.noteSpiError()
}

func (d *Device) noteSpiError() {
	d.spiError = true
	d.raiseInt(IntSpiError)
}
