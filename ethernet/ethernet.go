// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ethernet has the few frame types the switch fabric needs.
package ethernet

import (
	"fmt"
)

const (
	AddressBytes  = 6
	HeaderBytes   = 14
	MaxFrameBytes = 1518
)

type Address [AddressBytes]byte

var Broadcast = Address{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

const isGroup = 1 << 0

// IsGroup is true for multicast addresses, broadcast included.
func (a *Address) IsGroup() bool     { return a[0]&isGroup != 0 }
func (a *Address) IsBroadcast() bool { return *a == Broadcast }
func (a *Address) IsUnicast() bool   { return !a.IsGroup() }

func (a *Address) Equal(b Address) bool { return *a == b }

func (a *Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

func ParseAddress(s string) (a Address, err error) {
	var b [AddressBytes]uint
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&b[0], &b[1], &b[2], &b[3], &b[4], &b[5])
	if err != nil {
		return
	}
	if n != AddressBytes {
		err = fmt.Errorf("bad address %q", s)
		return
	}
	for i := range b {
		a[i] = byte(b[i])
	}
	return
}

// Packet type from ethernet header.
type Type uint16

// Header for ethernet packets as they appear on the wire.
type Header struct {
	Dst  Address
	Src  Address
	Type Type
}

// ParseHeader decodes the fixed ethernet header from the front of a frame.
func ParseHeader(b []byte) (h Header, ok bool) {
	if len(b) < HeaderBytes {
		return
	}
	copy(h.Dst[:], b[0:6])
	copy(h.Src[:], b[6:12])
	h.Type = Type(b[12])<<8 | Type(b[13])
	ok = true
	return
}

func (h *Header) IsBroadcast() bool { return h.Dst.IsBroadcast() }
func (h *Header) IsUnicast() bool   { return h.Dst.IsUnicast() }

func (h *Header) String() string {
	return fmt.Sprintf("%s -> %s type 0x%04x", &h.Src, &h.Dst, uint16(h.Type))
}
