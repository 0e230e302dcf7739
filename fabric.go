// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"
	"github.com/platinasystems/adin2111/event"

	"github.com/platinasystems/log"
)

type macEntry struct {
	addr  ethernet.Address
	port  Port
	seen  event.Time
	valid bool
}

// macTable comes in two profiles: the 16-entry datasheet filter table,
// searched linearly, and the 256-entry learning table indexed by hash
// with one entry per bucket.  Entries age out lazily at lookup; there
// is no sweeper.
type macTable struct {
	entries []macEntry
	hashed  bool
}

func newMacTable(size int) macTable {
	if size != MacTableEntries {
		size = MaxMacTable
	}
	return macTable{
		entries: make([]macEntry, size),
		hashed:  size == MaxMacTable,
	}
}

func (t *macTable) clear() {
	for i := range t.entries {
		t.entries[i] = macEntry{}
	}
}

func (t *macTable) hash(a ethernet.Address) uint {
	h := uint(0)
	for _, b := range a {
		h = h<<5 + h + uint(b)
	}
	return h % uint(len(t.entries))
}

func (t *macTable) learn(a ethernet.Address, p Port, now event.Time) {
	var e *macEntry
	if t.hashed {
		e = &t.entries[t.hash(a)]
	} else {
		free, oldest := -1, 0
		for i := range t.entries {
			x := &t.entries[i]
			if x.valid && x.addr.Equal(a) {
				e = x
				break
			}
			if !x.valid {
				if free < 0 {
					free = i
				}
			} else if x.seen < t.entries[oldest].seen {
				oldest = i
			}
		}
		if e == nil {
			if free >= 0 {
				e = &t.entries[free]
			} else {
				e = &t.entries[oldest]
			}
		}
	}
	*e = macEntry{addr: a, port: p, seen: now, valid: true}
}

func (t *macTable) lookup(a ethernet.Address, now event.Time) (p Port, ok bool) {
	var e *macEntry
	if t.hashed {
		e = &t.entries[t.hash(a)]
	} else {
		for i := range t.entries {
			if t.entries[i].valid && t.entries[i].addr.Equal(a) {
				e = &t.entries[i]
				break
			}
		}
		if e == nil {
			return
		}
	}
	if !e.valid || !e.addr.Equal(a) {
		return
	}
	if now-e.seen > event.Time(MacAgeTime) {
		e.valid = false
		return
	}
	return e.port, true
}

// Register window packing: word 0 is mac bytes 0-3 msb first, word 1 is
// mac bytes 4-5 over port and valid bits.  Only the first 16 entries are
// visible regardless of profile.
func (t *macTable) readWord(w uint) (v uint32) {
	e := &t.entries[w>>1]
	if !e.valid {
		return
	}
	if w&1 == 0 {
		v = uint32(e.addr[0])<<24 | uint32(e.addr[1])<<16 |
			uint32(e.addr[2])<<8 | uint32(e.addr[3])
	} else {
		v = uint32(e.addr[4])<<24 | uint32(e.addr[5])<<16 |
			uint32(e.port)<<1 | 1
	}
	return
}

func (t *macTable) program(i int, w0, w1 uint32, now event.Time) {
	if w1&1 == 0 {
		t.entries[i].valid = false
		return
	}
	a := ethernet.Address{
		byte(w0 >> 24), byte(w0 >> 16), byte(w0 >> 8), byte(w0),
		byte(w1 >> 24), byte(w1 >> 16),
	}
	e := &t.entries[i]
	if t.hashed {
		// the committed entry must land where lookup will search
		e = &t.entries[t.hash(a)]
	}
	*e = macEntry{addr: a, port: Port(w1 >> 1 & 1), seen: now, valid: true}
}

// forward runs the fabric decision for a frame fully received on src and
// hands each target to the timing model; nothing is delivered inline.
func (d *Device) forward(src Port, slot int) {
	h, _ := ethernet.ParseHeader(d.arena.bytes(slot))
	now := d.ev.Now()

	if d.learn && src.isPhy() {
		d.table.learn(h.Src, src, now)
		log.Print(d.tag, ": learned ", &h.Src, " on ", src)
	}

	if !d.switchEnable {
		// dual-mac: phy ingress is host bound, never port to port
		d.scheduleDelivery(src, HostPort, slot)
		return
	}

	if h.Dst.IsGroup() {
		d.flood(src, slot)
		return
	}
	if q, ok := d.table.lookup(h.Dst, now); ok {
		if q == src {
			log.Print(d.tag, ": ", &h.Dst, " is on ", src, ", dropped")
			return
		}
		d.scheduleDelivery(src, q, slot)
		return
	}
	if src == HostPort {
		// unknown unicast from the host defaults to port 1
		d.scheduleDelivery(src, Port1, slot)
		return
	}
	log.Print(d.tag, ": unknown unicast ", &h.Dst, ", flooding")
	d.flood(src, slot)
}

func (d *Device) flood(src Port, slot int) {
	for p := Port(0); p < nEndpoints; p++ {
		if p != src {
			d.scheduleDelivery(src, p, slot)
		}
	}
}
