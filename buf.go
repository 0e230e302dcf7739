// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package adin2111

import (
	"github.com/platinasystems/adin2111/ethernet"
)

// In-flight frames live in a fixed arena and are passed between chained
// timing events by slot index, never by pointer.  A flooded frame holds
// one reference per scheduled delivery.
const frameSlots = 8

type frameSlot struct {
	buf  [ethernet.MaxFrameBytes]byte
	n    int
	refs int
}

type frameArena struct {
	slots [frameSlots]frameSlot
}

func (a *frameArena) alloc(b []byte) (si int, ok bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.refs == 0 {
			s.refs = 1
			s.n = copy(s.buf[:], b)
			return i, true
		}
	}
	return 0, false
}

func (a *frameArena) ref(si int)          { a.slots[si].refs++ }
func (a *frameArena) put(si int)          { a.slots[si].refs-- }
func (a *frameArena) bytes(si int) []byte { return a.slots[si].buf[:a.slots[si].n] }

func (a *frameArena) reset() {
	for i := range a.slots {
		a.slots[i].refs = 0
	}
}

func (a *frameArena) inUse() (n int) {
	for i := range a.slots {
		if a.slots[i].refs != 0 {
			n++
		}
	}
	return
}
