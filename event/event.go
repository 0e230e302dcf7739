// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package event is a virtual-clock priority queue of timed events.
// Time only moves when the owner advances it, so everything scheduled
// here is reproducible independent of host load.
package event

import (
	"container/heap"
	"time"
)

// Time is nanoseconds of virtual time since queue creation.
type Time int64

func (t Time) Add(dt time.Duration) Time { return t + Time(dt) }

type Actor interface {
	EventAction()
	String() string
}

// Id names a scheduled event for cancellation.  Zero is never a valid id.
type Id uint64

type timedEvent struct {
	actor Actor
	time  Time
	id    Id
	index int
}

// eventHeap orders by deadline, then by id so that events scheduled for
// the same instant fire in scheduling order.
type eventHeap []*timedEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].id < h[j].id
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x interface{}) {
	e := x.(*timedEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

type Queue struct {
	now    Time
	seq    Id
	events eventHeap
	byId   map[Id]*timedEvent
}

func New() *Queue { return &Queue{byId: make(map[Id]*timedEvent)} }

func (q *Queue) Now() Time  { return q.now }
func (q *Queue) Elts() uint { return uint(len(q.events)) }

// Add schedules a's EventAction dt of virtual time from now.
func (q *Queue) Add(a Actor, dt time.Duration) Id {
	q.seq++
	e := &timedEvent{actor: a, time: q.now.Add(dt), id: q.seq}
	heap.Push(&q.events, e)
	q.byId[e.id] = e
	return e.id
}

// Cancel drops a pending event.  Ids of events that already fired or
// were cancelled are stale; cancelling them is a no-op.
func (q *Queue) Cancel(id Id) bool {
	e, ok := q.byId[id]
	if !ok {
		return false
	}
	delete(q.byId, id)
	heap.Remove(&q.events, e.index)
	return true
}

func (q *Queue) NextTime() (t Time, valid bool) {
	if len(q.events) > 0 {
		t, valid = q.events[0].time, true
	}
	return
}

// Advance moves the clock dt forward, firing due events in deadline
// order.  Actions may Add or Cancel; newly due events fire in the same
// advance.
func (q *Queue) Advance(dt time.Duration) { q.AdvanceTo(q.now.Add(dt)) }

func (q *Queue) AdvanceTo(t Time) {
	for len(q.events) > 0 && q.events[0].time <= t {
		e := heap.Pop(&q.events).(*timedEvent)
		delete(q.byId, e.id)
		q.now = e.time
		e.actor.EventAction()
	}
	if t > q.now {
		q.now = t
	}
}
